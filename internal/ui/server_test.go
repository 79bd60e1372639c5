package ui_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/dailyworkspace/daybook/internal/ui"
)

func TestDetermineAccessLoopback(t *testing.T) {
	t.Parallel()

	requireAuth, err := ui.DetermineAccess("127.0.0.1:0", false)
	if err != nil {
		t.Fatalf("DetermineAccess returned error: %v", err)
	}
	if requireAuth {
		t.Fatalf("expected loopback binding to skip auth requirement")
	}
}

func TestDetermineAccessRemoteWithoutAllow(t *testing.T) {
	t.Parallel()

	if _, err := ui.DetermineAccess("0.0.0.0:0", false); err == nil {
		t.Fatalf("expected remote binding to fail without allow-remote flag")
	}
}

func TestDetermineAccessIPv6Loopback(t *testing.T) {
	t.Parallel()

	requireAuth, err := ui.DetermineAccess("[::1]:8000", false)
	if err != nil {
		t.Fatalf("DetermineAccess returned error: %v", err)
	}
	if requireAuth {
		t.Fatalf("expected ::1 to be treated as loopback")
	}
}

func TestDetermineAccessUnspecifiedHost(t *testing.T) {
	t.Parallel()

	if _, err := ui.DetermineAccess(":8000", false); err == nil {
		t.Fatalf("expected empty host to be treated as a remote bind")
	}
	if _, err := ui.DetermineAccess("localhost", false); err == nil {
		t.Fatalf("expected address without port to be rejected")
	}
}

func TestRemoteAuthEnforcement(t *testing.T) {
	t.Parallel()

	requireAuth, err := ui.DetermineAccess("0.0.0.0:0", true)
	if err != nil {
		t.Fatalf("DetermineAccess returned error: %v", err)
	}
	if !requireAuth {
		t.Fatalf("expected remote binding to require auth")
	}

	handler, err := ui.NewHandler(ui.HandlerConfig{
		RequireAuth: true,
		AuthToken:   "secret-token",
		Register: func(mux *http.ServeMux) {
			mux.HandleFunc("GET /api/ping", func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, "pong")
			})
		},
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	ts := httptest.NewServer(handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/ping")
	if err != nil {
		t.Fatalf("GET /api/ping without auth: %v", err)
	}
	io.Copy(io.Discard, resp.Body) // nolint:errcheck
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without Authorization header, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("WWW-Authenticate"); !strings.Contains(got, "daybook") {
		t.Fatalf("unexpected WWW-Authenticate header %q", got)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/ping", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/ping with auth: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "pong" {
		t.Fatalf("expected 200 pong with token, got %d %q", resp.StatusCode, body)
	}

	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	io.Copy(io.Discard, resp.Body) // nolint:errcheck
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected /healthz to bypass auth, got %d", resp.StatusCode)
	}
}

func TestHealthzReportsVersion(t *testing.T) {
	t.Parallel()

	handler, err := ui.NewHandler(ui.HandlerConfig{Version: "1.2.3"})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["version"] != "1.2.3" {
		t.Fatalf("unexpected health body %v", body)
	}
}

func TestStaticAssetsAndIndex(t *testing.T) {
	t.Parallel()

	staticFS := fstest.MapFS{
		"index.html": &fstest.MapFile{Data: []byte("<html>daybook</html>")},
		"app.js":     &fstest.MapFile{Data: []byte("console.log('hi')")},
	}
	handler, err := ui.NewHandler(ui.HandlerConfig{StaticFS: staticFS})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "daybook") {
		t.Fatalf("expected index page, got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.assets/app.js", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected asset to be served, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "javascript") {
		t.Fatalf("expected javascript content type, got %q", ct)
	}
}

func TestNewHandlerWithoutStaticFS(t *testing.T) {
	t.Parallel()

	handler, err := ui.NewHandler(ui.HandlerConfig{})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a front-end bundle, got %d", rec.Code)
	}
}

func TestNewHandlerRequiresAuthTokenWhenEnabled(t *testing.T) {
	t.Parallel()

	if _, err := ui.NewHandler(ui.HandlerConfig{RequireAuth: true, AuthToken: "  "}); err == nil {
		t.Fatalf("expected error when auth token is blank")
	}
}

func TestNewHandlerIndexLoadFailure(t *testing.T) {
	t.Parallel()

	_, err := ui.NewHandler(ui.HandlerConfig{
		StaticFS:  fstest.MapFS{},
		IndexPath: "missing.html",
	})
	if err == nil {
		t.Fatalf("expected error when index page is missing")
	}
}
