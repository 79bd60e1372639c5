package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dailyworkspace/daybook/internal/config"
	"github.com/dailyworkspace/daybook/internal/debug"
	"github.com/dailyworkspace/daybook/internal/ui"
	"github.com/dailyworkspace/daybook/internal/ui/api"
)

var (
	serveListenAddr  string
	serveAllowRemote bool
	serveAuthToken   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON HTTP API",
	Long: `Start the HTTP API on a loopback address.

Binding to a non-loopback address requires --allow-remote and enables bearer
token authentication. A token is generated and printed unless --auth-token is
given. Changes to config.yaml (propagation settings) apply without a restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListenAddr, "listen", "", "Address to bind to (default from config, 127.0.0.1:8000)")
	serveCmd.Flags().BoolVar(&serveAllowRemote, "allow-remote", false, "Permit binding to non-loopback addresses (requires auth token)")
	serveCmd.Flags().StringVar(&serveAuthToken, "auth-token", "", "Use the provided auth token instead of generating one")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command) error {
	ctx := rootCtx

	listenAddr := strings.TrimSpace(serveListenAddr)
	if listenAddr == "" {
		listenAddr = settings.Listen
	}
	allowRemote := serveAllowRemote || settings.AllowRemote

	requireRemoteAuth, err := ui.DetermineAccess(listenAddr, allowRemote)
	if err != nil {
		return err
	}
	token := strings.TrimSpace(serveAuthToken)
	requireAuth := requireRemoteAuth || token != ""
	if requireAuth && token == "" {
		token, err = generateAuthToken()
		if err != nil {
			return fmt.Errorf("generate auth token: %w", err)
		}
	}

	notes := newPropagator()
	server := api.New(api.Config{
		Store:          store,
		Notes:          notes,
		Members:        newEnforcer(),
		Reports:        newReports(),
		ImportMaxBytes: settings.ImportMaxBytes,
	})

	handler, err := ui.NewHandler(ui.HandlerConfig{
		RequireAuth: requireAuth,
		AuthToken:   token,
		Version:     Version,
		Register:    server.Register,
	})
	if err != nil {
		return err
	}

	if path := config.ConfigFileUsed(); path != "" {
		go func() {
			err := config.Watch(ctx, path, func(s config.Settings) {
				notes.SetOptions(propagationOptions(s))
				debug.Logf("config reloaded from %s\n", path)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				debug.Warnf("config watch stopped: %v\n", err)
			}
		}()
	}

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddr, err)
	}

	srv := newHTTPServer(handler)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(listener) }()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", pass("daybook listening on"), accent(formatBaseURL(listener.Addr())))
	if requireAuth {
		fmt.Fprintf(out, "%s %s\n", warn("Authorization: Bearer"), token)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	fmt.Fprintln(out, muted("daybook stopped"))
	return nil
}

func newHTTPServer(handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func generateAuthToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(buf), "="), nil
}

func formatBaseURL(addr net.Addr) string {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return "http://" + addr.String()
	}
	host := tcpAddr.IP.String()
	if tcpAddr.IP == nil || tcpAddr.IP.IsUnspecified() {
		host = "127.0.0.1"
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return fmt.Sprintf("http://%s:%d", host, tcpAddr.Port)
}
