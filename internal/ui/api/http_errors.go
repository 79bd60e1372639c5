package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dailyworkspace/daybook/internal/importer"
	"github.com/dailyworkspace/daybook/internal/storage"
)

// jsonErrorResponse encodes a structured error payload for clients.
type jsonErrorResponse struct {
	Error   string          `json:"error"`
	Details string          `json:"details,omitempty"`
	Pass    string          `json:"pass,omitempty"`
	Stats   *importer.Stats `json:"stats,omitempty"`
}

// WriteJSONError writes an error response encoded as JSON with the given status.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	writeErrorPayload(w, status, jsonErrorResponse{
		Error:   strings.TrimSpace(message),
		Details: strings.TrimSpace(details),
	})
}

func writeErrorPayload(w http.ResponseWriter, status int, payload jsonErrorResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// StatusFor maps a store or engine error onto an HTTP status. A failure
// inside an import pass is always a server error; the document itself was
// already validated by backup.Parse.
func StatusFor(err error) int {
	var impErr *importer.Error
	switch {
	case errors.As(err, &impErr):
		return http.StatusInternalServerError
	case errors.Is(err, storage.ErrValidation),
		errors.Is(err, storage.ErrKanbanInitialized),
		errors.Is(err, storage.ErrNotKanban):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrNotMember):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err with the status StatusFor chooses. Import failures
// also carry the failing pass and the counters reached.
func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	var impErr *importer.Error
	if errors.As(err, &impErr) {
		stats := impErr.Stats
		writeErrorPayload(w, status, jsonErrorResponse{
			Error:   "import failed",
			Details: impErr.Err.Error(),
			Pass:    impErr.Pass,
			Stats:   &stats,
		})
		return
	}
	WriteJSONError(w, status, http.StatusText(status), err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON request body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

const maxJSONBody = 4 << 20
