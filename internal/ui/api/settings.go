package api

import (
	"net/http"
	"time"

	"github.com/dailyworkspace/daybook/internal/types"
)

func (s *Server) listSearchHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.store.ListSearchHistory(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if history == nil {
		history = []*types.SearchHistory{}
	}
	writeJSON(w, http.StatusOK, history)
}

type searchRequest struct {
	Query string `json:"query"`
}

// addSearchHistory logs a query. Blank queries are accepted and ignored.
func (s *Server) addSearchHistory(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.store.AddSearchHistory(r.Context(), req.Query, time.Time{}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "search recorded"})
}

func (s *Server) clearSearchHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearSearchHistory(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "search history cleared"})
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.GetAppSettings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type settingsUpdate struct {
	SprintGoals    *string `json:"sprint_goals"`
	QuarterlyGoals *string `json:"quarterly_goals"`
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()
	settings, err := s.store.GetAppSettings(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	setIf(&settings.SprintGoals, req.SprintGoals)
	setIf(&settings.QuarterlyGoals, req.QuarterlyGoals)
	if err := s.store.UpdateAppSettings(ctx, settings); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
