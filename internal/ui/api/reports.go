package api

import "net/http"

// weeklyReport serves GET /api/reports/generate?date=YYYY-MM-DD.
func (s *Server) weeklyReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.Week(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) allEntriesReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.All(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) reportWeeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := s.reports.AvailableWeeks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weeks": weeks})
}
