package api

import (
	"net/http"

	"github.com/dailyworkspace/daybook/internal/types"
)

func (s *Server) listLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := s.store.ListLabels(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if labels == nil {
		labels = []*types.Label{}
	}
	writeJSON(w, http.StatusOK, labels)
}

type labelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// createLabel returns 409 when the name is taken.
func (s *Server) createLabel(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	label := &types.Label{Name: req.Name, Color: req.Color}
	if err := s.store.CreateLabel(r.Context(), label); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, label)
}

func (s *Server) deleteLabel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteLabel(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "label deleted"})
}
