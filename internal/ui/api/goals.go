package api

import (
	"net/http"

	"github.com/dailyworkspace/daybook/internal/types"
)

func goalKind(w http.ResponseWriter, r *http.Request) (types.GoalKind, bool) {
	kind := types.GoalKind(r.PathValue("kind"))
	if !kind.IsValid() {
		http.NotFound(w, r)
		return "", false
	}
	return kind, true
}

func (s *Server) listGoals(w http.ResponseWriter, r *http.Request) {
	kind, ok := goalKind(w, r)
	if !ok {
		return
	}
	goals, err := s.store.ListGoals(r.Context(), kind)
	if err != nil {
		writeError(w, err)
		return
	}
	if goals == nil {
		goals = []*types.Goal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

type goalRequest struct {
	Text      *string `json:"text"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

func (g *goalRequest) apply(goal *types.Goal) {
	setIf(&goal.Text, g.Text)
	setIf(&goal.StartDate, g.StartDate)
	setIf(&goal.EndDate, g.EndDate)
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request) {
	kind, ok := goalKind(w, r)
	if !ok {
		return
	}
	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	goal := &types.Goal{Kind: kind}
	req.apply(goal)
	if err := s.store.CreateGoal(r.Context(), goal); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

// currentGoal serves the goal active on ?date= (default today), or the
// next upcoming one.
func (s *Server) currentGoal(w http.ResponseWriter, r *http.Request) {
	kind, ok := goalKind(w, r)
	if !ok {
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = types.FormatDate(s.now())
	}
	goal, err := s.store.GoalForDate(r.Context(), kind, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) updateGoal(w http.ResponseWriter, r *http.Request) {
	kind, ok := goalKind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()
	goal, err := s.store.GetGoal(ctx, kind, id)
	if err != nil {
		writeError(w, err)
		return
	}
	req.apply(goal)
	if err := s.store.UpdateGoal(ctx, goal); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) deleteGoal(w http.ResponseWriter, r *http.Request) {
	kind, ok := goalKind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteGoal(r.Context(), kind, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "goal deleted"})
}
