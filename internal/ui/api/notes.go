package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dailyworkspace/daybook/internal/storage"
	"github.com/dailyworkspace/daybook/internal/types"
)

// listNotes serves GET /api/notes?from=&to=&limit= (or ?month=YYYY-MM).
func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := types.NoteFilter{From: q.Get("from"), To: q.Get("to")}
	if month := q.Get("month"); month != "" {
		first, err := types.ParseDate(month + "-01")
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, "invalid month", month)
			return
		}
		filter.From = types.FormatDate(first)
		filter.To = types.FormatDate(first.AddDate(0, 1, -1))
	}
	for _, d := range []string{filter.From, filter.To} {
		if d == "" {
			continue
		}
		if err := types.ValidateDate(d); err != nil {
			WriteJSONError(w, http.StatusBadRequest, "invalid date", err.Error())
			return
		}
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteJSONError(w, http.StatusBadRequest, "invalid limit", raw)
			return
		}
		filter.Limit = n
	}
	notes, err := s.store.ListNotes(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if notes == nil {
		notes = []*types.DailyNote{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// getNote serves a day, propagating pinned entries onto it first.
func (s *Server) getNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.notes.GetNote(r.Context(), r.PathValue("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

type noteUpdate struct {
	FireRating *int    `json:"fire_rating"`
	DailyGoal  *string `json:"daily_goal"`
}

// updateNote creates the day if needed and applies the given fields.
func (s *Server) updateNote(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	var req noteUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()
	var note *types.DailyNote
	err := s.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		n, _, err := tx.EnsureNote(ctx, date)
		if err != nil {
			return err
		}
		if req.FireRating != nil {
			n.FireRating = *req.FireRating
		}
		if req.DailyGoal != nil {
			n.DailyGoal = *req.DailyGoal
		}
		if err := tx.UpdateNote(ctx, n); err != nil {
			return err
		}
		note, err = tx.GetNote(ctx, n.ID)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	note, err := s.store.GetNoteByDate(ctx, r.PathValue("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.DeleteNote(ctx, note.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: fmt.Sprintf("note %s deleted", note.Date)})
}

func (s *Server) addNoteLabel(w http.ResponseWriter, r *http.Request) {
	s.mutateNoteLabel(w, r, true)
}

func (s *Server) removeNoteLabel(w http.ResponseWriter, r *http.Request) {
	s.mutateNoteLabel(w, r, false)
}

func (s *Server) mutateNoteLabel(w http.ResponseWriter, r *http.Request, add bool) {
	labelID, ok := pathID(w, r, "labelID")
	if !ok {
		return
	}
	ctx := r.Context()
	date := r.PathValue("date")
	var note *types.DailyNote
	err := s.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		var err error
		if add {
			note, _, err = tx.EnsureNote(ctx, date)
		} else {
			note, err = tx.GetNoteByDate(ctx, date)
		}
		if err != nil {
			return err
		}
		if add {
			err = tx.AddNoteLabel(ctx, note.ID, labelID)
		} else {
			err = tx.RemoveNoteLabel(ctx, note.ID, labelID)
		}
		if err != nil {
			return err
		}
		note, err = tx.GetNote(ctx, note.ID)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}
