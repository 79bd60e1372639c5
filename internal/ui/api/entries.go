package api

import (
	"context"
	"net/http"

	"github.com/dailyworkspace/daybook/internal/storage"
	"github.com/dailyworkspace/daybook/internal/types"
)

// entryFields is the writable part of an entry. Nil fields are left unchanged.
type entryFields struct {
	Title           *string `json:"title"`
	Content         *string `json:"content"`
	ContentType     *string `json:"content_type"`
	OrderIndex      *int    `json:"order_index"`
	IncludeInReport *bool   `json:"include_in_report"`
	IsImportant     *bool   `json:"is_important"`
	IsCompleted     *bool   `json:"is_completed"`
	IsDevNull       *bool   `json:"is_dev_null"`
	IsPinned        *bool   `json:"is_pinned"`
	LabelIDs        []int64 `json:"label_ids"`
}

func (f *entryFields) apply(e *types.NoteEntry) {
	setIf(&e.Title, f.Title)
	setIf(&e.Content, f.Content)
	setIf(&e.ContentType, f.ContentType)
	setIf(&e.OrderIndex, f.OrderIndex)
	setIf(&e.IncludeInReport, f.IncludeInReport)
	setIf(&e.IsImportant, f.IsImportant)
	setIf(&e.IsCompleted, f.IsCompleted)
	setIf(&e.IsDevNull, f.IsDevNull)
	setIf(&e.IsPinned, f.IsPinned)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// createEntry adds an entry to the day, creating the day if needed.
func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	var req entryFields
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == nil {
		WriteJSONError(w, http.StatusBadRequest, "content is required", "")
		return
	}
	ctx := r.Context()
	date := r.PathValue("date")
	var entry *types.NoteEntry
	err := s.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		note, _, err := tx.EnsureNote(ctx, date)
		if err != nil {
			return err
		}
		e := &types.NoteEntry{DailyNoteID: note.ID}
		req.apply(e)
		if err := tx.CreateEntry(ctx, e); err != nil {
			return err
		}
		for _, id := range req.LabelIDs {
			if err := tx.AddEntryLabel(ctx, e.ID, id); err != nil {
				return err
			}
		}
		entry, err = tx.GetEntry(ctx, e.ID)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entry, err := s.store.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// updateEntry applies a partial update. label_ids, when present, replaces
// the entry's labels.
func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req entryFields
	if !decodeJSON(w, r, &req) {
		return
	}
	s.modifyEntry(w, r, id, func(tx storage.Transaction, e *types.NoteEntry) error {
		req.apply(e)
		if err := tx.UpdateEntry(r.Context(), e); err != nil {
			return err
		}
		if req.LabelIDs == nil {
			return nil
		}
		return replaceEntryLabels(r.Context(), tx, e, req.LabelIDs)
	})
}

func replaceEntryLabels(ctx context.Context, tx storage.Transaction, e *types.NoteEntry, ids []int64) error {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, id := range e.LabelIDs {
		if !want[id] {
			if err := tx.RemoveEntryLabel(ctx, e.ID, id); err != nil {
				return err
			}
		}
	}
	for id := range want {
		if err := tx.AddEntryLabel(ctx, e.ID, id); err != nil {
			return err
		}
	}
	return nil
}

// togglePin flips is_pinned. Pinning makes the entry propagate to later days.
func (s *Server) togglePin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.modifyEntry(w, r, id, func(tx storage.Transaction, e *types.NoteEntry) error {
		e.IsPinned = !e.IsPinned
		return tx.UpdateEntry(r.Context(), e)
	})
}

// modifyEntry loads an entry, runs fn and responds with the re-read entry.
func (s *Server) modifyEntry(w http.ResponseWriter, r *http.Request, id int64, fn func(tx storage.Transaction, e *types.NoteEntry) error) {
	ctx := r.Context()
	var entry *types.NoteEntry
	err := s.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		e, err := tx.GetEntry(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(tx, e); err != nil {
			return err
		}
		entry, err = tx.GetEntry(ctx, id)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteEntry(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "entry deleted"})
}

func (s *Server) entryLists(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()
	if _, err := s.store.GetEntry(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	lists, err := s.store.GetEntryLists(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if lists == nil {
		lists = []*types.List{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) addEntryLabel(w http.ResponseWriter, r *http.Request) {
	s.mutateEntryLabel(w, r, true)
}

func (s *Server) removeEntryLabel(w http.ResponseWriter, r *http.Request) {
	s.mutateEntryLabel(w, r, false)
}

func (s *Server) mutateEntryLabel(w http.ResponseWriter, r *http.Request, add bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	labelID, ok := pathID(w, r, "labelID")
	if !ok {
		return
	}
	s.modifyEntry(w, r, id, func(tx storage.Transaction, e *types.NoteEntry) error {
		if add {
			return tx.AddEntryLabel(r.Context(), e.ID, labelID)
		}
		return tx.RemoveEntryLabel(r.Context(), e.ID, labelID)
	})
}
