// Package export builds the backup document from the store.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dailyworkspace/daybook/internal/backup"
	"github.com/dailyworkspace/daybook/internal/debug"
	"github.com/dailyworkspace/daybook/internal/storage"
	"github.com/dailyworkspace/daybook/internal/types"
)

// Export snapshots the whole journal. All reads run in one transaction so
// the document is consistent even while other writers are active.
func Export(ctx context.Context, s storage.Storage) (*backup.Document, error) {
	doc := &backup.Document{
		Version:       backup.Version,
		ExportedAt:    backup.FormatTime(time.Now()),
		SearchHistory: []backup.SearchHistoryItem{},
		Labels:        []backup.Label{},
		Notes:         []backup.Note{},
	}

	err := s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		history, err := tx.ListAllSearchHistory(ctx)
		if err != nil {
			return err
		}
		for _, h := range history {
			doc.SearchHistory = append(doc.SearchHistory, backup.SearchHistoryItem{
				Query:     h.Query,
				CreatedAt: backup.FormatTime(h.CreatedAt),
			})
		}

		labels, err := tx.ListLabels(ctx)
		if err != nil {
			return err
		}
		sort.Slice(labels, func(i, j int) bool { return labels[i].ID < labels[j].ID })
		for _, l := range labels {
			doc.Labels = append(doc.Labels, backup.Label{
				ID:        l.ID,
				Name:      l.Name,
				Color:     l.Color,
				CreatedAt: backup.FormatTime(l.CreatedAt),
			})
		}

		notes, err := tx.ListNotes(ctx, types.NoteFilter{})
		if err != nil {
			return err
		}
		// Oldest first, so sources precede their copies.
		sort.Slice(notes, func(i, j int) bool { return notes[i].Date < notes[j].Date })
		for _, n := range notes {
			entries, err := tx.GetEntriesForNote(ctx, n.ID)
			if err != nil {
				return err
			}
			doc.Notes = append(doc.Notes, noteToDoc(n, entries))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	debug.Logf("exported %d notes, %d labels, %d searches\n", len(doc.Notes), len(doc.Labels), len(doc.SearchHistory))
	return doc, nil
}

func noteToDoc(n *types.DailyNote, entries []*types.NoteEntry) backup.Note {
	out := backup.Note{
		Date:       n.Date,
		FireRating: n.FireRating,
		DailyGoal:  n.DailyGoal,
		CreatedAt:  backup.FormatTime(n.CreatedAt),
		UpdatedAt:  backup.FormatTime(n.UpdatedAt),
		Labels:     nonNil(n.LabelIDs),
		Entries:    make([]backup.Entry, 0, len(entries)),
	}
	for _, e := range entries {
		id := e.ID
		out.Entries = append(out.Entries, backup.Entry{
			ID:              &id,
			SourceEntryID:   e.SourceEntryID,
			Title:           e.Title,
			Content:         e.Content,
			ContentType:     e.ContentType,
			OrderIndex:      e.OrderIndex,
			IncludeInReport: e.IncludeInReport,
			IsImportant:     e.IsImportant,
			IsCompleted:     e.IsCompleted,
			IsDevNull:       e.IsDevNull,
			IsPinned:        e.IsPinned,
			CreatedAt:       backup.FormatTime(e.CreatedAt),
			UpdatedAt:       backup.FormatTime(e.UpdatedAt),
			Labels:          nonNil(e.LabelIDs),
		})
	}
	return out
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc *backup.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

// WriteFile writes doc to path atomically: a temp file in the same
// directory is renamed over the target.
func WriteFile(path string, doc *backup.Document) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tempFile, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp backup file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		_ = tempFile.Close()    // Best effort: may already be closed before rename
		_ = os.Remove(tempPath) // Best effort: cleanup temp file; may already be renamed
	}()

	if err := Encode(tempFile, doc); err != nil {
		return err
	}

	// Close before rename (required on Windows; double-close in defer is harmless)
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to replace backup file: %w", err)
	}

	// 0600: the journal is private
	if err := os.Chmod(path, 0o600); err != nil {
		debug.Warnf("failed to set backup permissions: %v", err)
	}
	return nil
}
