// Package importer reconciles a backup document into the store.
//
// Import runs three passes inside one transaction:
//
//  1. search history: insert each (query, created_at) pair not already logged
//  2. labels: dedupe by exact name and build the old-id -> new-id remap table
//  3. notes: create missing dates; existing dates are skipped, or with
//     Replace have their entries and labels replaced by the document's
//
// If any pass fails, nothing is committed and the returned *Error carries the
// failing pass and the counters reached so far.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/dailyworkspace/daybook/internal/backup"
	"github.com/dailyworkspace/daybook/internal/debug"
	"github.com/dailyworkspace/daybook/internal/storage"
	"github.com/dailyworkspace/daybook/internal/telemetry"
	"github.com/dailyworkspace/daybook/internal/types"
)

// Pass names reported in *Error.
const (
	PassSearchHistory = "search_history"
	PassLabels        = "labels"
	PassNotes         = "notes"
)

// Options contains import configuration
type Options struct {
	Replace bool // Overwrite notes whose date already exists instead of skipping them
}

// Stats are the per-pass counters reported to the caller.
type Stats struct {
	LabelsImported        int `json:"labels_imported"`
	LabelsSkipped         int `json:"labels_skipped"`
	NotesImported         int `json:"notes_imported"`
	NotesSkipped          int `json:"notes_skipped"`
	EntriesImported       int `json:"entries_imported"`
	SearchHistoryImported int `json:"search_history_imported"`
}

// Result contains statistics about the import operation
type Result struct {
	Stats
	LabelIDMapping map[int64]int64 `json:"-"` // document label id -> store label id
	EntryIDMapping map[int64]int64 `json:"-"` // document entry id -> store entry id
}

// Error reports a failed import. No pass was committed.
type Error struct {
	Pass  string
	Stats Stats
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("import failed during %s pass: %v", e.Pass, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Import reconciles doc into s.
func Import(ctx context.Context, s storage.Storage, doc *backup.Document, opts Options) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty backup document", storage.ErrValidation)
	}

	var result *Result
	pass := ""
	err := s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		r := &reconciler{
			tx:   tx,
			opts: opts,
			result: &Result{
				LabelIDMapping: make(map[int64]int64),
				EntryIDMapping: make(map[int64]int64),
			},
		}
		result = r.result

		pass = PassSearchHistory
		if err := r.importSearchHistory(ctx, doc.SearchHistory); err != nil {
			return err
		}
		pass = PassLabels
		if err := r.importLabels(ctx, doc.AllLabels()); err != nil {
			return err
		}
		pass = PassNotes
		return r.importNotes(ctx, doc.SortedNotes())
	})

	recordMetrics(ctx, result, err)

	if err != nil {
		var stats Stats
		if result != nil {
			stats = result.Stats
		}
		return nil, &Error{Pass: pass, Stats: stats, Err: err}
	}

	debug.Logf("import complete: %+v\n", result.Stats)
	debug.LogEvent("IMPORT", fmt.Sprintf("replace=%t", opts.Replace), fmt.Sprintf("%+v", result.Stats))
	return result, nil
}

type reconciler struct {
	tx     storage.Transaction
	opts   Options
	result *Result
}

func (r *reconciler) importSearchHistory(ctx context.Context, items []backup.SearchHistoryItem) error {
	for _, item := range items {
		query := strings.TrimSpace(item.Query)
		if query == "" {
			continue
		}
		at, err := backup.ParseTime(item.CreatedAt)
		if err != nil {
			return fmt.Errorf("%w: %v", storage.ErrValidation, err)
		}
		exists, err := r.tx.HasSearchHistory(ctx, query, at)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := r.tx.AddSearchHistory(ctx, query, at); err != nil {
			return err
		}
		r.result.SearchHistoryImported++
	}
	return nil
}

func (r *reconciler) importLabels(ctx context.Context, labels []backup.Label) error {
	for _, l := range labels {
		existing, err := r.tx.GetLabelByName(ctx, l.Name)
		switch {
		case err == nil:
			r.result.LabelIDMapping[l.ID] = existing.ID
			r.result.LabelsSkipped++
			continue
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}

		label := &types.Label{Name: l.Name, Color: l.Color, CreatedAt: backup.Time(l.CreatedAt)}
		if err := r.tx.CreateLabel(ctx, label); err != nil {
			return fmt.Errorf("label %q: %w", l.Name, err)
		}
		r.result.LabelIDMapping[l.ID] = label.ID
		r.result.LabelsImported++
	}
	return nil
}

// mapLabels translates document label ids, silently dropping unknown ones.
func (r *reconciler) mapLabels(ids []int64) []int64 {
	var out []int64
	seen := make(map[int64]bool)
	for _, old := range ids {
		id, ok := r.result.LabelIDMapping[old]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (r *reconciler) importNotes(ctx context.Context, notes []backup.Note) error {
	var prev pinnedIndex
	for i := range notes {
		n := &notes[i]
		note, write, err := r.resolveNote(ctx, n)
		if err != nil {
			return fmt.Errorf("note %s: %w", n.Date, err)
		}
		if write {
			if err := r.importEntries(ctx, note, n.Entries, prev); err != nil {
				return fmt.Errorf("note %s: %w", n.Date, err)
			}
			for _, labelID := range r.mapLabels(n.LabelIDs()) {
				if err := r.tx.AddNoteLabel(ctx, note.ID, labelID); err != nil {
					return fmt.Errorf("note %s: %w", n.Date, err)
				}
			}
		}
		prev, err = r.indexPinned(ctx, note.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// resolveNote finds or creates the target note. The bool result reports
// whether the document's entries and labels should be written to it.
func (r *reconciler) resolveNote(ctx context.Context, n *backup.Note) (*types.DailyNote, bool, error) {
	existing, err := r.tx.GetNoteByDate(ctx, n.Date)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, false, err
	}

	if existing == nil {
		note := &types.DailyNote{
			Date:       n.Date,
			FireRating: n.FireRating,
			DailyGoal:  n.DailyGoal,
			CreatedAt:  backup.Time(n.CreatedAt),
			UpdatedAt:  backup.Time(n.UpdatedAt),
		}
		if err := r.tx.CreateNote(ctx, note); err != nil {
			return nil, false, err
		}
		r.result.NotesImported++
		return note, true, nil
	}

	if !r.opts.Replace {
		r.result.NotesSkipped++
		return existing, false, nil
	}

	if _, err := r.tx.ClearNoteEntries(ctx, existing.ID); err != nil {
		return nil, false, err
	}
	if err := r.tx.ClearNoteLabels(ctx, existing.ID); err != nil {
		return nil, false, err
	}
	existing.FireRating = n.FireRating
	existing.DailyGoal = n.DailyGoal
	if err := r.tx.UpdateNote(ctx, existing); err != nil {
		return nil, false, err
	}
	return existing, true, nil
}

func (r *reconciler) importEntries(ctx context.Context, note *types.DailyNote, entries []backup.Entry, prev pinnedIndex) error {
	// One copy per chain per note; a second claim falls back to a plain entry.
	usedSources := make(map[int64]bool)
	for i := range entries {
		de := &entries[i]
		e := &types.NoteEntry{
			DailyNoteID:     note.ID,
			Title:           de.Title,
			Content:         de.Content,
			ContentType:     de.ContentType,
			OrderIndex:      de.OrderIndex,
			IncludeInReport: de.IncludeInReport,
			IsImportant:     de.IsImportant,
			IsCompleted:     de.IsCompleted,
			IsDevNull:       de.IsDevNull,
			IsPinned:        de.IsPinned,
			CreatedAt:       backup.Time(de.CreatedAt),
			UpdatedAt:       backup.Time(de.UpdatedAt),
		}
		if e.ContentType == "" {
			e.ContentType = types.ContentTypeRichText
		}
		if source, ok := r.resolveSource(de, e, prev); ok && !usedSources[source] {
			usedSources[source] = true
			e.SourceEntryID = &source
		}

		if err := r.tx.CreateEntry(ctx, e); err != nil {
			return err
		}
		if de.ID != nil {
			r.result.EntryIDMapping[*de.ID] = e.ID
		}
		for _, labelID := range r.mapLabels(de.Labels) {
			if err := r.tx.AddEntryLabel(ctx, e.ID, labelID); err != nil {
				return err
			}
		}
		r.result.EntriesImported++
	}
	return nil
}

// resolveSource finds the chain root for an imported entry. A remapped
// source_entry_id wins. Otherwise a pinned entry that matches a pinned entry
// on the previous imported date by content is treated as its copy; that
// recovers chains from documents written before provenance was exported.
func (r *reconciler) resolveSource(de *backup.Entry, e *types.NoteEntry, prev pinnedIndex) (int64, bool) {
	if de.SourceEntryID != nil {
		if id, ok := r.result.EntryIDMapping[*de.SourceEntryID]; ok {
			return id, true
		}
	}
	if !e.IsPinned || (de.ID != nil && de.SourceEntryID == nil) {
		return 0, false
	}
	root, ok := prev[contentKey{e.Content, e.ContentType}]
	return root, ok
}

type contentKey struct {
	content     string
	contentType string
}

// pinnedIndex maps a pinned entry's content to its chain root.
type pinnedIndex map[contentKey]int64

func (r *reconciler) indexPinned(ctx context.Context, noteID int64) (pinnedIndex, error) {
	entries, err := r.tx.GetEntriesForNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	idx := make(pinnedIndex)
	for _, e := range entries {
		if !e.IsPinned {
			continue
		}
		key := contentKey{e.Content, e.ContentType}
		if _, ok := idx[key]; !ok {
			idx[key] = e.RootID()
		}
	}
	return idx, nil
}

func recordMetrics(ctx context.Context, result *Result, err error) {
	if !telemetry.Enabled() {
		return
	}
	m := telemetry.Meter("github.com/dailyworkspace/daybook/importer")
	runs, _ := m.Int64Counter("daybook.import.runs", metric.WithDescription("Backup imports attempted"))
	runs.Add(ctx, 1, metric.WithAttributes(attribute.Bool("daybook.import.failed", err != nil)))
	if err != nil || result == nil {
		return
	}
	notes, _ := m.Int64Counter("daybook.import.notes", metric.WithDescription("Notes imported"))
	notes.Add(ctx, int64(result.NotesImported))
	entries, _ := m.Int64Counter("daybook.import.entries", metric.WithDescription("Entries imported"))
	entries.Add(ctx, int64(result.EntriesImported))
	labels, _ := m.Int64Counter("daybook.import.labels", metric.WithDescription("Labels imported"))
	labels.Add(ctx, int64(result.LabelsImported))
}
