// Package storage provides shared types for journal storage.
//
// The concrete implementation lives in the sqlite sub-package. This package
// holds the interfaces and sentinel errors referenced by both the
// implementation and its consumers (engines, HTTP handlers, cmd/daybook).
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/dailyworkspace/daybook/internal/types"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned for unique-name collisions and other conflicting state.
var ErrConflict = errors.New("conflict")

// ErrValidation is returned when input fails validation before any write.
var ErrValidation = errors.New("validation failed")

// ErrKanbanInitialized is returned when the canonical Kanban columns are
// requested but a Kanban column already exists.
var ErrKanbanInitialized = errors.New("kanban board already initialized")

// ErrNotKanban is returned when a Kanban-only operation targets a regular list.
var ErrNotKanban = errors.New("not a Kanban column")

// ErrNotMember is returned when removing an entry from a list it is not in.
var ErrNotMember = errors.New("entry not in list")

// Store is the set of entity operations available both on the storage and
// inside a transaction.
type Store interface {
	// Daily notes
	GetNote(ctx context.Context, id int64) (*types.DailyNote, error)
	GetNoteByDate(ctx context.Context, date string) (*types.DailyNote, error)
	CreateNote(ctx context.Context, note *types.DailyNote) error
	EnsureNote(ctx context.Context, date string) (*types.DailyNote, bool, error)
	UpdateNote(ctx context.Context, note *types.DailyNote) error
	DeleteNote(ctx context.Context, id int64) error
	ListNotes(ctx context.Context, filter types.NoteFilter) ([]*types.DailyNote, error)
	ClearNoteEntries(ctx context.Context, noteID int64) (int, error)

	// Note labels
	AddNoteLabel(ctx context.Context, noteID, labelID int64) error
	RemoveNoteLabel(ctx context.Context, noteID, labelID int64) error
	ClearNoteLabels(ctx context.Context, noteID int64) error
	GetNoteLabels(ctx context.Context, noteID int64) ([]*types.Label, error)

	// Entries
	CreateEntry(ctx context.Context, entry *types.NoteEntry) error
	GetEntry(ctx context.Context, id int64) (*types.NoteEntry, error)
	GetEntriesForNote(ctx context.Context, noteID int64) ([]*types.NoteEntry, error)
	UpdateEntry(ctx context.Context, entry *types.NoteEntry) error
	DeleteEntry(ctx context.Context, id int64) error
	ListPinnedChainHeads(ctx context.Context, beforeDate string) ([]*types.NoteEntry, error)
	ListEntries(ctx context.Context, filter types.EntryFilter) ([]*types.NoteEntry, error)

	// Entry labels
	AddEntryLabel(ctx context.Context, entryID, labelID int64) error
	RemoveEntryLabel(ctx context.Context, entryID, labelID int64) error
	GetEntryLabels(ctx context.Context, entryID int64) ([]*types.Label, error)

	// Labels
	CreateLabel(ctx context.Context, label *types.Label) error
	GetLabel(ctx context.Context, id int64) (*types.Label, error)
	GetLabelByName(ctx context.Context, name string) (*types.Label, error)
	ListLabels(ctx context.Context) ([]*types.Label, error)
	DeleteLabel(ctx context.Context, id int64) error

	// Lists and list membership
	CreateList(ctx context.Context, list *types.List) error
	GetList(ctx context.Context, id int64) (*types.List, error)
	ListLists(ctx context.Context, filter types.ListFilter) ([]*types.List, error)
	UpdateList(ctx context.Context, list *types.List) error
	DeleteList(ctx context.Context, id int64) error
	AddListEntry(ctx context.Context, listID, entryID int64, orderIndex int) (bool, error)
	RemoveListEntry(ctx context.Context, listID, entryID int64) error
	IsListMember(ctx context.Context, listID, entryID int64) (bool, error)
	GetListEntries(ctx context.Context, listID int64) ([]*types.NoteEntry, error)
	GetEntryLists(ctx context.Context, entryID int64) ([]*types.List, error)
	SetListEntryOrder(ctx context.Context, listID, entryID int64, orderIndex int) error

	// Goals
	CreateGoal(ctx context.Context, goal *types.Goal) error
	GetGoal(ctx context.Context, kind types.GoalKind, id int64) (*types.Goal, error)
	ListGoals(ctx context.Context, kind types.GoalKind) ([]*types.Goal, error)
	UpdateGoal(ctx context.Context, goal *types.Goal) error
	DeleteGoal(ctx context.Context, kind types.GoalKind, id int64) error
	GoalForDate(ctx context.Context, kind types.GoalKind, date string) (*types.Goal, error)

	// Search history
	AddSearchHistory(ctx context.Context, query string, at time.Time) error
	HasSearchHistory(ctx context.Context, query string, at time.Time) (bool, error)
	ListSearchHistory(ctx context.Context) ([]*types.SearchHistory, error)
	ListAllSearchHistory(ctx context.Context) ([]*types.SearchHistory, error)
	ClearSearchHistory(ctx context.Context) error

	// Settings and metadata
	GetAppSettings(ctx context.Context) (*types.AppSettings, error)
	UpdateAppSettings(ctx context.Context, settings *types.AppSettings) error
	SetMetadata(ctx context.Context, key, value string) error
	GetMetadata(ctx context.Context, key string) (string, error)
}

// Transaction provides atomic multi-operation support within a single
// database transaction.
//
//   - All operations share one database connection
//   - Changes are not visible to other connections until commit
//   - If the callback returns an error or panics, the transaction is rolled back
//   - On successful return from the callback, the transaction is committed
//
// Example:
//
//	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
//	    note, _, err := tx.EnsureNote(ctx, "2025-11-02")
//	    if err != nil {
//	        return err // Triggers rollback
//	    }
//	    return tx.CreateEntry(ctx, &types.NoteEntry{DailyNoteID: note.ID, ...})
//	})
type Transaction interface {
	Store
}

// Storage is the interface satisfied by *sqlite.SQLiteStorage.
// Consumers depend on this interface so that decorators (telemetry) and
// alternative implementations can be substituted.
type Storage interface {
	Store

	// EnsureAppSettings creates the singleton settings row if missing and
	// returns it. Called once at startup; safe to call repeatedly.
	EnsureAppSettings(ctx context.Context) (*types.AppSettings, error)

	// RunInTransaction executes fn inside one write transaction.
	RunInTransaction(ctx context.Context, fn func(tx Transaction) error) error

	Path() string
	Close() error
}
