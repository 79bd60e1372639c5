package sqlite

import (
	"context"
	"testing"

	"github.com/dailyworkspace/daybook/internal/types"
)

// newTestStore creates a SQLiteStorage backed by a temp file with the
// settings row in place.
//
// To override (e.g., to reopen an existing file), pass a custom dbPath.
// File-based databases are more reliable than in-memory for connection pool
// scenarios, so the default is t.TempDir()+"/test.db".
func newTestStore(t *testing.T, dbPath string) *SQLiteStorage {
	t.Helper()

	if dbPath == "" {
		dbPath = t.TempDir() + "/test.db"
	}

	ctx := context.Background()
	store, err := New(ctx, dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if cerr := store.Close(); cerr != nil {
			t.Fatalf("Failed to close test database: %v", cerr)
		}
	})

	if _, err := store.EnsureAppSettings(ctx); err != nil {
		t.Fatalf("Failed to ensure app settings: %v", err)
	}

	return store
}

// mustNote creates (or fetches) the note for date.
func mustNote(t *testing.T, s *SQLiteStorage, date string) *types.DailyNote {
	t.Helper()
	note, _, err := s.EnsureNote(context.Background(), date)
	if err != nil {
		t.Fatalf("EnsureNote(%s): %v", date, err)
	}
	return note
}

// mustEntry creates an entry on the note for date.
func mustEntry(t *testing.T, s *SQLiteStorage, date, content string, pinned bool) *types.NoteEntry {
	t.Helper()
	note := mustNote(t, s, date)
	e := &types.NoteEntry{DailyNoteID: note.ID, Content: content, IsPinned: pinned}
	if err := s.CreateEntry(context.Background(), e); err != nil {
		t.Fatalf("CreateEntry(%s): %v", content, err)
	}
	return e
}

func int64Ptr(v int64) *int64 { return &v }
