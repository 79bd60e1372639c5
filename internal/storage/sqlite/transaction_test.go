package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/dailyworkspace/daybook/internal/storage"
	"github.com/dailyworkspace/daybook/internal/types"
)

// TestRunInTransactionBasic verifies the callback runs exactly once.
func TestRunInTransactionBasic(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "")

	callCount := 0
	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		callCount++
		return nil
	})
	if err != nil {
		t.Errorf("RunInTransaction returned error: %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected callback to be called once, got %d", callCount)
	}
}

// TestRunInTransactionRollbackOnError verifies that writes made before an
// error are discarded and the error is returned unchanged.
func TestRunInTransactionRollbackOnError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "")

	sentinel := errors.New("intentional test error")
	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		if _, _, err := tx.EnsureNote(ctx, "2025-11-01"); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	if _, err := store.GetNoteByDate(ctx, "2025-11-01"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected note to be rolled back, got err=%v", err)
	}
}

// TestRunInTransactionPanicRecovery verifies that panics in the callback
// are recovered and re-raised after rollback.
func TestRunInTransactionPanicRecovery(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "")

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic to be re-raised, but no panic occurred")
		} else if r != "test panic" {
			t.Errorf("unexpected panic value: %v", r)
		}
		if _, err := store.GetNoteByDate(ctx, "2025-11-01"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected note to be rolled back, got err=%v", err)
		}
	}()

	_ = store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		_, _, _ = tx.EnsureNote(ctx, "2025-11-01")
		panic("test panic")
	})

	t.Error("should not reach here - panic should have been re-raised")
}

// TestTransactionCommit verifies that multi-entity writes are visible after commit.
func TestTransactionCommit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "")

	var entryID int64
	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		note, created, err := tx.EnsureNote(ctx, "2025-11-02")
		if err != nil {
			return err
		}
		if !created {
			t.Error("expected note to be created")
		}
		label := &types.Label{Name: "work"}
		if err := tx.CreateLabel(ctx, label); err != nil {
			return err
		}
		e := &types.NoteEntry{DailyNoteID: note.ID, Content: "inside tx"}
		if err := tx.CreateEntry(ctx, e); err != nil {
			return err
		}
		entryID = e.ID
		// Multi-statement deletes run directly on the enclosing transaction.
		if err := tx.AddEntryLabel(ctx, e.ID, label.ID); err != nil {
			return err
		}
		return tx.DeleteLabel(ctx, label.ID)
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	got, err := store.GetEntry(ctx, entryID)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got.Content != "inside tx" || len(got.Labels) != 0 {
		t.Errorf("unexpected entry after commit: %+v", got)
	}
}
