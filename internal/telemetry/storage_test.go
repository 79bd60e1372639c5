package telemetry

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyworkspace/daybook/internal/storage"
	"github.com/dailyworkspace/daybook/internal/storage/sqlite"
	"github.com/dailyworkspace/daybook/internal/types"
)

func newTestStore(t *testing.T) *sqlite.SQLiteStorage {
	t.Helper()
	s, err := sqlite.New(context.Background(), t.TempDir()+"/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestWrapStorageDisabled(t *testing.T) {
	require.NoError(t, Init(context.Background(), Config{}, "daybook-test", "0.0.0"))
	assert.False(t, Enabled())
	s := newTestStore(t)
	assert.Same(t, storage.Storage(s), WrapStorage(s))
}

func TestWrapStorageEnabled(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, Init(ctx, Config{Enabled: true, Writer: io.Discard}, "daybook-test", "0.0.0"))
	t.Cleanup(func() { _ = Shutdown(ctx) })
	s := newTestStore(t)
	wrapped := WrapStorage(s)
	_, ok := wrapped.(*InstrumentedStorage)
	assert.True(t, ok)
	assert.Equal(t, s.Path(), wrapped.Path())
}

func TestInstrumentedStoragePassesThrough(t *testing.T) {
	ctx := context.Background()
	s := newInstrumentedStorage(newTestStore(t))

	note, created, err := s.EnsureNote(ctx, "2025-11-01")
	require.NoError(t, err)
	assert.True(t, created)

	e := &types.NoteEntry{DailyNoteID: note.ID, Content: "hello"}
	require.NoError(t, s.CreateEntry(ctx, e))

	got, err := s.GetNoteByDate(ctx, "2025-11-01")
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)

	_, err = s.GetEntry(ctx, 12345)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	boom := errors.New("boom")
	err = s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		if _, _, err := tx.EnsureNote(ctx, "2025-11-02"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, err = s.GetNoteByDate(ctx, "2025-11-02")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
