package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyworkspace/daybook/internal/storage"
	"github.com/dailyworkspace/daybook/internal/types"
)

func TestDeleteNoteRemovesDependents(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")

	label := &types.Label{Name: "keep-me"}
	require.NoError(t, s.CreateLabel(ctx, label))
	list := &types.List{Name: "Reading"}
	require.NoError(t, s.CreateList(ctx, list))

	note := mustNote(t, s, "2025-11-01")
	require.NoError(t, s.AddNoteLabel(ctx, note.ID, label.ID))
	e := mustEntry(t, s, "2025-11-01", "gone", false)
	require.NoError(t, s.AddEntryLabel(ctx, e.ID, label.ID))
	_, err := s.AddListEntry(ctx, list.ID, e.ID, 0)
	require.NoError(t, err)

	require.NoError(t, s.DeleteNote(ctx, note.ID))

	_, err = s.GetNote(ctx, note.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetEntry(ctx, e.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Labels and lists survive, with no dangling associations.
	_, err = s.GetLabel(ctx, label.ID)
	assert.NoError(t, err)
	got, err := s.GetList(ctx, list.ID)
	require.NoError(t, err)
	assert.Zero(t, got.EntryCount)

	assert.ErrorIs(t, s.DeleteNote(ctx, note.ID), storage.ErrNotFound)
}

func TestClearNoteEntries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")

	mustEntry(t, s, "2025-11-01", "a", false)
	mustEntry(t, s, "2025-11-01", "b", false)
	note := mustNote(t, s, "2025-11-01")

	n, err := s.ClearNoteEntries(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Entries)
}

func TestDeleteRootPromotesEarliestCopy(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")

	root := mustEntry(t, s, "2025-11-01", "chain", true)
	var copies []*types.NoteEntry
	for _, d := range []string{"2025-11-03", "2025-11-02"} {
		note := mustNote(t, s, d)
		c := &types.NoteEntry{DailyNoteID: note.ID, Content: "chain", IsPinned: true, SourceEntryID: int64Ptr(root.ID)}
		require.NoError(t, s.CreateEntry(ctx, c))
		copies = append(copies, c)
	}
	nov3, nov2 := copies[0], copies[1]

	require.NoError(t, s.DeleteEntry(ctx, root.ID))

	promoted, err := s.GetEntry(ctx, nov2.ID)
	require.NoError(t, err)
	assert.Nil(t, promoted.SourceEntryID)

	later, err := s.GetEntry(ctx, nov3.ID)
	require.NoError(t, err)
	require.NotNil(t, later.SourceEntryID)
	assert.Equal(t, nov2.ID, *later.SourceEntryID)

	heads, err := s.ListPinnedChainHeads(ctx, "2025-11-04")
	require.NoError(t, err)
	require.Len(t, heads, 1)
	assert.Equal(t, nov3.ID, heads[0].ID)
}

func TestDeleteLabelKeepsOwners(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")

	label := &types.Label{Name: "temp"}
	require.NoError(t, s.CreateLabel(ctx, label))
	note := mustNote(t, s, "2025-11-01")
	e := mustEntry(t, s, "2025-11-01", "x", false)
	require.NoError(t, s.AddNoteLabel(ctx, note.ID, label.ID))
	require.NoError(t, s.AddEntryLabel(ctx, e.ID, label.ID))

	require.NoError(t, s.DeleteLabel(ctx, label.ID))

	got, err := s.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Labels)
	require.Len(t, got.Entries, 1)
	assert.Empty(t, got.Entries[0].Labels)

	assert.ErrorIs(t, s.DeleteLabel(ctx, label.ID), storage.ErrNotFound)
}
