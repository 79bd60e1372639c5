package membership

import (
	"context"
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

func newEntry(t *testing.T, s storage.Storage, content string) *types.NoteEntry {
	t.Helper()
	ctx := context.Background()
	note, _, err := s.EnsureNote(ctx, "2025-11-01")
	require.NoError(t, err)
	e := &types.NoteEntry{DailyNoteID: note.ID, Content: content}
	require.NoError(t, s.CreateEntry(ctx, e))
	return e
}

func newList(t *testing.T, s storage.Storage, name string, kind types.ListKind) *types.List {
	t.Helper()
	l := &types.List{Name: name, Kind: kind}
	require.NoError(t, s.CreateList(context.Background(), l))
	return l
}

func kanbanMemberships(t *testing.T, s storage.Storage, entryID int64) []string {
	t.Helper()
	lists, err := s.GetEntryLists(context.Background(), entryID)
	require.NoError(t, err)
	var names []string
	for _, l := range lists {
		if l.IsKanban() {
			names = append(names, l.Name)
		}
	}
	return names
}

func TestKanbanMoveScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := New(s, nil)

	cols, err := m.InitializeKanban(ctx)
	require.NoError(t, err)
	require.Len(t, cols, 3)
	for i, c := range cols {
		assert.Equal(t, types.DefaultKanbanColumns[i], c.Name)
		assert.Equal(t, i, c.KanbanOrder())
		assert.True(t, c.IsKanban())
	}

	e := newEntry(t, s, "task")
	res, err := m.AddEntryToList(ctx, cols[0].ID, e.ID, 0)
	require.NoError(t, err)
	assert.True(t, res.Added)
	assert.Empty(t, res.RemovedFrom)

	res, err = m.AddEntryToList(ctx, cols[1].ID, e.ID, 0)
	require.NoError(t, err)
	assert.True(t, res.Added)
	assert.Equal(t, []int64{cols[0].ID}, res.RemovedFrom)
	assert.Equal(t, []string{"In Progress"}, kanbanMemberships(t, s, e.ID))
}

func TestAddToSameColumnIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := New(s, nil)
	cols, err := m.InitializeKanban(ctx)
	require.NoError(t, err)
	e := newEntry(t, s, "task")

	_, err = m.AddEntryToList(ctx, cols[2].ID, e.ID, 0)
	require.NoError(t, err)
	res, err := m.AddEntryToList(ctx, cols[2].ID, e.ID, 0)
	require.NoError(t, err)
	assert.False(t, res.Added)
	assert.Equal(t, []string{"Done"}, kanbanMemberships(t, s, e.ID))
}

func TestRegularListsAreUnrestricted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := New(s, nil)
	cols, err := m.InitializeKanban(ctx)
	require.NoError(t, err)
	a := newList(t, s, "reading", nil)
	b := newList(t, s, "ideas", types.RegularKind{})
	e := newEntry(t, s, "note")

	_, err = m.AddEntryToList(ctx, cols[0].ID, e.ID, 0)
	require.NoError(t, err)
	_, err = m.AddEntryToList(ctx, a.ID, e.ID, 0)
	require.NoError(t, err)
	res, err := m.AddEntryToList(ctx, b.ID, e.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, res.RemovedFrom)

	lists, err := s.GetEntryLists(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, lists, 3, "regular adds never touch other memberships")
}

func TestRepairsPreexistingInconsistency(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := New(s, nil)
	cols, err := m.InitializeKanban(ctx)
	require.NoError(t, err)
	e := newEntry(t, s, "task")

	// Written directly, bypassing the enforcer.
	_, err = s.AddListEntry(ctx, cols[0].ID, e.ID, 0)
	require.NoError(t, err)
	_, err = s.AddListEntry(ctx, cols[1].ID, e.ID, 0)
	require.NoError(t, err)

	res, err := m.AddEntryToList(ctx, cols[2].ID, e.ID, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{cols[0].ID, cols[1].ID}, res.RemovedFrom)
	assert.Equal(t, []string{"Done"}, kanbanMemberships(t, s, e.ID))
}

func TestAddUnknownIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := New(s, nil)
	l := newList(t, s, "reading", nil)
	e := newEntry(t, s, "note")

	_, err := m.AddEntryToList(ctx, 999, e.ID, 0)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = m.AddEntryToList(ctx, l.ID, 999, 0)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRemoveEntryFromList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := New(s, nil)
	l := newList(t, s, "reading", nil)
	e := newEntry(t, s, "note")

	err := m.RemoveEntryFromList(ctx, l.ID, e.ID)
	assert.ErrorIs(t, err, storage.ErrNotMember)

	_, err = m.AddEntryToList(ctx, l.ID, e.ID, 0)
	require.NoError(t, err)
	require.NoError(t, m.RemoveEntryFromList(ctx, l.ID, e.ID))

	member, err := s.IsListMember(ctx, l.ID, e.ID)
	require.NoError(t, err)
	assert.False(t, member)

	_, err = s.GetEntry(ctx, e.ID)
	assert.NoError(t, err, "removing membership keeps the entry")
}

func TestInitializeKanbanGuard(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	newList(t, s, "Backlog", types.KanbanKind{Order: 5})

	m := New(s, nil)
	_, err := m.InitializeKanban(ctx)
	assert.ErrorIs(t, err, storage.ErrKanbanInitialized)

	kanban := true
	lists, err := s.ListLists(ctx, types.ListFilter{Kanban: &kanban})
	require.NoError(t, err)
	assert.Len(t, lists, 1)
}

func TestInitializeKanbanCustomColumns(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := New(s, []string{"Next", "Now"})

	cols, err := m.InitializeKanban(ctx)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "Now", cols[1].Name)
	assert.Equal(t, 1, cols[1].KanbanOrder())
}

func TestReorderKanban(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := New(s, nil)
	cols, err := m.InitializeKanban(ctx)
	require.NoError(t, err)
	regular := newList(t, s, "reading", nil)

	err = m.ReorderKanban(ctx, []types.OrderUpdate{{ID: cols[0].ID, OrderIndex: 9}, {ID: regular.ID, OrderIndex: 1}})
	assert.ErrorIs(t, err, storage.ErrNotKanban)
	got, err := s.GetList(ctx, cols[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.KanbanOrder(), "rejected reorder changes nothing")

	require.NoError(t, m.ReorderKanban(ctx, []types.OrderUpdate{
		{ID: cols[0].ID, OrderIndex: 2},
		{ID: cols[2].ID, OrderIndex: 0},
	}))
	board, err := m.Board(ctx)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "Done", board[0].List.Name)
	assert.Equal(t, "To Do", board[2].List.Name)
}

func TestReorderLists(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := New(s, nil)
	a := newList(t, s, "a", nil)
	b := newList(t, s, "b", nil)

	require.NoError(t, m.ReorderLists(ctx, []types.OrderUpdate{{ID: a.ID, OrderIndex: 2}, {ID: b.ID, OrderIndex: 1}}))
	regular := false
	lists, err := s.ListLists(ctx, types.ListFilter{Kanban: &regular})
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "b", lists[0].Name)

	err = m.ReorderLists(ctx, []types.OrderUpdate{{ID: 404, OrderIndex: 0}})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestReorderListEntries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := New(s, nil)
	l := newList(t, s, "reading", nil)
	e1 := newEntry(t, s, "one")
	e2 := newEntry(t, s, "two")
	_, err := m.AddEntryToList(ctx, l.ID, e1.ID, 0)
	require.NoError(t, err)
	_, err = m.AddEntryToList(ctx, l.ID, e2.ID, 1)
	require.NoError(t, err)

	require.NoError(t, m.ReorderListEntries(ctx, l.ID, []types.OrderUpdate{{ID: e1.ID, OrderIndex: 5}, {ID: e2.ID, OrderIndex: 0}}))
	entries, err := s.GetListEntries(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, e2.ID, entries[0].ID)

	other := newEntry(t, s, "outsider")
	err = m.ReorderListEntries(ctx, l.ID, []types.OrderUpdate{{ID: other.ID, OrderIndex: 0}})
	assert.ErrorIs(t, err, storage.ErrNotMember)
}

func TestUpdateListToKanbanKeepsExclusivity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := New(s, nil)
	cols, err := m.InitializeKanban(ctx)
	require.NoError(t, err)
	l := newList(t, s, "Blocked", nil)
	e := newEntry(t, s, "task")
	_, err = m.AddEntryToList(ctx, cols[0].ID, e.ID, 0)
	require.NoError(t, err)
	_, err = m.AddEntryToList(ctx, l.ID, e.ID, 0)
	require.NoError(t, err)

	l.Kind = types.KanbanKind{Order: 3}
	require.NoError(t, m.UpdateList(ctx, l))
	assert.Equal(t, []string{"Blocked"}, kanbanMemberships(t, s, e.ID))
}
