package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyworkspace/daybook/internal/storage"
	"github.com/dailyworkspace/daybook/internal/types"
)

func TestCreateNote(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")

	note := &types.DailyNote{Date: "2025-11-01", FireRating: 3, DailyGoal: "ship"}
	require.NoError(t, s.CreateNote(ctx, note))
	assert.NotZero(t, note.ID)
	assert.False(t, note.CreatedAt.IsZero())

	got, err := s.GetNoteByDate(ctx, "2025-11-01")
	require.NoError(t, err)
	assert.Equal(t, note.ID, got.ID)
	assert.Equal(t, 3, got.FireRating)
	assert.Equal(t, "ship", got.DailyGoal)

	err = s.CreateNote(ctx, &types.DailyNote{Date: "2025-11-01"})
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestCreateNoteKeepsGivenTimestamps(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")

	created := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	note := &types.DailyNote{Date: "2020-01-02", CreatedAt: created}
	require.NoError(t, s.CreateNote(ctx, note))

	got, err := s.GetNoteByDate(ctx, "2020-01-02")
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(created), "created_at = %v", got.CreatedAt)
	assert.True(t, got.UpdatedAt.Equal(created), "updated_at defaults to created_at, got %v", got.UpdatedAt)
}

func TestCreateNoteValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")

	tests := []struct {
		name string
		note types.DailyNote
	}{
		{"bad date", types.DailyNote{Date: "11/01/2025"}},
		{"impossible date", types.DailyNote{Date: "2025-02-30"}},
		{"rating too high", types.DailyNote{Date: "2025-11-01", FireRating: 6}},
		{"negative rating", types.DailyNote{Date: "2025-11-01", FireRating: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.note
			assert.ErrorIs(t, s.CreateNote(ctx, &n), storage.ErrValidation)
		})
	}
}

func TestEnsureNote(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")

	first, created, err := s.EnsureNote(ctx, "2025-11-02")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := s.EnsureNote(ctx, "2025-11-02")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	_, _, err = s.EnsureNote(ctx, "not-a-date")
	assert.ErrorIs(t, err, storage.ErrValidation)
}

func TestUpdateNote(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")

	note := mustNote(t, s, "2025-11-01")
	note.FireRating = 5
	note.DailyGoal = "focus"
	require.NoError(t, s.UpdateNote(ctx, note))

	got, err := s.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.FireRating)
	assert.Equal(t, "focus", got.DailyGoal)

	missing := &types.DailyNote{ID: 9999, Date: "2025-11-01"}
	assert.ErrorIs(t, s.UpdateNote(ctx, missing), storage.ErrNotFound)
}

func TestListNotes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")

	for _, d := range []string{"2025-10-30", "2025-11-01", "2025-11-15", "2025-12-01"} {
		mustNote(t, s, d)
	}
	label := &types.Label{Name: "travel"}
	require.NoError(t, s.CreateLabel(ctx, label))
	n := mustNote(t, s, "2025-11-15")
	require.NoError(t, s.AddNoteLabel(ctx, n.ID, label.ID))

	notes, err := s.ListNotes(ctx, types.NoteFilter{From: "2025-11-01", To: "2025-11-30"})
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "2025-11-15", notes[0].Date)
	assert.Equal(t, []int64{label.ID}, notes[0].LabelIDs)
	assert.Equal(t, "2025-11-01", notes[1].Date)

	limited, err := s.ListNotes(ctx, types.NoteFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "2025-12-01", limited[0].Date)
}

func TestNoteLabels(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")

	note := mustNote(t, s, "2025-11-01")
	a := &types.Label{Name: "b-label"}
	b := &types.Label{Name: "a-label", Color: "#ff0000"}
	require.NoError(t, s.CreateLabel(ctx, a))
	require.NoError(t, s.CreateLabel(ctx, b))

	require.NoError(t, s.AddNoteLabel(ctx, note.ID, a.ID))
	require.NoError(t, s.AddNoteLabel(ctx, note.ID, a.ID))
	require.NoError(t, s.AddNoteLabel(ctx, note.ID, b.ID))

	labels, err := s.GetNoteLabels(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, "a-label", labels[0].Name)
	assert.Equal(t, "#ff0000", labels[0].Color)

	require.NoError(t, s.RemoveNoteLabel(ctx, note.ID, b.ID))
	labels, err = s.GetNoteLabels(ctx, note.ID)
	require.NoError(t, err)
	assert.Len(t, labels, 1)

	require.NoError(t, s.ClearNoteLabels(ctx, note.ID))
	labels, err = s.GetNoteLabels(ctx, note.ID)
	require.NoError(t, err)
	assert.Empty(t, labels)

	assert.ErrorIs(t, s.AddNoteLabel(ctx, note.ID, 9999), storage.ErrNotFound)
}

func TestLabels(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")

	l := &types.Label{Name: "Work"}
	require.NoError(t, s.CreateLabel(ctx, l))
	assert.Equal(t, types.DefaultLabelColor, l.Color)

	// Names are case-sensitive.
	require.NoError(t, s.CreateLabel(ctx, &types.Label{Name: "work"}))
	assert.ErrorIs(t, s.CreateLabel(ctx, &types.Label{Name: "Work"}), storage.ErrConflict)
	assert.ErrorIs(t, s.CreateLabel(ctx, &types.Label{Name: "  "}), storage.ErrValidation)

	got, err := s.GetLabelByName(ctx, "Work")
	require.NoError(t, err)
	assert.Equal(t, l.ID, got.ID)

	_, err = s.GetLabelByName(ctx, "WORK")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	all, err := s.ListLabels(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAppSettingsAndMetadata(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")

	settings, err := s.GetAppSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(types.AppSettingsID), settings.ID)

	settings.SprintGoals = "finish import"
	require.NoError(t, s.UpdateAppSettings(ctx, settings))

	// EnsureAppSettings is idempotent and never resets values.
	again, err := s.EnsureAppSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "finish import", again.SprintGoals)

	v, err := s.GetMetadata(ctx, "schema_version")
	require.NoError(t, err)
	assert.Equal(t, schemaVersion, v)

	_, err = s.GetMetadata(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/reopen.db"

	s, err := New(ctx, path)
	require.NoError(t, err)
	_, _, err = s.EnsureNote(ctx, "2025-11-01")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "second Close is a no-op")

	s2 := newTestStore(t, path)
	_, err = s2.GetNoteByDate(ctx, "2025-11-01")
	assert.NoError(t, err)
}
