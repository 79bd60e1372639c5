package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyworkspace/daybook/internal/storage"
	"github.com/dailyworkspace/daybook/internal/types"
)

func TestGoalsCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")

	g := &types.Goal{Kind: types.GoalSprint, Text: "ship", StartDate: "2025-11-01", EndDate: "2025-11-14"}
	require.NoError(t, s.CreateGoal(ctx, g))

	bad := &types.Goal{Kind: types.GoalSprint, StartDate: "2025-11-14", EndDate: "2025-11-14"}
	assert.ErrorIs(t, s.CreateGoal(ctx, bad), storage.ErrValidation)

	// Overlapping ranges are allowed.
	overlap := &types.Goal{Kind: types.GoalSprint, Text: "polish", StartDate: "2025-11-10", EndDate: "2025-11-20"}
	require.NoError(t, s.CreateGoal(ctx, overlap))

	// Kinds live in separate tables.
	q := &types.Goal{Kind: types.GoalQuarterly, Text: "Q4", StartDate: "2025-10-01", EndDate: "2025-12-31"}
	require.NoError(t, s.CreateGoal(ctx, q))

	sprints, err := s.ListGoals(ctx, types.GoalSprint)
	require.NoError(t, err)
	assert.Len(t, sprints, 2)

	g.Text = "ship it"
	require.NoError(t, s.UpdateGoal(ctx, g))
	got, err := s.GetGoal(ctx, types.GoalSprint, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "ship it", got.Text)

	require.NoError(t, s.DeleteGoal(ctx, types.GoalSprint, g.ID))
	_, err = s.GetGoal(ctx, types.GoalSprint, g.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.ListGoals(ctx, "weekly")
	assert.ErrorIs(t, err, storage.ErrValidation)
}

func TestGoalForDate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")

	first := &types.Goal{Kind: types.GoalSprint, Text: "first", StartDate: "2025-11-01", EndDate: "2025-11-14"}
	second := &types.Goal{Kind: types.GoalSprint, Text: "second", StartDate: "2025-11-10", EndDate: "2025-11-24"}
	upcoming := &types.Goal{Kind: types.GoalSprint, Text: "next", StartDate: "2025-12-01", EndDate: "2025-12-14"}
	for _, g := range []*types.Goal{first, second, upcoming} {
		require.NoError(t, s.CreateGoal(ctx, g))
	}

	tests := []struct {
		date     string
		wantText string
		wantDays int
	}{
		{"2025-11-05", "first", 9},
		{"2025-11-12", "second", 12},
		{"2025-11-26", "next", 18},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			g, err := s.GoalForDate(ctx, types.GoalSprint, tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, g.Text)
			require.NotNil(t, g.DaysRemaining)
			assert.Equal(t, tt.wantDays, *g.DaysRemaining)
		})
	}

	_, err := s.GoalForDate(ctx, types.GoalSprint, "2026-01-01")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
