package sqlite

import (
	"context"
	"fmt"

	"github.com/dailyworkspace/daybook/internal/types"
)

func goalTable(kind types.GoalKind) (string, error) {
	switch kind {
	case types.GoalSprint:
		return "sprint_goals", nil
	case types.GoalQuarterly:
		return "quarterly_goals", nil
	default:
		return "", fmt.Errorf("goal kind %q: %w", kind, ErrValidation)
	}
}

func scanGoal(kind types.GoalKind, row interface{ Scan(...any) error }) (*types.Goal, error) {
	g := types.Goal{Kind: kind}
	var createdAt, updatedAt string
	if err := row.Scan(&g.ID, &g.Text, &g.StartDate, &g.EndDate, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	g.CreatedAt = parseTimeString(createdAt)
	g.UpdatedAt = parseTimeString(updatedAt)
	return &g, nil
}

// CreateGoal inserts a goal into the table for its kind.
// Ranges may overlap existing goals.
func (qs queries) CreateGoal(ctx context.Context, goal *types.Goal) error {
	if err := goal.Validate(); err != nil {
		return validationError("create goal", err)
	}
	table, err := goalTable(goal.Kind)
	if err != nil {
		return err
	}
	ts := now()
	goal.CreatedAt = ts
	goal.UpdatedAt = ts
	// #nosec G201 - table name comes from goalTable
	res, err := qs.q.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (text, start_date, end_date, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
	`, table), goal.Text, goal.StartDate, goal.EndDate, formatTime(ts), formatTime(ts))
	if err != nil {
		return wrapDBErrorf(err, "create %s goal", goal.Kind)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrapDBError("create goal", err)
	}
	goal.ID = id
	return nil
}

func (qs queries) GetGoal(ctx context.Context, kind types.GoalKind, id int64) (*types.Goal, error) {
	table, err := goalTable(kind)
	if err != nil {
		return nil, err
	}
	// #nosec G201 - table name comes from goalTable
	row := qs.q.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, text, start_date, end_date, created_at, updated_at FROM %s WHERE id = ?
	`, table), id)
	g, err := scanGoal(kind, row)
	if err != nil {
		return nil, wrapDBErrorf(err, "get %s goal %d", kind, id)
	}
	return g, nil
}

// ListGoals returns all goals of a kind ordered by start date.
func (qs queries) ListGoals(ctx context.Context, kind types.GoalKind) ([]*types.Goal, error) {
	table, err := goalTable(kind)
	if err != nil {
		return nil, err
	}
	// #nosec G201 - table name comes from goalTable
	rows, err := qs.q.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, text, start_date, end_date, created_at, updated_at FROM %s ORDER BY start_date, id
	`, table))
	if err != nil {
		return nil, wrapDBErrorf(err, "list %s goals", kind)
	}
	defer func() { _ = rows.Close() }()

	var goals []*types.Goal
	for rows.Next() {
		g, err := scanGoal(kind, rows)
		if err != nil {
			return nil, wrapDBErrorf(err, "scan %s goal", kind)
		}
		goals = append(goals, g)
	}
	return goals, wrapDBErrorf(rows.Err(), "list %s goals", kind)
}

func (qs queries) UpdateGoal(ctx context.Context, goal *types.Goal) error {
	if err := goal.Validate(); err != nil {
		return validationError("update goal", err)
	}
	table, err := goalTable(goal.Kind)
	if err != nil {
		return err
	}
	goal.UpdatedAt = now()
	// #nosec G201 - table name comes from goalTable
	res, err := qs.q.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s SET text = ?, start_date = ?, end_date = ?, updated_at = ? WHERE id = ?
	`, table), goal.Text, goal.StartDate, goal.EndDate, formatTime(goal.UpdatedAt), goal.ID)
	if err != nil {
		return wrapDBErrorf(err, "update %s goal %d", goal.Kind, goal.ID)
	}
	return notFoundIfNoRows(res, fmt.Sprintf("update %s goal %d", goal.Kind, goal.ID))
}

func (qs queries) DeleteGoal(ctx context.Context, kind types.GoalKind, id int64) error {
	table, err := goalTable(kind)
	if err != nil {
		return err
	}
	// #nosec G201 - table name comes from goalTable
	res, err := qs.q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	if err != nil {
		return wrapDBErrorf(err, "delete %s goal %d", kind, id)
	}
	return notFoundIfNoRows(res, fmt.Sprintf("delete %s goal %d", kind, id))
}

// GoalForDate returns the goal active on date or, failing that, the next
// upcoming one. Among overlapping active goals the most recently started
// wins. DaysRemaining is counted from date to the goal's end.
func (qs queries) GoalForDate(ctx context.Context, kind types.GoalKind, date string) (*types.Goal, error) {
	if err := types.ValidateDate(date); err != nil {
		return nil, validationError("goal for date", err)
	}
	table, err := goalTable(kind)
	if err != nil {
		return nil, err
	}
	// #nosec G201 - table name comes from goalTable
	row := qs.q.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, text, start_date, end_date, created_at, updated_at FROM %s
		WHERE end_date >= ?
		ORDER BY
			CASE WHEN start_date <= ? THEN 0 ELSE 1 END,
			CASE WHEN start_date <= ? THEN start_date END DESC,
			start_date, id
		LIMIT 1
	`, table), date, date, date)
	g, err := scanGoal(kind, row)
	if err != nil {
		return nil, wrapDBErrorf(err, "%s goal for %s", kind, date)
	}
	days := g.DaysUntilEnd(date)
	g.DaysRemaining = &days
	return g, nil
}
