package sqlite

import (
	"context"

	"github.com/dailyworkspace/daybook/internal/types"
)

func scanLabel(row interface{ Scan(...any) error }) (*types.Label, error) {
	var l types.Label
	var createdAt string
	if err := row.Scan(&l.ID, &l.Name, &l.Color, &createdAt); err != nil {
		return nil, err
	}
	l.CreatedAt = parseTimeString(createdAt)
	return &l, nil
}

// CreateLabel inserts a label. Names are unique (case-sensitive); a
// duplicate name returns ErrConflict.
func (qs queries) CreateLabel(ctx context.Context, label *types.Label) error {
	if err := label.Validate(); err != nil {
		return validationError("create label", err)
	}
	if label.Color == "" {
		label.Color = types.DefaultLabelColor
	}
	if label.CreatedAt.IsZero() {
		label.CreatedAt = now()
	}
	res, err := qs.q.ExecContext(ctx, `
		INSERT INTO labels (name, color, created_at) VALUES (?, ?, ?)
	`, label.Name, label.Color, formatTime(label.CreatedAt))
	if err != nil {
		return wrapDBErrorf(err, "create label %q", label.Name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrapDBError("create label", err)
	}
	label.ID = id
	return nil
}

func (qs queries) GetLabel(ctx context.Context, id int64) (*types.Label, error) {
	row := qs.q.QueryRowContext(ctx, `SELECT id, name, color, created_at FROM labels WHERE id = ?`, id)
	l, err := scanLabel(row)
	if err != nil {
		return nil, wrapDBErrorf(err, "get label %d", id)
	}
	return l, nil
}

// GetLabelByName looks a label up by exact name.
func (qs queries) GetLabelByName(ctx context.Context, name string) (*types.Label, error) {
	row := qs.q.QueryRowContext(ctx, `SELECT id, name, color, created_at FROM labels WHERE name = ?`, name)
	l, err := scanLabel(row)
	if err != nil {
		return nil, wrapDBErrorf(err, "get label %q", name)
	}
	return l, nil
}

func (qs queries) ListLabels(ctx context.Context) ([]*types.Label, error) {
	rows, err := qs.q.QueryContext(ctx, `SELECT id, name, color, created_at FROM labels ORDER BY name`)
	if err != nil {
		return nil, wrapDBError("list labels", err)
	}
	defer func() { _ = rows.Close() }()

	var labels []*types.Label
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, wrapDBError("scan label", err)
		}
		labels = append(labels, l)
	}
	return labels, wrapDBError("list labels", rows.Err())
}
