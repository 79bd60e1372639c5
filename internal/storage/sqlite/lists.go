package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/dailyworkspace/daybook/internal/storage"
	"github.com/dailyworkspace/daybook/internal/types"
)

const listColumns = `l.id, l.name, l.description, l.color, l.order_index, l.is_archived,
	l.is_kanban, l.kanban_order, l.created_at, l.updated_at,
	(SELECT COUNT(*) FROM list_entries le WHERE le.list_id = l.id)`

func scanList(row interface{ Scan(...any) error }) (*types.List, error) {
	var l types.List
	var isArchived, isKanban, kanbanOrder int
	var createdAt, updatedAt string
	if err := row.Scan(&l.ID, &l.Name, &l.Description, &l.Color, &l.OrderIndex, &isArchived,
		&isKanban, &kanbanOrder, &createdAt, &updatedAt, &l.EntryCount); err != nil {
		return nil, err
	}
	l.IsArchived = isArchived != 0
	l.Kind = types.KindFromFlags(isKanban != 0, kanbanOrder)
	l.CreatedAt = parseTimeString(createdAt)
	l.UpdatedAt = parseTimeString(updatedAt)
	return &l, nil
}

// CreateList inserts a regular list or a Kanban column, depending on Kind.
func (qs queries) CreateList(ctx context.Context, list *types.List) error {
	if err := list.Validate(); err != nil {
		return validationError("create list", err)
	}
	if list.Kind == nil {
		list.Kind = types.RegularKind{}
	}
	if list.Color == "" {
		list.Color = types.DefaultLabelColor
	}
	ts := now()
	list.CreatedAt = ts
	list.UpdatedAt = ts
	res, err := qs.q.ExecContext(ctx, `
		INSERT INTO lists (name, description, color, order_index, is_archived, is_kanban, kanban_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, list.Name, list.Description, list.Color, list.OrderIndex, boolToInt(list.IsArchived),
		boolToInt(list.IsKanban()), list.KanbanOrder(), formatTime(ts), formatTime(ts))
	if err != nil {
		return wrapDBErrorf(err, "create list %q", list.Name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrapDBError("create list", err)
	}
	list.ID = id
	return nil
}

func (qs queries) GetList(ctx context.Context, id int64) (*types.List, error) {
	row := qs.q.QueryRowContext(ctx, `SELECT `+listColumns+` FROM lists l WHERE l.id = ?`, id)
	l, err := scanList(row)
	if err != nil {
		return nil, wrapDBErrorf(err, "get list %d", id)
	}
	return l, nil
}

// ListLists returns lists matching filter. Kanban columns sort by their
// board position, regular lists by order_index.
func (qs queries) ListLists(ctx context.Context, filter types.ListFilter) ([]*types.List, error) {
	var where []string
	var args []any
	if filter.Kanban != nil {
		where = append(where, "l.is_kanban = ?")
		args = append(args, boolToInt(*filter.Kanban))
	}
	if !filter.IncludeArchived {
		where = append(where, "l.is_archived = 0")
	}
	query := `SELECT ` + listColumns + ` FROM lists l`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY l.is_kanban, CASE WHEN l.is_kanban = 1 THEN l.kanban_order ELSE l.order_index END, l.name`
	return qs.queryLists(ctx, "list lists", query, args...)
}

func (qs queries) queryLists(ctx context.Context, op, query string, args ...any) ([]*types.List, error) {
	rows, err := qs.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError(op, err)
	}
	defer func() { _ = rows.Close() }()

	var lists []*types.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, wrapDBError(op, err)
		}
		lists = append(lists, l)
	}
	return lists, wrapDBError(op, rows.Err())
}

// UpdateList writes every mutable field, including the kind.
func (qs queries) UpdateList(ctx context.Context, list *types.List) error {
	if err := list.Validate(); err != nil {
		return validationError("update list", err)
	}
	list.UpdatedAt = now()
	res, err := qs.q.ExecContext(ctx, `
		UPDATE lists SET name = ?, description = ?, color = ?, order_index = ?, is_archived = ?,
			is_kanban = ?, kanban_order = ?, updated_at = ?
		WHERE id = ?
	`, list.Name, list.Description, list.Color, list.OrderIndex, boolToInt(list.IsArchived),
		boolToInt(list.IsKanban()), list.KanbanOrder(), formatTime(list.UpdatedAt), list.ID)
	if err != nil {
		return wrapDBErrorf(err, "update list %d", list.ID)
	}
	return notFoundIfNoRows(res, fmt.Sprintf("update list %d", list.ID))
}

// AddListEntry records membership. It reports false when the entry was
// already in the list. Unknown list or entry ids return ErrNotFound.
func (qs queries) AddListEntry(ctx context.Context, listID, entryID int64, orderIndex int) (bool, error) {
	res, err := qs.q.ExecContext(ctx, `
		INSERT OR IGNORE INTO list_entries (list_id, entry_id, order_index, created_at)
		VALUES (?, ?, ?, ?)
	`, listID, entryID, orderIndex, formatTime(now()))
	if err != nil {
		if IsForeignKeyConstraintError(err) {
			return false, fmt.Errorf("add entry %d to list %d: %w", entryID, listID, ErrNotFound)
		}
		return false, wrapDBErrorf(err, "add entry %d to list %d", entryID, listID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapDBError("add list entry", err)
	}
	return n > 0, nil
}

// RemoveListEntry deletes membership, returning storage.ErrNotMember if the
// entry was not in the list.
func (qs queries) RemoveListEntry(ctx context.Context, listID, entryID int64) error {
	res, err := qs.q.ExecContext(ctx, `DELETE FROM list_entries WHERE list_id = ? AND entry_id = ?`, listID, entryID)
	if err != nil {
		return wrapDBErrorf(err, "remove entry %d from list %d", entryID, listID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError("remove list entry", err)
	}
	if n == 0 {
		return fmt.Errorf("remove entry %d from list %d: %w", entryID, listID, storage.ErrNotMember)
	}
	return nil
}

func (qs queries) IsListMember(ctx context.Context, listID, entryID int64) (bool, error) {
	var n int
	err := qs.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM list_entries WHERE list_id = ? AND entry_id = ?`, listID, entryID).Scan(&n)
	if err != nil {
		return false, wrapDBErrorf(err, "check entry %d in list %d", entryID, listID)
	}
	return n > 0, nil
}

// GetListEntries returns a list's entries ordered by their position in the list.
func (qs queries) GetListEntries(ctx context.Context, listID int64) ([]*types.NoteEntry, error) {
	return qs.queryEntries(ctx, fmt.Sprintf("get entries of list %d", listID), `
		SELECT `+entryColumns+`
		FROM list_entries le
		JOIN note_entries e ON e.id = le.entry_id
		JOIN daily_notes n ON n.id = e.daily_note_id
		WHERE le.list_id = ?
		ORDER BY le.order_index, le.created_at DESC, e.id
	`, listID)
}

// GetEntryLists returns every list containing an entry.
func (qs queries) GetEntryLists(ctx context.Context, entryID int64) ([]*types.List, error) {
	return qs.queryLists(ctx, fmt.Sprintf("get lists of entry %d", entryID), `
		SELECT `+listColumns+`
		FROM lists l JOIN list_entries m ON m.list_id = l.id
		WHERE m.entry_id = ?
		ORDER BY l.is_kanban, l.kanban_order, l.order_index, l.name
	`, entryID)
}

// SetListEntryOrder moves an entry within a list.
func (qs queries) SetListEntryOrder(ctx context.Context, listID, entryID int64, orderIndex int) error {
	res, err := qs.q.ExecContext(ctx, `
		UPDATE list_entries SET order_index = ? WHERE list_id = ? AND entry_id = ?
	`, orderIndex, listID, entryID)
	if err != nil {
		return wrapDBErrorf(err, "order entry %d in list %d", entryID, listID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError("order list entry", err)
	}
	if n == 0 {
		return fmt.Errorf("order entry %d in list %d: %w", entryID, listID, storage.ErrNotMember)
	}
	return nil
}
