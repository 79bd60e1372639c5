package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dailyworkspace/daybook/internal/types"
)

const entryColumns = `e.id, e.daily_note_id, e.title, e.content, e.content_type, e.order_index,
	e.include_in_report, e.is_important, e.is_completed, e.is_dev_null, e.is_pinned,
	e.source_entry_id, e.created_at, e.updated_at, n.date`

// entryOrder is the display order of entries within a note.
const entryOrder = `e.order_index DESC, e.created_at DESC, e.id DESC`

func scanEntry(row interface{ Scan(...any) error }) (*types.NoteEntry, error) {
	var e types.NoteEntry
	var includeInReport, isImportant, isCompleted, isDevNull, isPinned int
	var source sql.NullInt64
	var createdAt, updatedAt string
	if err := row.Scan(&e.ID, &e.DailyNoteID, &e.Title, &e.Content, &e.ContentType, &e.OrderIndex,
		&includeInReport, &isImportant, &isCompleted, &isDevNull, &isPinned,
		&source, &createdAt, &updatedAt, &e.NoteDate); err != nil {
		return nil, err
	}
	e.IncludeInReport = includeInReport != 0
	e.IsImportant = isImportant != 0
	e.IsCompleted = isCompleted != 0
	e.IsDevNull = isDevNull != 0
	e.IsPinned = isPinned != 0
	if source.Valid {
		id := source.Int64
		e.SourceEntryID = &id
	}
	e.CreatedAt = parseTimeString(createdAt)
	e.UpdatedAt = parseTimeString(updatedAt)
	return &e, nil
}

// queryEntries runs an entry query, then attaches labels in one batch.
func (qs queries) queryEntries(ctx context.Context, op, query string, args ...any) ([]*types.NoteEntry, error) {
	rows, err := qs.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError(op, err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*types.NoteEntry
	var ids []int64
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, wrapDBError(op, err)
		}
		entries = append(entries, e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(op, err)
	}
	_ = rows.Close()

	byEntry, err := qs.labelsFor(ctx, "entry_labels", "entry_id", ids)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		e.Labels = byEntry[e.ID]
		e.LabelIDs = labelIDs(e.Labels)
	}
	return entries, nil
}

// CreateEntry inserts an entry. Zero timestamps are set to now; an empty
// content type defaults to rich_text.
func (qs queries) CreateEntry(ctx context.Context, entry *types.NoteEntry) error {
	if entry.ContentType == "" {
		entry.ContentType = types.ContentTypeRichText
	}
	if err := entry.Validate(); err != nil {
		return validationError("create entry", err)
	}
	ts := now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = ts
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = entry.CreatedAt
	}
	var source any
	if entry.SourceEntryID != nil {
		source = *entry.SourceEntryID
	}
	res, err := qs.q.ExecContext(ctx, `
		INSERT INTO note_entries (
			daily_note_id, title, content, content_type, order_index,
			include_in_report, is_important, is_completed, is_dev_null, is_pinned,
			source_entry_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.DailyNoteID, entry.Title, entry.Content, entry.ContentType, entry.OrderIndex,
		boolToInt(entry.IncludeInReport), boolToInt(entry.IsImportant), boolToInt(entry.IsCompleted),
		boolToInt(entry.IsDevNull), boolToInt(entry.IsPinned),
		source, formatTime(entry.CreatedAt), formatTime(entry.UpdatedAt))
	if err != nil {
		if IsForeignKeyConstraintError(err) {
			return fmt.Errorf("create entry on note %d: %w", entry.DailyNoteID, ErrNotFound)
		}
		return wrapDBErrorf(err, "create entry on note %d", entry.DailyNoteID)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrapDBError("create entry", err)
	}
	entry.ID = id
	return nil
}

// GetEntry returns one entry with its labels.
func (qs queries) GetEntry(ctx context.Context, id int64) (*types.NoteEntry, error) {
	entries, err := qs.queryEntries(ctx, fmt.Sprintf("get entry %d", id), `
		SELECT `+entryColumns+`
		FROM note_entries e JOIN daily_notes n ON n.id = e.daily_note_id
		WHERE e.id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("get entry %d: %w", id, ErrNotFound)
	}
	return entries[0], nil
}

// GetEntriesForNote returns a note's entries in display order.
func (qs queries) GetEntriesForNote(ctx context.Context, noteID int64) ([]*types.NoteEntry, error) {
	return qs.queryEntries(ctx, fmt.Sprintf("get entries for note %d", noteID), `
		SELECT `+entryColumns+`
		FROM note_entries e JOIN daily_notes n ON n.id = e.daily_note_id
		WHERE e.daily_note_id = ?
		ORDER BY `+entryOrder, noteID)
}

// UpdateEntry writes the mutable fields of an entry. The owning note and the
// source link are fixed at creation.
func (qs queries) UpdateEntry(ctx context.Context, entry *types.NoteEntry) error {
	if entry.ContentType == "" {
		entry.ContentType = types.ContentTypeRichText
	}
	if err := types.ValidateContentType(entry.ContentType); err != nil {
		return validationError("update entry", err)
	}
	entry.UpdatedAt = now()
	res, err := qs.q.ExecContext(ctx, `
		UPDATE note_entries SET
			title = ?, content = ?, content_type = ?, order_index = ?,
			include_in_report = ?, is_important = ?, is_completed = ?, is_dev_null = ?, is_pinned = ?,
			updated_at = ?
		WHERE id = ?
	`, entry.Title, entry.Content, entry.ContentType, entry.OrderIndex,
		boolToInt(entry.IncludeInReport), boolToInt(entry.IsImportant), boolToInt(entry.IsCompleted),
		boolToInt(entry.IsDevNull), boolToInt(entry.IsPinned),
		formatTime(entry.UpdatedAt), entry.ID)
	if err != nil {
		return wrapDBErrorf(err, "update entry %d", entry.ID)
	}
	return notFoundIfNoRows(res, fmt.Sprintf("update entry %d", entry.ID))
}

// ListPinnedChainHeads returns, for every propagation chain that has an
// entry dated before beforeDate, the newest such entry, provided it is
// still pinned. A chain is a root entry plus every copy whose
// source_entry_id points at it.
func (qs queries) ListPinnedChainHeads(ctx context.Context, beforeDate string) ([]*types.NoteEntry, error) {
	return qs.queryEntries(ctx, "list pinned chain heads", `
		WITH ranked AS (
			SELECT e.id AS entry_id,
				ROW_NUMBER() OVER (
					PARTITION BY COALESCE(e.source_entry_id, e.id)
					ORDER BY n.date DESC, e.id DESC
				) AS rn
			FROM note_entries e JOIN daily_notes n ON n.id = e.daily_note_id
			WHERE n.date < ?
		)
		SELECT `+entryColumns+`
		FROM ranked r
		JOIN note_entries e ON e.id = r.entry_id
		JOIN daily_notes n ON n.id = e.daily_note_id
		WHERE r.rn = 1 AND e.is_pinned = 1
		ORDER BY n.date, e.order_index, e.id
	`, beforeDate)
}

// ListEntries returns entries across notes, oldest note first and in
// display order within a note.
func (qs queries) ListEntries(ctx context.Context, filter types.EntryFilter) ([]*types.NoteEntry, error) {
	var where []string
	var args []any
	if filter.From != "" {
		where = append(where, "n.date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		where = append(where, "n.date < ?")
		args = append(args, filter.To)
	}
	if filter.ReportOnly {
		where = append(where, "e.include_in_report = 1")
	}
	query := `SELECT ` + entryColumns + ` FROM note_entries e JOIN daily_notes n ON n.id = e.daily_note_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY n.date, ` + entryOrder
	return qs.queryEntries(ctx, "list entries", query, args...)
}

// AddEntryLabel attaches a label to an entry. Attaching twice is a no-op.
func (qs queries) AddEntryLabel(ctx context.Context, entryID, labelID int64) error {
	_, err := qs.q.ExecContext(ctx, `INSERT OR IGNORE INTO entry_labels (entry_id, label_id) VALUES (?, ?)`, entryID, labelID)
	if err != nil {
		if IsForeignKeyConstraintError(err) {
			return fmt.Errorf("add label %d to entry %d: %w", labelID, entryID, ErrNotFound)
		}
		return wrapDBErrorf(err, "add label %d to entry %d", labelID, entryID)
	}
	return nil
}

// RemoveEntryLabel detaches a label from an entry.
func (qs queries) RemoveEntryLabel(ctx context.Context, entryID, labelID int64) error {
	_, err := qs.q.ExecContext(ctx, `DELETE FROM entry_labels WHERE entry_id = ? AND label_id = ?`, entryID, labelID)
	return wrapDBErrorf(err, "remove label %d from entry %d", labelID, entryID)
}

// GetEntryLabels returns an entry's labels ordered by name.
func (qs queries) GetEntryLabels(ctx context.Context, entryID int64) ([]*types.Label, error) {
	byEntry, err := qs.labelsFor(ctx, "entry_labels", "entry_id", []int64{entryID})
	if err != nil {
		return nil, err
	}
	return byEntry[entryID], nil
}
