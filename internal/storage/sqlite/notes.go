package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dailyworkspace/daybook/internal/types"
)

const noteColumns = `id, date, fire_rating, daily_goal, created_at, updated_at`

func scanNote(row interface{ Scan(...any) error }) (*types.DailyNote, error) {
	var n types.DailyNote
	var createdAt, updatedAt string
	if err := row.Scan(&n.ID, &n.Date, &n.FireRating, &n.DailyGoal, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	n.CreatedAt = parseTimeString(createdAt)
	n.UpdatedAt = parseTimeString(updatedAt)
	return &n, nil
}

// GetNote returns a note with its labels and entries.
func (qs queries) GetNote(ctx context.Context, id int64) (*types.DailyNote, error) {
	row := qs.q.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM daily_notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err != nil {
		return nil, wrapDBErrorf(err, "get note %d", id)
	}
	return qs.hydrateNote(ctx, n)
}

// GetNoteByDate returns the note for a YYYY-MM-DD date with its labels and entries.
func (qs queries) GetNoteByDate(ctx context.Context, date string) (*types.DailyNote, error) {
	row := qs.q.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM daily_notes WHERE date = ?`, date)
	n, err := scanNote(row)
	if err != nil {
		return nil, wrapDBErrorf(err, "get note for %s", date)
	}
	return qs.hydrateNote(ctx, n)
}

func (qs queries) hydrateNote(ctx context.Context, n *types.DailyNote) (*types.DailyNote, error) {
	labels, err := qs.GetNoteLabels(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	n.Labels = labels
	n.LabelIDs = labelIDs(labels)
	entries, err := qs.GetEntriesForNote(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	n.Entries = entries
	return n, nil
}

// CreateNote inserts a note. A second note for the same date is a conflict.
// Zero timestamps are set to now; others are kept so imports round-trip.
func (qs queries) CreateNote(ctx context.Context, note *types.DailyNote) error {
	if err := note.Validate(); err != nil {
		return validationError("create note", err)
	}
	ts := now()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = ts
	}
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = note.CreatedAt
	}
	res, err := qs.q.ExecContext(ctx, `
		INSERT INTO daily_notes (date, fire_rating, daily_goal, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, note.Date, note.FireRating, note.DailyGoal, formatTime(note.CreatedAt), formatTime(note.UpdatedAt))
	if err != nil {
		return wrapDBErrorf(err, "create note %s", note.Date)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrapDBError("create note", err)
	}
	note.ID = id
	return nil
}

// EnsureNote returns the note for date, creating an empty one if needed.
// The bool result reports whether the note was created by this call.
func (qs queries) EnsureNote(ctx context.Context, date string) (*types.DailyNote, bool, error) {
	if err := types.ValidateDate(date); err != nil {
		return nil, false, validationError("ensure note", err)
	}
	ts := formatTime(now())
	res, err := qs.q.ExecContext(ctx, `
		INSERT INTO daily_notes (date, fire_rating, daily_goal, created_at, updated_at)
		VALUES (?, 0, '', ?, ?)
		ON CONFLICT(date) DO NOTHING
	`, date, ts, ts)
	if err != nil {
		return nil, false, wrapDBErrorf(err, "ensure note %s", date)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, wrapDBError("ensure note", err)
	}
	note, err := qs.GetNoteByDate(ctx, date)
	if err != nil {
		return nil, false, err
	}
	return note, n > 0, nil
}

// UpdateNote writes the scalar fields of a note.
func (qs queries) UpdateNote(ctx context.Context, note *types.DailyNote) error {
	if err := note.Validate(); err != nil {
		return validationError("update note", err)
	}
	note.UpdatedAt = now()
	res, err := qs.q.ExecContext(ctx, `
		UPDATE daily_notes SET fire_rating = ?, daily_goal = ?, updated_at = ?
		WHERE id = ?
	`, note.FireRating, note.DailyGoal, formatTime(note.UpdatedAt), note.ID)
	if err != nil {
		return wrapDBErrorf(err, "update note %d", note.ID)
	}
	return notFoundIfNoRows(res, fmt.Sprintf("update note %d", note.ID))
}

// ListNotes returns notes ordered by date descending, with labels but
// without entries.
func (qs queries) ListNotes(ctx context.Context, filter types.NoteFilter) ([]*types.DailyNote, error) {
	var where []string
	var args []any
	if filter.From != "" {
		where = append(where, "date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		where = append(where, "date <= ?")
		args = append(args, filter.To)
	}
	query := `SELECT ` + noteColumns + ` FROM daily_notes`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := qs.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("list notes", err)
	}
	defer func() { _ = rows.Close() }()

	var notes []*types.DailyNote
	var ids []int64
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, wrapDBError("scan note", err)
		}
		notes = append(notes, n)
		ids = append(ids, n.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("list notes", err)
	}
	_ = rows.Close()

	byNote, err := qs.noteLabelsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, n := range notes {
		n.Labels = byNote[n.ID]
		n.LabelIDs = labelIDs(n.Labels)
	}
	return notes, nil
}

// AddNoteLabel attaches a label to a note. Attaching twice is a no-op.
func (qs queries) AddNoteLabel(ctx context.Context, noteID, labelID int64) error {
	_, err := qs.q.ExecContext(ctx, `INSERT OR IGNORE INTO note_labels (note_id, label_id) VALUES (?, ?)`, noteID, labelID)
	if err != nil {
		if IsForeignKeyConstraintError(err) {
			return fmt.Errorf("add label %d to note %d: %w", labelID, noteID, ErrNotFound)
		}
		return wrapDBErrorf(err, "add label %d to note %d", labelID, noteID)
	}
	return nil
}

// RemoveNoteLabel detaches a label from a note.
func (qs queries) RemoveNoteLabel(ctx context.Context, noteID, labelID int64) error {
	_, err := qs.q.ExecContext(ctx, `DELETE FROM note_labels WHERE note_id = ? AND label_id = ?`, noteID, labelID)
	return wrapDBErrorf(err, "remove label %d from note %d", labelID, noteID)
}

// ClearNoteLabels detaches every label from a note.
func (qs queries) ClearNoteLabels(ctx context.Context, noteID int64) error {
	_, err := qs.q.ExecContext(ctx, `DELETE FROM note_labels WHERE note_id = ?`, noteID)
	return wrapDBErrorf(err, "clear labels of note %d", noteID)
}

// GetNoteLabels returns a note's labels ordered by name.
func (qs queries) GetNoteLabels(ctx context.Context, noteID int64) ([]*types.Label, error) {
	byNote, err := qs.noteLabelsFor(ctx, []int64{noteID})
	if err != nil {
		return nil, err
	}
	return byNote[noteID], nil
}

func (qs queries) noteLabelsFor(ctx context.Context, noteIDs []int64) (map[int64][]*types.Label, error) {
	return qs.labelsFor(ctx, "note_labels", "note_id", noteIDs)
}

// labelsFor batch-loads labels through a join table keyed by ownerCol.
func (qs queries) labelsFor(ctx context.Context, table, ownerCol string, ids []int64) (map[int64][]*types.Label, error) {
	result := make(map[int64][]*types.Label)
	if len(ids) == 0 {
		return result, nil
	}
	// #nosec G201 - table and column names are internal constants
	query := fmt.Sprintf(`
		SELECT j.%s, l.id, l.name, l.color, l.created_at
		FROM %s j JOIN labels l ON l.id = j.label_id
		WHERE j.%s IN (%s)
		ORDER BY l.name
	`, ownerCol, table, ownerCol, placeholders(len(ids)))
	rows, err := qs.q.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, wrapDBErrorf(err, "load %s", table)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var owner int64
		var l types.Label
		var createdAt string
		if err := rows.Scan(&owner, &l.ID, &l.Name, &l.Color, &createdAt); err != nil {
			return nil, wrapDBErrorf(err, "scan %s", table)
		}
		l.CreatedAt = parseTimeString(createdAt)
		result[owner] = append(result[owner], &l)
	}
	return result, wrapDBErrorf(rows.Err(), "load %s", table)
}

func labelIDs(labels []*types.Label) []int64 {
	if len(labels) == 0 {
		return nil
	}
	ids := make([]int64, len(labels))
	for i, l := range labels {
		ids[i] = l.ID
	}
	return ids
}

// noteExists reports whether a note row exists.
func (qs queries) noteExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := qs.q.QueryRowContext(ctx, `SELECT 1 FROM daily_notes WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, wrapDBErrorf(err, "check note %d", id)
	}
	return true, nil
}
