package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Deletion routines remove dependent rows explicitly before the parent.
// The schema declares no cascades, so these functions are the whole contract:
//
//	note  -> its entries -> entry_labels, list_entries
//	      -> note_labels
//	label -> note_labels, entry_labels
//	list  -> list_entries
//
// Deleting a chain root keeps the chain intact: the earliest surviving copy
// becomes the root and the other copies are re-pointed at it.

// DeleteEntry deletes one entry with its label and list associations.
func (qs queries) DeleteEntry(ctx context.Context, id int64) error {
	return qs.atomically(ctx, func(qs queries) error {
		return qs.deleteEntry(ctx, id)
	})
}

// DeleteNote deletes a note, all of its entries and their associations.
func (qs queries) DeleteNote(ctx context.Context, id int64) error {
	return qs.atomically(ctx, func(qs queries) error {
		exists, err := qs.noteExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("delete note %d: %w", id, ErrNotFound)
		}
		if _, err := qs.clearNoteEntries(ctx, id); err != nil {
			return err
		}
		if _, err := qs.q.ExecContext(ctx, `DELETE FROM note_labels WHERE note_id = ?`, id); err != nil {
			return wrapDBErrorf(err, "delete labels of note %d", id)
		}
		if _, err := qs.q.ExecContext(ctx, `DELETE FROM daily_notes WHERE id = ?`, id); err != nil {
			return wrapDBErrorf(err, "delete note %d", id)
		}
		return nil
	})
}

// ClearNoteEntries deletes every entry of a note, keeping the note itself
// and its labels. It returns the number of entries removed.
func (qs queries) ClearNoteEntries(ctx context.Context, noteID int64) (int, error) {
	var n int
	err := qs.atomically(ctx, func(qs queries) error {
		var err error
		n, err = qs.clearNoteEntries(ctx, noteID)
		return err
	})
	return n, err
}

func (qs queries) clearNoteEntries(ctx context.Context, noteID int64) (int, error) {
	ids, err := qs.entryIDsOfNote(ctx, noteID)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := qs.deleteEntry(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

func (qs queries) entryIDsOfNote(ctx context.Context, noteID int64) ([]int64, error) {
	rows, err := qs.q.QueryContext(ctx, `SELECT id FROM note_entries WHERE daily_note_id = ? ORDER BY id`, noteID)
	if err != nil {
		return nil, wrapDBErrorf(err, "entries of note %d", noteID)
	}
	defer func() { _ = rows.Close() }()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBErrorf(err, "entries of note %d", noteID)
		}
		ids = append(ids, id)
	}
	return ids, wrapDBErrorf(rows.Err(), "entries of note %d", noteID)
}

func (qs queries) deleteEntry(ctx context.Context, id int64) error {
	if err := qs.promoteCopies(ctx, id); err != nil {
		return err
	}
	if _, err := qs.q.ExecContext(ctx, `DELETE FROM entry_labels WHERE entry_id = ?`, id); err != nil {
		return wrapDBErrorf(err, "delete labels of entry %d", id)
	}
	if _, err := qs.q.ExecContext(ctx, `DELETE FROM list_entries WHERE entry_id = ?`, id); err != nil {
		return wrapDBErrorf(err, "delete list memberships of entry %d", id)
	}
	res, err := qs.q.ExecContext(ctx, `DELETE FROM note_entries WHERE id = ?`, id)
	if err != nil {
		return wrapDBErrorf(err, "delete entry %d", id)
	}
	return notFoundIfNoRows(res, fmt.Sprintf("delete entry %d", id))
}

// promoteCopies re-roots the chain of a root entry that is about to go.
func (qs queries) promoteCopies(ctx context.Context, rootID int64) error {
	var newRoot int64
	err := qs.q.QueryRowContext(ctx, `
		SELECT e.id FROM note_entries e JOIN daily_notes n ON n.id = e.daily_note_id
		WHERE e.source_entry_id = ?
		ORDER BY n.date, e.id
		LIMIT 1
	`, rootID).Scan(&newRoot)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return wrapDBErrorf(err, "find copies of entry %d", rootID)
	}
	if _, err := qs.q.ExecContext(ctx, `UPDATE note_entries SET source_entry_id = NULL WHERE id = ?`, newRoot); err != nil {
		return wrapDBErrorf(err, "promote entry %d", newRoot)
	}
	if _, err := qs.q.ExecContext(ctx, `
		UPDATE note_entries SET source_entry_id = ? WHERE source_entry_id = ?
	`, newRoot, rootID); err != nil {
		return wrapDBErrorf(err, "re-point copies of entry %d", rootID)
	}
	return nil
}

// DeleteLabel removes a label and detaches it everywhere. Notes and entries
// that carried it are kept.
func (qs queries) DeleteLabel(ctx context.Context, id int64) error {
	return qs.atomically(ctx, func(qs queries) error {
		if _, err := qs.q.ExecContext(ctx, `DELETE FROM note_labels WHERE label_id = ?`, id); err != nil {
			return wrapDBErrorf(err, "detach label %d from notes", id)
		}
		if _, err := qs.q.ExecContext(ctx, `DELETE FROM entry_labels WHERE label_id = ?`, id); err != nil {
			return wrapDBErrorf(err, "detach label %d from entries", id)
		}
		res, err := qs.q.ExecContext(ctx, `DELETE FROM labels WHERE id = ?`, id)
		if err != nil {
			return wrapDBErrorf(err, "delete label %d", id)
		}
		return notFoundIfNoRows(res, fmt.Sprintf("delete label %d", id))
	})
}

// DeleteList removes a list and its memberships. Entries are kept.
func (qs queries) DeleteList(ctx context.Context, id int64) error {
	return qs.atomically(ctx, func(qs queries) error {
		if _, err := qs.q.ExecContext(ctx, `DELETE FROM list_entries WHERE list_id = ?`, id); err != nil {
			return wrapDBErrorf(err, "delete memberships of list %d", id)
		}
		res, err := qs.q.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
		if err != nil {
			return wrapDBErrorf(err, "delete list %d", id)
		}
		return notFoundIfNoRows(res, fmt.Sprintf("delete list %d", id))
	})
}
