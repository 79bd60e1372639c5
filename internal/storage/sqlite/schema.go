package sqlite

// schemaVersion is recorded in metadata so future migrations can detect old files.
const schemaVersion = "1"

// Timestamps are TEXT, not DATETIME: the ncruces driver only converts
// DATETIME-declared columns to time.Time, and fixed-width UTC strings keep
// lexical order equal to chronological order.
//
// Foreign keys carry no ON DELETE actions. Dependent rows are removed by the
// explicit routines in delete.go.
const schema = `
CREATE TABLE IF NOT EXISTS daily_notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL UNIQUE,
    fire_rating INTEGER NOT NULL DEFAULT 0 CHECK(fire_rating >= 0 AND fire_rating <= 5),
    daily_goal TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS note_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    daily_note_id INTEGER NOT NULL REFERENCES daily_notes(id),
    title TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    content_type TEXT NOT NULL DEFAULT 'rich_text',
    order_index INTEGER NOT NULL DEFAULT 0,
    include_in_report INTEGER NOT NULL DEFAULT 0,
    is_important INTEGER NOT NULL DEFAULT 0,
    is_completed INTEGER NOT NULL DEFAULT 0,
    is_dev_null INTEGER NOT NULL DEFAULT 0,
    is_pinned INTEGER NOT NULL DEFAULT 0,
    source_entry_id INTEGER REFERENCES note_entries(id),
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_note_entries_note ON note_entries(daily_note_id);
CREATE INDEX IF NOT EXISTS idx_note_entries_pinned ON note_entries(is_pinned);
CREATE INDEX IF NOT EXISTS idx_note_entries_source ON note_entries(source_entry_id);
-- At most one propagated copy of a given source per day.
CREATE UNIQUE INDEX IF NOT EXISTS idx_note_entries_note_source
    ON note_entries(daily_note_id, source_entry_id) WHERE source_entry_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS labels (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    color TEXT NOT NULL DEFAULT '#3b82f6',
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS note_labels (
    note_id INTEGER NOT NULL REFERENCES daily_notes(id),
    label_id INTEGER NOT NULL REFERENCES labels(id),
    PRIMARY KEY (note_id, label_id)
);

CREATE INDEX IF NOT EXISTS idx_note_labels_label ON note_labels(label_id);

CREATE TABLE IF NOT EXISTS entry_labels (
    entry_id INTEGER NOT NULL REFERENCES note_entries(id),
    label_id INTEGER NOT NULL REFERENCES labels(id),
    PRIMARY KEY (entry_id, label_id)
);

CREATE INDEX IF NOT EXISTS idx_entry_labels_label ON entry_labels(label_id);

CREATE TABLE IF NOT EXISTS lists (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    color TEXT NOT NULL DEFAULT '#3b82f6',
    order_index INTEGER NOT NULL DEFAULT 0,
    is_archived INTEGER NOT NULL DEFAULT 0,
    is_kanban INTEGER NOT NULL DEFAULT 0,
    kanban_order INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lists_kanban ON lists(is_kanban, kanban_order);

CREATE TABLE IF NOT EXISTS list_entries (
    list_id INTEGER NOT NULL REFERENCES lists(id),
    entry_id INTEGER NOT NULL REFERENCES note_entries(id),
    order_index INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    PRIMARY KEY (list_id, entry_id)
);

CREATE INDEX IF NOT EXISTS idx_list_entries_entry ON list_entries(entry_id);

CREATE TABLE IF NOT EXISTS sprint_goals (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    text TEXT NOT NULL DEFAULT '',
    start_date TEXT NOT NULL,
    end_date TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS quarterly_goals (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    text TEXT NOT NULL DEFAULT '',
    start_date TEXT NOT NULL,
    end_date TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS search_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    query TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_search_history_query ON search_history(query, created_at);

CREATE TABLE IF NOT EXISTS app_settings (
    id INTEGER PRIMARY KEY CHECK(id = 1),
    sprint_goals TEXT NOT NULL DEFAULT '',
    quarterly_goals TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
