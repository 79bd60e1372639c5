// Package types defines core data structures for the daybook journal.
package types

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar date format used as the DailyNote key.
const DateLayout = "2006-01-02"

// Content types accepted for an entry.
const (
	ContentTypeRichText = "rich_text"
	ContentTypeCode     = "code"
	ContentTypeMarkdown = "markdown"
)

// DefaultLabelColor is applied when a label or list is created without a color.
const DefaultLabelColor = "#3b82f6"

// DailyNote is the per-date container. Exactly one exists per calendar date.
type DailyNote struct {
	ID         int64        `json:"id"`
	Date       string       `json:"date"`
	FireRating int          `json:"fire_rating"` // 0-5
	DailyGoal  string       `json:"daily_goal"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	LabelIDs   []int64      `json:"label_ids,omitempty"`
	Labels     []*Label     `json:"labels,omitempty"`  // Populated on read paths that join labels
	Entries    []*NoteEntry `json:"entries,omitempty"` // Populated by full-note reads
}

// Validate checks the scalar fields of a note.
func (n *DailyNote) Validate() error {
	if err := ValidateDate(n.Date); err != nil {
		return err
	}
	if n.FireRating < 0 || n.FireRating > 5 {
		return fmt.Errorf("fire_rating must be between 0 and 5 (got %d)", n.FireRating)
	}
	return nil
}

// NoteEntry is one piece of content within a DailyNote.
type NoteEntry struct {
	ID              int64     `json:"id"`
	DailyNoteID     int64     `json:"daily_note_id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	ContentType     string    `json:"content_type"`
	OrderIndex      int       `json:"order_index"`
	IncludeInReport bool      `json:"include_in_report"`
	IsImportant     bool      `json:"is_important"`
	IsCompleted     bool      `json:"is_completed"`
	IsDevNull       bool      `json:"is_dev_null"`
	IsPinned        bool      `json:"is_pinned"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// SourceEntryID links a propagated copy back to the root pinned entry it
	// was copied from. Nil for entries written by a user. Relation only: when
	// the root is deleted, its earliest copy becomes the new root.
	SourceEntryID *int64 `json:"source_entry_id,omitempty"`

	NoteDate string   `json:"note_date,omitempty"` // Populated by cross-note queries
	LabelIDs []int64  `json:"label_ids,omitempty"`
	Labels   []*Label `json:"labels,omitempty"`
}

// Validate checks an entry before it is written.
func (e *NoteEntry) Validate() error {
	if e.DailyNoteID == 0 {
		return fmt.Errorf("daily_note_id is required")
	}
	return ValidateContentType(e.ContentType)
}

// ValidateContentType reports whether ct is a known content type.
func ValidateContentType(ct string) error {
	switch ct {
	case ContentTypeRichText, ContentTypeCode, ContentTypeMarkdown:
		return nil
	default:
		return fmt.Errorf("invalid content_type: %q", ct)
	}
}

// RootID returns the id of the chain root: the source for a propagated copy,
// or the entry itself.
func (e *NoteEntry) RootID() int64 {
	if e.SourceEntryID != nil {
		return *e.SourceEntryID
	}
	return e.ID
}

// Label is a named, colored tag shared by notes and entries.
// Names are unique and compared case-sensitively.
type Label struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks a label before it is written.
func (l *Label) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("label name is required")
	}
	return nil
}

// SearchHistory is one logged free-text query.
type SearchHistory struct {
	ID        int64     `json:"-"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
}

// AppSettings is the singleton settings row (ID is always 1).
type AppSettings struct {
	ID             int64     `json:"id"`
	SprintGoals    string    `json:"sprint_goals"`
	QuarterlyGoals string    `json:"quarterly_goals"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AppSettingsID is the fixed primary key of the settings row.
const AppSettingsID = 1

// NoteFilter narrows note listings. Bounds are inclusive YYYY-MM-DD strings;
// empty means unbounded.
type NoteFilter struct {
	From  string
	To    string
	Limit int
}

// EntryFilter narrows cross-note entry queries. From is inclusive and To is
// exclusive; empty means unbounded.
type EntryFilter struct {
	From       string
	To         string
	ReportOnly bool
}

// ValidateDate reports whether s is a real calendar date in YYYY-MM-DD form.
func ValidateDate(s string) error {
	if _, err := ParseDate(s); err != nil {
		return err
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
