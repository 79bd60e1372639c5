// Package backup defines the versioned backup document exchanged by export
// and import, and parses it from untrusted input.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dailyworkspace/daybook/internal/storage"
	"github.com/dailyworkspace/daybook/internal/types"
)

// Version is written into every exported document.
const Version = "3.0"

// DefaultMaxBytes bounds the size of a document accepted by Parse.
const DefaultMaxBytes int64 = 64 << 20

// Document is a full snapshot of the journal.
//
// Labels are referenced by their id within the document; the ids are only
// meaningful inside one document and are remapped on import.
type Document struct {
	Version       string              `json:"version"`
	ExportedAt    string              `json:"exported_at"`
	SearchHistory []SearchHistoryItem `json:"search_history"`
	Labels        []Label             `json:"labels"`
	Tags          []Label             `json:"tags,omitempty"` // pre-2.0 name for labels
	Notes         []Note              `json:"notes"`
}

type SearchHistoryItem struct {
	Query     string `json:"query"`
	CreatedAt string `json:"created_at"`
}

type Label struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type Note struct {
	Date       string  `json:"date"`
	FireRating int     `json:"fire_rating"`
	DailyGoal  string  `json:"daily_goal"`
	CreatedAt  string  `json:"created_at,omitempty"`
	UpdatedAt  string  `json:"updated_at,omitempty"`
	Labels     []int64 `json:"labels"`
	Tags       []int64 `json:"tags,omitempty"`
	Entries    []Entry `json:"entries"`
}

// Entry is one exported NoteEntry. ID and SourceEntryID carry propagation
// provenance; documents written before they existed simply omit them.
type Entry struct {
	ID              *int64  `json:"id,omitempty"`
	SourceEntryID   *int64  `json:"source_entry_id,omitempty"`
	Title           string  `json:"title,omitempty"`
	Content         string  `json:"content"`
	ContentType     string  `json:"content_type"`
	OrderIndex      int     `json:"order_index"`
	IncludeInReport bool    `json:"include_in_report"`
	IsImportant     bool    `json:"is_important"`
	IsCompleted     bool    `json:"is_completed"`
	IsDevNull       bool    `json:"is_dev_null"`
	IsPinned        bool    `json:"is_pinned"`
	CreatedAt       string  `json:"created_at,omitempty"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
	Labels          []int64 `json:"labels"`
}

// AllLabels returns the document's labels, falling back to the legacy
// "tags" key when "labels" is absent.
func (d *Document) AllLabels() []Label {
	if d.Labels != nil {
		return d.Labels
	}
	return d.Tags
}

// LabelIDs returns the note's label references, falling back to "tags".
func (n *Note) LabelIDs() []int64 {
	if n.Labels != nil {
		return n.Labels
	}
	return n.Tags
}

// SortedNotes returns the notes ordered by date. Import walks notes in this
// order so a copy's source is always seen before the copy.
func (d *Document) SortedNotes() []Note {
	notes := make([]Note, len(d.Notes))
	copy(notes, d.Notes)
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Date < notes[j].Date })
	return notes
}

// Validate checks everything that can be checked without the store.
func (d *Document) Validate() error {
	for i := range d.Notes {
		n := &d.Notes[i]
		scalar := types.DailyNote{Date: n.Date, FireRating: n.FireRating}
		if err := scalar.Validate(); err != nil {
			return fmt.Errorf("notes[%d]: %w", i, err)
		}
		for j := range n.Entries {
			ct := n.Entries[j].ContentType
			if ct == "" {
				continue
			}
			if err := types.ValidateContentType(ct); err != nil {
				return fmt.Errorf("notes[%d].entries[%d]: %w", i, j, err)
			}
		}
	}
	for i, l := range d.AllLabels() {
		label := types.Label{Name: l.Name}
		if err := label.Validate(); err != nil {
			return fmt.Errorf("labels[%d]: %w", i, err)
		}
	}
	for i, h := range d.SearchHistory {
		if _, err := ParseTime(h.CreatedAt); err != nil {
			return fmt.Errorf("search_history[%d]: %w", i, err)
		}
	}
	return nil
}

// Parse reads and validates a document. Every failure wraps
// storage.ErrValidation, and nothing is read past maxBytes
// (DefaultMaxBytes when maxBytes <= 0).
func Parse(r io.Reader, maxBytes int64) (*Document, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: backup exceeds %d bytes", storage.ErrValidation, maxBytes)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON file: %v", storage.ErrValidation, err)
	}
	if _, ok := keys["version"]; !ok {
		return nil, fmt.Errorf("%w: invalid backup file format: missing version", storage.ErrValidation)
	}
	if _, ok := keys["notes"]; !ok {
		return nil, fmt.Errorf("%w: invalid backup file format: missing notes", storage.ErrValidation)
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: invalid backup file format: %v", storage.ErrValidation, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrValidation, err)
	}
	return &doc, nil
}

// Filename returns the conventional download name for a backup taken at t.
func Filename(t time.Time) string {
	return "daily-workspace-backup-" + t.UTC().Format("20060102-150405") + ".json"
}

// FormatTime renders t for the document.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTime accepts RFC 3339 and naive ISO-8601 timestamps. Naive
// timestamps are taken as UTC, which is how older backups were written.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// Time parses an optional document timestamp. Blank or malformed values
// yield the zero time so the store assigns its own.
func Time(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := ParseTime(s)
	if err != nil {
		return time.Time{}
	}
	return t
}
