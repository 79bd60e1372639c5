// Package report builds weekly reports from entries flagged include_in_report.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dailyworkspace/daybook/internal/storage"
	"github.com/dailyworkspace/daybook/internal/types"
)

// DefaultWeekStart is the day a reporting week begins on.
const DefaultWeekStart = time.Wednesday

// ParseWeekday parses a weekday name such as "wednesday" or "Wed".
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) >= 3 && strings.HasPrefix(name, s)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// WeekBounds returns the first day of the week containing date and the first
// day of the following week.
func WeekBounds(date time.Time, start time.Weekday) (time.Time, time.Time) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) - int(start) + 7) % 7
	from := day.AddDate(0, 0, -offset)
	return from, from.AddDate(0, 0, 7)
}

// LabelRef is the label summary carried on a report line.
type LabelRef struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Entry is one report line.
type Entry struct {
	Date        string     `json:"date"`
	EntryID     int64      `json:"entry_id"`
	Title       string     `json:"title,omitempty"`
	Content     string     `json:"content"`
	ContentType string     `json:"content_type"`
	Labels      []LabelRef `json:"labels"`
	CreatedAt   time.Time  `json:"created_at"`
	IsCompleted bool       `json:"is_completed"`
	IsImportant bool       `json:"is_important"`
}

// Report is a generated report. WeekStart and WeekEnd are empty for the
// all-entries report. WeekEnd is the last day included.
type Report struct {
	WeekStart   string    `json:"week_start,omitempty"`
	WeekEnd     string    `json:"week_end,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Entries     []Entry   `json:"entries"`
}

// Week identifies a reporting week that has at least one flagged entry.
type Week struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

// Generator produces reports from a store.
type Generator struct {
	store     storage.Store
	weekStart time.Weekday
	now       func() time.Time
}

// New returns a Generator whose weeks begin on weekStart.
func New(s storage.Store, weekStart time.Weekday) *Generator {
	return &Generator{store: s, weekStart: weekStart, now: time.Now}
}

// Week builds the report for the week containing date. An empty date means today.
func (g *Generator) Week(ctx context.Context, date string) (*Report, error) {
	day := g.now().UTC()
	if date != "" {
		var err error
		if day, err = types.ParseDate(date); err != nil {
			return nil, fmt.Errorf("weekly report: %w: %v", storage.ErrValidation, err)
		}
	}
	from, to := WeekBounds(day, g.weekStart)
	entries, err := g.store.ListEntries(ctx, types.EntryFilter{
		From:       types.FormatDate(from),
		To:         types.FormatDate(to),
		ReportOnly: true,
	})
	if err != nil {
		return nil, err
	}
	return &Report{
		WeekStart:   types.FormatDate(from),
		WeekEnd:     types.FormatDate(to.AddDate(0, 0, -1)),
		GeneratedAt: g.now().UTC(),
		Entries:     lines(entries),
	}, nil
}

// All builds a report of every entry regardless of flags.
func (g *Generator) All(ctx context.Context) (*Report, error) {
	entries, err := g.store.ListEntries(ctx, types.EntryFilter{})
	if err != nil {
		return nil, err
	}
	return &Report{GeneratedAt: g.now().UTC(), Entries: lines(entries)}, nil
}

// AvailableWeeks lists weeks containing flagged entries, newest first.
func (g *Generator) AvailableWeeks(ctx context.Context) ([]Week, error) {
	entries, err := g.store.ListEntries(ctx, types.EntryFilter{ReportOnly: true})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	weeks := []Week{}
	for _, e := range entries {
		day, err := types.ParseDate(e.NoteDate)
		if err != nil {
			continue
		}
		from, to := WeekBounds(day, g.weekStart)
		start := types.FormatDate(from)
		if seen[start] {
			continue
		}
		seen[start] = true
		end := types.FormatDate(to.AddDate(0, 0, -1))
		weeks = append(weeks, Week{Start: start, End: end, Label: start + " to " + end})
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Start > weeks[j].Start })
	return weeks, nil
}

func lines(entries []*types.NoteEntry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		labels := make([]LabelRef, 0, len(e.Labels))
		for _, l := range e.Labels {
			labels = append(labels, LabelRef{Name: l.Name, Color: l.Color})
		}
		out = append(out, Entry{
			Date:        e.NoteDate,
			EntryID:     e.ID,
			Title:       e.Title,
			Content:     e.Content,
			ContentType: e.ContentType,
			Labels:      labels,
			CreatedAt:   e.CreatedAt,
			IsCompleted: e.IsCompleted,
			IsImportant: e.IsImportant,
		})
	}
	return out
}
