// Package propagate forward-fills pinned entries onto a requested date.
//
// Every entry belongs to a chain: a root entry written by the user plus the
// copies made from it, each copy pointing at the root via source_entry_id.
// When date D is resolved, the newest entry of each chain dated before D is
// the chain head; if the head is still pinned and the chain has no entry on
// D yet, the head is copied onto D. Unpinning any copy stops the chain from
// moving further forward.
package propagate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/dailyworkspace/daybook/internal/debug"
	"github.com/dailyworkspace/daybook/internal/storage"
	"github.com/dailyworkspace/daybook/internal/telemetry"
	"github.com/dailyworkspace/daybook/internal/types"
)

// Options controls propagation.
type Options struct {
	Enabled bool
	// LookbackDays ignores chain heads older than this many days before the
	// target date. Zero means unlimited.
	LookbackDays int
}

// DefaultOptions enables propagation with no lookback limit.
func DefaultOptions() Options {
	return Options{Enabled: true}
}

// Propagator resolves dates to notes, forward-filling pinned entries first.
// Concurrent resolutions of the same date are collapsed into one.
type Propagator struct {
	store storage.Storage
	group singleflight.Group

	mu   sync.RWMutex
	opts Options

	copies metric.Int64Counter
}

// New returns a Propagator over s.
func New(s storage.Storage, opts Options) *Propagator {
	copies, _ := telemetry.Meter("github.com/dailyworkspace/daybook/propagate").Int64Counter(
		"daybook.propagation.copies",
		metric.WithDescription("Pinned entries copied forward"),
	)
	return &Propagator{store: s, opts: opts, copies: copies}
}

// SetOptions swaps the options, e.g. after a config reload.
func (p *Propagator) SetOptions(opts Options) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opts = opts
}

// Options returns the current options.
func (p *Propagator) Options() Options {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.opts
}

// GetNote returns the note for date with its entries.
//
// With propagation enabled the note is created if missing and pinned
// entries are copied onto it. Propagation is best-effort: a failure is
// logged and the note is still returned. With propagation disabled a
// missing date yields storage.ErrNotFound.
func (p *Propagator) GetNote(ctx context.Context, date string) (*types.DailyNote, error) {
	if err := types.ValidateDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrValidation, err)
	}
	if !p.Options().Enabled {
		return p.store.GetNoteByDate(ctx, date)
	}

	v, err, _ := p.group.Do(date, func() (interface{}, error) {
		if _, err := p.Propagate(ctx, date); err != nil {
			debug.Warnf("propagation onto %s failed: %v", date, err)
		}
		note, _, err := p.store.EnsureNote(ctx, date)
		return note, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.DailyNote), nil
}

// Propagate ensures date has a note and copies every eligible chain head
// onto it, all in one transaction. It returns the number of copies made.
// Calling it again for the same date makes no further copies.
func (p *Propagator) Propagate(ctx context.Context, date string) (int, error) {
	if err := types.ValidateDate(date); err != nil {
		return 0, fmt.Errorf("%w: %v", storage.ErrValidation, err)
	}
	opts := p.Options()

	var made int
	err := p.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		made = 0
		note, _, err := tx.EnsureNote(ctx, date)
		if err != nil {
			return err
		}
		heads, err := tx.ListPinnedChainHeads(ctx, date)
		if err != nil {
			return err
		}
		heads = withinLookback(heads, date, opts.LookbackDays)
		if len(heads) == 0 {
			return nil
		}

		present := newPresence(note.Entries)
		for _, head := range heads {
			if present.covers(head) {
				continue
			}
			if err := copyOnto(ctx, tx, head, note.ID); err != nil {
				return fmt.Errorf("copy entry %d onto %s: %w", head.ID, date, err)
			}
			made++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if made > 0 {
		p.copies.Add(ctx, int64(made), metric.WithAttributes(attribute.String("daybook.date", date)))
		debug.Logf("propagated %d pinned entries onto %s\n", made, date)
		debug.LogEvent("PROPAGATE", date, fmt.Sprintf("copies=%d", made))
	}
	return made, nil
}

// copyOnto clones head onto noteID as a copy of head's chain root.
func copyOnto(ctx context.Context, tx storage.Transaction, head *types.NoteEntry, noteID int64) error {
	root := head.RootID()
	c := &types.NoteEntry{
		DailyNoteID:   noteID,
		Title:         head.Title,
		Content:       head.Content,
		ContentType:   head.ContentType,
		OrderIndex:    head.OrderIndex,
		IsImportant:   head.IsImportant,
		IsPinned:      true,
		SourceEntryID: &root,
	}
	if err := tx.CreateEntry(ctx, c); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			// Another writer copied this chain first.
			return nil
		}
		return err
	}
	for _, labelID := range head.LabelIDs {
		if err := tx.AddEntryLabel(ctx, c.ID, labelID); err != nil {
			return err
		}
	}
	return nil
}

func withinLookback(heads []*types.NoteEntry, date string, days int) []*types.NoteEntry {
	if days <= 0 {
		return heads
	}
	target, err := types.ParseDate(date)
	if err != nil {
		return heads
	}
	cutoff := types.FormatDate(target.Add(-time.Duration(days) * 24 * time.Hour))
	out := heads[:0:0]
	for _, h := range heads {
		if h.NoteDate >= cutoff {
			out = append(out, h)
		}
	}
	return out
}

// presence records which chains already have an entry on the target date.
type presence map[int64]bool

func newPresence(entries []*types.NoteEntry) presence {
	p := make(presence, len(entries))
	for _, e := range entries {
		p[e.RootID()] = true
	}
	return p
}

func (p presence) covers(head *types.NoteEntry) bool {
	return p[head.RootID()]
}
