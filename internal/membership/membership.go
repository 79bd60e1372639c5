// Package membership mediates every entry-to-list association write so that
// an entry sits in at most one Kanban column while regular lists allow any
// number of memberships.
package membership

import (
	"context"
	"fmt"

	"github.com/dailyworkspace/daybook/internal/debug"
	"github.com/dailyworkspace/daybook/internal/storage"
	"github.com/dailyworkspace/daybook/internal/types"
)

// Enforcer applies membership writes. Each call runs in one transaction.
type Enforcer struct {
	store   storage.Storage
	columns []string
}

// New returns an Enforcer. An empty columns slice selects the canonical
// types.DefaultKanbanColumns; other names come from the kanban.columns setting.
func New(s storage.Storage, columns []string) *Enforcer {
	if len(columns) == 0 {
		columns = types.DefaultKanbanColumns
	}
	return &Enforcer{store: s, columns: append([]string(nil), columns...)}
}

// AddResult describes the effect of AddEntryToList.
type AddResult struct {
	Added       bool    `json:"added"`
	RemovedFrom []int64 `json:"removed_from,omitempty"`
}

// AddEntryToList adds an entry to a list. Adding to a Kanban column first
// removes the entry from every other Kanban column. Adding an existing
// member is a no-op.
func (e *Enforcer) AddEntryToList(ctx context.Context, listID, entryID int64, orderIndex int) (*AddResult, error) {
	res := &AddResult{}
	err := e.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		list, err := tx.GetList(ctx, listID)
		if err != nil {
			return err
		}
		if _, err := tx.GetEntry(ctx, entryID); err != nil {
			return err
		}

		removed, err := types.MatchKindErr(list.Kind,
			func() ([]int64, error) { return nil, nil },
			func(int) ([]int64, error) { return evictFromOtherColumns(ctx, tx, entryID, listID) },
		)
		if err != nil {
			return err
		}
		res.RemovedFrom = removed

		res.Added, err = tx.AddListEntry(ctx, listID, entryID, orderIndex)
		return err
	})
	if err != nil {
		return nil, err
	}
	debug.Logf("membership: entry %d -> list %d (added=%v, evicted=%v)\n", entryID, listID, res.Added, res.RemovedFrom)
	return res, nil
}

// evictFromOtherColumns removes entryID from every Kanban column except keep.
// More than one match means an earlier inconsistency; all are corrected.
func evictFromOtherColumns(ctx context.Context, tx storage.Transaction, entryID, keep int64) ([]int64, error) {
	lists, err := tx.GetEntryLists(ctx, entryID)
	if err != nil {
		return nil, err
	}
	var removed []int64
	for _, l := range lists {
		if l.ID == keep || !l.IsKanban() {
			continue
		}
		if err := tx.RemoveListEntry(ctx, l.ID, entryID); err != nil {
			return nil, err
		}
		removed = append(removed, l.ID)
	}
	return removed, nil
}

// RemoveEntryFromList removes an association. It fails with
// storage.ErrNotMember when the entry is not in the list.
func (e *Enforcer) RemoveEntryFromList(ctx context.Context, listID, entryID int64) error {
	return e.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		if _, err := tx.GetList(ctx, listID); err != nil {
			return err
		}
		if _, err := tx.GetEntry(ctx, entryID); err != nil {
			return err
		}
		return tx.RemoveListEntry(ctx, listID, entryID)
	})
}

// UpdateList writes a list. When a list becomes a Kanban column, its entries
// leave every other column so exclusivity still holds.
func (e *Enforcer) UpdateList(ctx context.Context, list *types.List) error {
	return e.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		prev, err := tx.GetList(ctx, list.ID)
		if err != nil {
			return err
		}
		if err := tx.UpdateList(ctx, list); err != nil {
			return err
		}
		if prev.IsKanban() || !list.IsKanban() {
			return nil
		}
		entries, err := tx.GetListEntries(ctx, list.ID)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if _, err := evictFromOtherColumns(ctx, tx, entry.ID, list.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// InitializeKanban creates the canonical columns at kanban_order 0..n-1.
// It fails with storage.ErrKanbanInitialized if any column exists.
func (e *Enforcer) InitializeKanban(ctx context.Context) ([]*types.List, error) {
	var created []*types.List
	err := e.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		kanban := true
		existing, err := tx.ListLists(ctx, types.ListFilter{Kanban: &kanban, IncludeArchived: true})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("initialize kanban: %w", storage.ErrKanbanInitialized)
		}
		for i, name := range e.columns {
			l := &types.List{Name: name, Kind: types.KanbanKind{Order: i}}
			if err := tx.CreateList(ctx, l); err != nil {
				return err
			}
			created = append(created, l)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	debug.LogEvent("KANBAN", "init", fmt.Sprintf("%d columns", len(created)))
	return created, nil
}

// ReorderLists assigns order_index to each list.
func (e *Enforcer) ReorderLists(ctx context.Context, updates []types.OrderUpdate) error {
	return e.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		for _, u := range updates {
			l, err := tx.GetList(ctx, u.ID)
			if err != nil {
				return err
			}
			l.OrderIndex = u.OrderIndex
			if err := tx.UpdateList(ctx, l); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReorderKanban assigns board positions. Every target must be a Kanban
// column, otherwise nothing changes and storage.ErrNotKanban is returned.
func (e *Enforcer) ReorderKanban(ctx context.Context, updates []types.OrderUpdate) error {
	return e.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		for _, u := range updates {
			l, err := tx.GetList(ctx, u.ID)
			if err != nil {
				return err
			}
			order := u.OrderIndex
			next, err := types.MatchKindErr(l.Kind,
				func() (types.ListKind, error) {
					return nil, fmt.Errorf("reorder list %d: %w", l.ID, storage.ErrNotKanban)
				},
				func(int) (types.ListKind, error) { return types.KanbanKind{Order: order}, nil },
			)
			if err != nil {
				return err
			}
			l.Kind = next
			if err := tx.UpdateList(ctx, l); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReorderListEntries assigns positions to entries within one list.
func (e *Enforcer) ReorderListEntries(ctx context.Context, listID int64, updates []types.OrderUpdate) error {
	return e.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		if _, err := tx.GetList(ctx, listID); err != nil {
			return err
		}
		for _, u := range updates {
			if err := tx.SetListEntryOrder(ctx, listID, u.ID, u.OrderIndex); err != nil {
				return err
			}
		}
		return nil
	})
}

// Column is a Kanban column with its entries in list order.
type Column struct {
	List    *types.List        `json:"list"`
	Entries []*types.NoteEntry `json:"entries"`
}

// Board returns every non-archived Kanban column in board order.
func (e *Enforcer) Board(ctx context.Context) ([]*Column, error) {
	var board []*Column
	err := e.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		kanban := true
		lists, err := tx.ListLists(ctx, types.ListFilter{Kanban: &kanban})
		if err != nil {
			return err
		}
		for _, l := range lists {
			entries, err := tx.GetListEntries(ctx, l.ID)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []*types.NoteEntry{}
			}
			board = append(board, &Column{List: l, Entries: entries})
		}
		return nil
	})
	return board, err
}
