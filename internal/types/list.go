package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ListKind is the capability set of a List. It is sealed: the only
// implementations are RegularKind and KanbanKind.
type ListKind interface {
	isListKind()
	String() string
}

// RegularKind lists hold any number of entries, and an entry may belong to
// any number of regular lists.
type RegularKind struct{}

// KanbanKind lists are workflow columns. An entry belongs to at most one
// Kanban column at a time. Order positions the column on the board.
type KanbanKind struct {
	Order int
}

func (RegularKind) isListKind() {}
func (KanbanKind) isListKind()  {}

func (RegularKind) String() string  { return "regular" }
func (k KanbanKind) String() string { return fmt.Sprintf("kanban(%d)", k.Order) }

// DefaultKanbanColumns are the canonical Kanban columns in board order.
var DefaultKanbanColumns = []string{"To Do", "In Progress", "Done"}

// MatchKind dispatches on a ListKind. Both arms are required, so every caller
// handles both capability sets.
func MatchKind[T any](k ListKind, regular func() T, kanban func(order int) T) T {
	switch v := k.(type) {
	case KanbanKind:
		return kanban(v.Order)
	case *KanbanKind:
		return kanban(v.Order)
	default:
		return regular()
	}
}

// MatchKindErr is MatchKind for arms that can fail.
func MatchKindErr[T any](k ListKind, regular func() (T, error), kanban func(order int) (T, error)) (T, error) {
	switch v := k.(type) {
	case KanbanKind:
		return kanban(v.Order)
	case *KanbanKind:
		return kanban(v.Order)
	default:
		return regular()
	}
}

// IsKanban reports whether k is a Kanban column kind.
func IsKanban(k ListKind) bool {
	return MatchKind(k, func() bool { return false }, func(int) bool { return true })
}

// List is a named collection of entries: either a regular list or a Kanban column.
type List struct {
	ID          int64
	Name        string
	Description string
	Color       string
	OrderIndex  int
	IsArchived  bool
	Kind        ListKind
	CreatedAt   time.Time
	UpdatedAt   time.Time
	EntryCount  int // Populated by listing queries
}

// IsKanban reports whether the list is a Kanban column.
func (l *List) IsKanban() bool {
	return IsKanban(l.kind())
}

// KanbanOrder returns the column position, or 0 for regular lists.
func (l *List) KanbanOrder() int {
	return MatchKind(l.kind(), func() int { return 0 }, func(order int) int { return order })
}

func (l *List) kind() ListKind {
	if l.Kind == nil {
		return RegularKind{}
	}
	return l.Kind
}

// Validate checks a list before it is written.
func (l *List) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("list name is required")
	}
	return nil
}

// listJSON is the flat wire shape of a List.
type listJSON struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	OrderIndex  int       `json:"order_index"`
	IsArchived  bool      `json:"is_archived"`
	IsKanban    bool      `json:"is_kanban"`
	KanbanOrder int       `json:"kanban_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	EntryCount  int       `json:"entry_count"`
}

// MarshalJSON flattens Kind into is_kanban/kanban_order.
func (l List) MarshalJSON() ([]byte, error) {
	return json.Marshal(listJSON{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Color:       l.Color,
		OrderIndex:  l.OrderIndex,
		IsArchived:  l.IsArchived,
		IsKanban:    l.IsKanban(),
		KanbanOrder: l.KanbanOrder(),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
		EntryCount:  l.EntryCount,
	})
}

// UnmarshalJSON rebuilds Kind from is_kanban/kanban_order.
func (l *List) UnmarshalJSON(data []byte) error {
	var raw listJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = List{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Color:       raw.Color,
		OrderIndex:  raw.OrderIndex,
		IsArchived:  raw.IsArchived,
		Kind:        KindFromFlags(raw.IsKanban, raw.KanbanOrder),
		CreatedAt:   raw.CreatedAt,
		UpdatedAt:   raw.UpdatedAt,
		EntryCount:  raw.EntryCount,
	}
	return nil
}

// KindFromFlags converts the persisted discriminant into a ListKind.
func KindFromFlags(isKanban bool, kanbanOrder int) ListKind {
	if isKanban {
		return KanbanKind{Order: kanbanOrder}
	}
	return RegularKind{}
}

// ListFilter narrows list queries.
type ListFilter struct {
	Kanban          *bool // nil = both kinds
	IncludeArchived bool
}

// OrderUpdate assigns a new position to a list or list entry.
type OrderUpdate struct {
	ID         int64 `json:"id"`
	OrderIndex int   `json:"order_index"`
}
