package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidateDate(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"2025-11-02", true},
		{"2024-02-29", true},
		{"2025-02-29", false},
		{"2025-13-01", false},
		{"2025-1-2", false},
		{"", false},
		{"2025-11-02T00:00:00Z", false},
	}
	for _, tt := range tests {
		err := ValidateDate(tt.in)
		if (err == nil) != tt.valid {
			t.Errorf("ValidateDate(%q) error = %v, want valid=%v", tt.in, err, tt.valid)
		}
	}
}

func TestDailyNoteValidate(t *testing.T) {
	n := &DailyNote{Date: "2025-11-02", FireRating: 5}
	if err := n.Validate(); err != nil {
		t.Fatalf("expected valid note, got %v", err)
	}
	n.FireRating = 6
	if err := n.Validate(); err == nil {
		t.Fatalf("expected fire_rating 6 to be rejected")
	}
}

func TestEntryRootID(t *testing.T) {
	root := &NoteEntry{ID: 7}
	if root.RootID() != 7 {
		t.Errorf("root entry RootID = %d, want 7", root.RootID())
	}
	src := int64(7)
	cp := &NoteEntry{ID: 9, SourceEntryID: &src}
	if cp.RootID() != 7 {
		t.Errorf("copy RootID = %d, want 7", cp.RootID())
	}
}

func TestMatchKind(t *testing.T) {
	describe := func(k ListKind) string {
		return MatchKind(k,
			func() string { return "regular" },
			func(order int) string { return "kanban" })
	}
	if got := describe(RegularKind{}); got != "regular" {
		t.Errorf("RegularKind dispatched to %q", got)
	}
	if got := describe(KanbanKind{Order: 2}); got != "kanban" {
		t.Errorf("KanbanKind dispatched to %q", got)
	}
	if got := describe(&KanbanKind{Order: 2}); got != "kanban" {
		t.Errorf("*KanbanKind dispatched to %q", got)
	}

	var l List
	if l.IsKanban() || l.KanbanOrder() != 0 {
		t.Errorf("zero List should be a regular list")
	}
	l.Kind = KanbanKind{Order: 3}
	if !l.IsKanban() || l.KanbanOrder() != 3 {
		t.Errorf("expected kanban order 3, got kanban=%v order=%d", l.IsKanban(), l.KanbanOrder())
	}
}

func TestMatchKindErr(t *testing.T) {
	errRegular := errors.New("regular list")
	order := func(k ListKind) (int, error) {
		return MatchKindErr(k,
			func() (int, error) { return 0, errRegular },
			func(order int) (int, error) { return order, nil })
	}
	if _, err := order(RegularKind{}); !errors.Is(err, errRegular) {
		t.Errorf("RegularKind: expected errRegular, got %v", err)
	}
	if _, err := order(nil); !errors.Is(err, errRegular) {
		t.Errorf("nil kind should dispatch as regular, got %v", err)
	}
	got, err := order(&KanbanKind{Order: 4})
	if err != nil || got != 4 {
		t.Errorf("*KanbanKind: got (%d, %v), want (4, nil)", got, err)
	}
}

func TestListJSONFlattensKind(t *testing.T) {
	in := List{ID: 4, Name: "Doing", Kind: KanbanKind{Order: 1}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("unmarshal map: %v", err)
	}
	if flat["is_kanban"] != true || flat["kanban_order"] != float64(1) {
		t.Errorf("unexpected flat shape: %s", data)
	}

	var out List
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Kind != (KanbanKind{Order: 1}) {
		t.Errorf("Kind = %v, want kanban(1)", out.Kind)
	}

	if err := json.Unmarshal([]byte(`{"name":"Reading"}`), &out); err != nil {
		t.Fatalf("unmarshal regular: %v", err)
	}
	if out.Kind != (RegularKind{}) {
		t.Errorf("Kind = %v, want regular", out.Kind)
	}
}

func TestGoalValidate(t *testing.T) {
	tests := []struct {
		name  string
		goal  Goal
		valid bool
	}{
		{"ok", Goal{Kind: GoalSprint, StartDate: "2025-11-01", EndDate: "2025-11-14"}, true},
		{"same day", Goal{Kind: GoalSprint, StartDate: "2025-11-01", EndDate: "2025-11-01"}, false},
		{"reversed", Goal{Kind: GoalQuarterly, StartDate: "2025-12-01", EndDate: "2025-11-01"}, false},
		{"bad kind", Goal{Kind: "weekly", StartDate: "2025-11-01", EndDate: "2025-11-14"}, false},
		{"bad date", Goal{Kind: GoalSprint, StartDate: "11/01/2025", EndDate: "2025-11-14"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.goal.Validate()
			if (err == nil) != tt.valid {
				t.Errorf("Validate() error = %v, want valid=%v", err, tt.valid)
			}
		})
	}

	g := Goal{EndDate: "2025-11-14"}
	if got := g.DaysUntilEnd("2025-11-07"); got != 7 {
		t.Errorf("DaysUntilEnd = %d, want 7", got)
	}
}
