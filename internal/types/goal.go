package types

import (
	"fmt"
	"time"
)

// GoalKind selects the goal table.
type GoalKind string

const (
	GoalSprint    GoalKind = "sprint"
	GoalQuarterly GoalKind = "quarterly"
)

// IsValid reports whether k names a known goal kind.
func (k GoalKind) IsValid() bool {
	return k == GoalSprint || k == GoalQuarterly
}

// Goal is a sprint or quarterly goal covering [StartDate, EndDate].
// Ranges may overlap, both across kinds and within one kind.
type Goal struct {
	ID            int64     `json:"id"`
	Kind          GoalKind  `json:"kind"`
	Text          string    `json:"text"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	DaysRemaining *int      `json:"days_remaining,omitempty"`
}

// Validate checks kind and date range. EndDate must be after StartDate.
func (g *Goal) Validate() error {
	if !g.Kind.IsValid() {
		return fmt.Errorf("invalid goal kind: %q", g.Kind)
	}
	start, err := ParseDate(g.StartDate)
	if err != nil {
		return fmt.Errorf("start_date: %w", err)
	}
	end, err := ParseDate(g.EndDate)
	if err != nil {
		return fmt.Errorf("end_date: %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("end_date must be after start_date")
	}
	return nil
}

// DaysUntilEnd returns the number of days from date to the goal's end date.
func (g *Goal) DaysUntilEnd(date string) int {
	end, err := ParseDate(g.EndDate)
	if err != nil {
		return 0
	}
	from, err := ParseDate(date)
	if err != nil {
		return 0
	}
	return int(end.Sub(from).Hours() / 24)
}
