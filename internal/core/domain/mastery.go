package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMasteryNameEmpty   = errors.New("mastery goal name cannot be empty")
	ErrInvalidMasteryType = errors.New("invalid mastery type (must be hours or reps)")
	ErrInvalidMasteryGoal = errors.New("mastery goal target must be positive")
)

const (
	MasteryHours = "hours"
	MasteryReps  = "reps"
)

// MasteryGoal is a cumulative progress target fed by flow steps and by
// manual log entries. CurrentUnits is never clamped to GoalUnits;
// completion is derived, and negative manual adjustments are allowed.
type MasteryGoal struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Type         string    `json:"type" db:"type"`
	GoalUnits    float64   `json:"goal_units" db:"goal_units"`
	CurrentUnits float64   `json:"current_units" db:"current_units"`
	Color        string    `json:"color,omitempty" db:"color"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

func NewMasteryGoal(name, goalType, color string, goalUnits float64) (*MasteryGoal, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMasteryNameEmpty
	}
	if goalType != MasteryHours && goalType != MasteryReps {
		return nil, ErrInvalidMasteryType
	}
	if goalUnits <= 0 {
		return nil, ErrInvalidMasteryGoal
	}

	now := time.Now().UTC()

	return &MasteryGoal{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Type:      goalType,
		GoalUnits: goalUnits,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Apply adds the given amount (may be negative for manual corrections)
// without clamping.
func (m *MasteryGoal) Apply(amount float64) {
	m.CurrentUnits += amount
	m.UpdatedAt = time.Now().UTC()
}

func (m *MasteryGoal) Completed() bool {
	return m.CurrentUnits >= m.GoalUnits
}

// Percent is the display percentage, capped at 100.
func (m *MasteryGoal) Percent() float64 {
	if m.GoalUnits <= 0 {
		return 0
	}
	p := m.CurrentUnits / m.GoalUnits * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// ContributionFrom converts a step result into this goal's units.
// Reps-type goals only accept reps steps; hours-type goals accept
// timer (whole minutes) and stopwatch (elapsed seconds) steps. Any
// other pairing contributes nothing.
func (m *MasteryGoal) ContributionFrom(stepType string, reps, seconds int) float64 {
	switch m.Type {
	case MasteryReps:
		if stepType == StepReps {
			return float64(reps)
		}
	case MasteryHours:
		switch stepType {
		case StepTimer, StepStopwatch:
			return float64(seconds) / 3600
		}
	}
	return 0
}
