package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrWorkingNameEmpty      = errors.New("working name cannot be empty")
	ErrInvalidWorkingLength  = errors.New("working duration must be a positive number of days")
	ErrInvalidWorkingStatus  = errors.New("invalid working status")
	ErrWorkingNotActive      = errors.New("only an active working can record a day")
	ErrWorkingAlreadyDone    = errors.New("working is already completed")
)

const (
	WorkingActive    = "active"
	WorkingPlanned   = "planned"
	WorkingPaused    = "paused"
	WorkingCompleted = "completed"
)

// WorkingGoal is a long-duration, day-counted ritual: a target number
// of days with an intention attached. It completes automatically when
// DaysCompleted reaches Duration.
type WorkingGoal struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Intention     string    `json:"intention,omitempty" db:"intention"`
	Duration      int       `json:"duration" db:"duration"`
	DaysCompleted int       `json:"days_completed" db:"days_completed"`
	Status        string    `json:"status" db:"status"`
	StartDate     string    `json:"start_date,omitempty" db:"start_date"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

func NewWorkingGoal(name, intention string, duration int, status string) (*WorkingGoal, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrWorkingNameEmpty
	}
	if duration <= 0 {
		return nil, ErrInvalidWorkingLength
	}

	if status == "" {
		status = WorkingPlanned
	}
	switch status {
	case WorkingActive, WorkingPlanned, WorkingPaused:
	default:
		return nil, ErrInvalidWorkingStatus
	}

	now := time.Now().UTC()

	w := &WorkingGoal{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Intention: strings.TrimSpace(intention),
		Duration:  duration,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if status == WorkingActive {
		w.StartDate = DateKey(now)
	}

	return w, nil
}

func (w *WorkingGoal) Activate(today string) {
	if w.Status == WorkingCompleted {
		return
	}
	w.Status = WorkingActive
	if w.StartDate == "" {
		w.StartDate = today
	}
	w.UpdatedAt = time.Now().UTC()
}

func (w *WorkingGoal) Pause() {
	if w.Status != WorkingActive {
		return
	}
	w.Status = WorkingPaused
	w.UpdatedAt = time.Now().UTC()
}

// CompleteDay counts one more day and reports whether the working just
// reached its full duration.
func (w *WorkingGoal) CompleteDay() (bool, error) {
	if w.Status == WorkingCompleted {
		return false, ErrWorkingAlreadyDone
	}
	if w.Status != WorkingActive {
		return false, ErrWorkingNotActive
	}

	w.DaysCompleted++
	w.UpdatedAt = time.Now().UTC()

	if w.DaysCompleted >= w.Duration {
		w.DaysCompleted = w.Duration
		w.Status = WorkingCompleted
		return true, nil
	}
	return false, nil
}
