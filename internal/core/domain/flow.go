package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrFlowTitleEmpty   = errors.New("flow title cannot be empty")
	ErrFlowTitleTooLong = errors.New("flow title is too long (max 100 chars)")
	ErrFlowNoSteps      = errors.New("flow must have at least one step")
	ErrInvalidStepType  = errors.New("invalid step type (must be timer, reps, stopwatch, breathing or static)")
	ErrInvalidDuration  = errors.New("step duration must be positive")
	ErrInvalidReps      = errors.New("step target reps must be positive")
)

const (
	StepTimer     = "timer"
	StepReps      = "reps"
	StepStopwatch = "stopwatch"
	StepBreathing = "breathing"
	StepStatic    = "static"

	MaxFlowTitleLen = 100
)

// Step is one unit of a flow. Duration is minutes and is required for
// timer steps (and optional as a goal for stopwatch steps); TargetReps
// is required for reps steps; Pattern names a breathing pattern for
// breathing steps. MasteryID overrides the flow-level mastery target.
type Step struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	Duration     int    `json:"duration,omitempty"`
	TargetReps   int    `json:"target_reps,omitempty"`
	Pattern      string `json:"pattern,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	Image        string `json:"image,omitempty"`
	MasteryID    string `json:"mastery_id,omitempty"`
}

func (s *Step) Validate() error {
	switch s.Type {
	case StepTimer:
		if s.Duration <= 0 {
			return ErrInvalidDuration
		}
	case StepReps:
		if s.TargetReps <= 0 {
			return ErrInvalidReps
		}
	case StepStopwatch:
		if s.Duration < 0 {
			return ErrInvalidDuration
		}
	case StepBreathing, StepStatic:
	default:
		return ErrInvalidStepType
	}
	return nil
}

// Flow is a user-defined, optionally recurring, multi-step routine.
// CompletedDates is a today-only checkbox memory: it is pruned to the
// current date on daily reset, while permanent completion counts live
// in the progress history. The two are deliberately never unified.
type Flow struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	CoverImage     string    `json:"cover_image,omitempty"`
	Steps          []Step    `json:"steps"`
	Schedule       Schedule  `json:"schedule"`
	MasteryID      string    `json:"mastery_id,omitempty"`
	CompletedDates []string  `json:"completed_dates"`
	SortOrder      int       `json:"sort_order"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func validateFlow(title string, steps []Step, schedule *Schedule) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ErrFlowTitleEmpty
	}
	if len(trimmed) > MaxFlowTitleLen {
		return ErrFlowTitleTooLong
	}
	if len(steps) == 0 {
		return ErrFlowNoSteps
	}
	for i := range steps {
		if err := steps[i].Validate(); err != nil {
			return err
		}
	}
	return schedule.Validate()
}

func NewFlow(title, description string, steps []Step, schedule Schedule) (*Flow, error) {
	if schedule.Kind == "" {
		schedule.Kind = ScheduleManual
	}

	if err := validateFlow(title, steps, &schedule); err != nil {
		return nil, err
	}

	schedule.Normalize()

	for i := range steps {
		if steps[i].ID == "" {
			steps[i].ID = uuid.NewString()
		}
	}

	now := time.Now().UTC()

	return &Flow{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(title),
		Description:    strings.TrimSpace(description),
		Steps:          steps,
		Schedule:       schedule,
		CompletedDates: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (f *Flow) Update(title, description string, steps []Step, schedule Schedule) error {
	if schedule.Kind == "" {
		schedule.Kind = ScheduleManual
	}

	if err := validateFlow(title, steps, &schedule); err != nil {
		return err
	}

	schedule.Normalize()

	for i := range steps {
		if steps[i].ID == "" {
			steps[i].ID = uuid.NewString()
		}
	}

	f.Title = strings.TrimSpace(title)
	f.Description = strings.TrimSpace(description)
	f.Steps = steps
	f.Schedule = schedule
	f.UpdatedAt = time.Now().UTC()

	return nil
}

func (f *Flow) ChangePosition(newOrder int) {
	f.SortOrder = newOrder
	f.UpdatedAt = time.Now().UTC()
}

// IsCompletedOn reports whether the flow is checked off for the date.
func (f *Flow) IsCompletedOn(date string) bool {
	for _, d := range f.CompletedDates {
		if d == date {
			return true
		}
	}
	return false
}

// ToggleCompletion flips the checked state for the date and reports
// whether the date was added. At most one entry per date is kept, so a
// toggle pair always restores the original state.
func (f *Flow) ToggleCompletion(date string) bool {
	for i, d := range f.CompletedDates {
		if d == date {
			f.CompletedDates = append(f.CompletedDates[:i], f.CompletedDates[i+1:]...)
			f.UpdatedAt = time.Now().UTC()
			return false
		}
	}

	f.CompletedDates = append(f.CompletedDates, date)
	f.UpdatedAt = time.Now().UTC()
	return true
}

// PruneCompletedDates drops every completed date except today's entry
// and reports whether anything changed. "Completed" is a daily display
// flag, not a history log.
func (f *Flow) PruneCompletedDates(today string) bool {
	kept := f.CompletedDates[:0]
	for _, d := range f.CompletedDates {
		if d == today {
			kept = append(kept, d)
		}
	}

	if len(kept) == len(f.CompletedDates) {
		return false
	}

	f.CompletedDates = kept
	f.UpdatedAt = time.Now().UTC()
	return true
}

// StepMasteryID resolves the effective mastery target for a step:
// the step-level override if set, else the flow default.
func (f *Flow) StepMasteryID(index int) string {
	if index < 0 || index >= len(f.Steps) {
		return ""
	}
	if f.Steps[index].MasteryID != "" {
		return f.Steps[index].MasteryID
	}
	return f.MasteryID
}
