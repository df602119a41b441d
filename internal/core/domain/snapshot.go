package domain

import "time"

// Task is a minimal kanban card record. Task management itself is
// plain record-keeping outside the engine; the type exists so the
// snapshot can round-trip the board and the ledger can count
// completions for badges.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// JournalEntry is a minimal journal record, carried for snapshot
// round-tripping only.
type JournalEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	FlowID    string    `json:"flow_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Settings are the user-facing toggles. Defaults: sounds and haptics
// on, dark theme.
type Settings struct {
	SoundEnabled   bool   `json:"sound_enabled"`
	HapticsEnabled bool   `json:"haptics_enabled"`
	Theme          string `json:"theme"`
}

func DefaultSettings() Settings {
	return Settings{
		SoundEnabled:   true,
		HapticsEnabled: true,
		Theme:          "dark",
	}
}

// PomodoroSnapshot is the timer's persisted sub-state. IsRunning is
// stored for completeness but is never restored as true on load.
type PomodoroSnapshot struct {
	TimeRemaining int    `json:"time_remaining"`
	TotalTime     int    `json:"total_time"`
	Mode          string `json:"mode"`
	IsRunning     bool   `json:"is_running"`
}

// Snapshot is the full persisted record handed to the persistence
// gateway: everything needed to restore a session after reload.
type Snapshot struct {
	Progress  *ProgressState     `json:"progress"`
	Flows     []*Flow            `json:"flows"`
	Workings  []*WorkingGoal     `json:"workings"`
	Tasks     []Task             `json:"tasks"`
	Masteries []*MasteryGoal     `json:"masteries"`
	Journal   []JournalEntry     `json:"journal"`
	Patterns  []BreathingPattern `json:"patterns"`
	Events    []*ScheduledEvent  `json:"events"`
	Settings  Settings           `json:"settings"`
	Pomodoro  PomodoroSnapshot   `json:"pomodoro"`
	SavedAt   time.Time          `json:"saved_at"`
}
