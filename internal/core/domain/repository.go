package domain

import (
	"context"
	"errors"
)

var (
	ErrFlowNotFound    = errors.New("flow not found")
	ErrEventNotFound   = errors.New("scheduled event not found")
	ErrMasteryNotFound = errors.New("mastery goal not found")
	ErrWorkingNotFound = errors.New("working not found")
)

type FlowRepository interface {
	// Create persists a new flow definition.
	Create(ctx context.Context, flow *Flow) error

	// GetByID retrieves a flow by its unique identifier.
	GetByID(ctx context.Context, id string) (*Flow, error)

	// List retrieves every flow ordered by sort order.
	List(ctx context.Context) ([]*Flow, error)

	// Update replaces the stored state of an existing flow.
	Update(ctx context.Context, flow *Flow) error

	// Delete removes a flow unconditionally by id.
	Delete(ctx context.Context, id string) error
}

type EventRepository interface {
	Create(ctx context.Context, event *ScheduledEvent) error
	ListByDate(ctx context.Context, date string) ([]*ScheduledEvent, error)
	List(ctx context.Context) ([]*ScheduledEvent, error)
	Delete(ctx context.Context, id string) error
}

type MasteryRepository interface {
	Create(ctx context.Context, goal *MasteryGoal) error
	GetByID(ctx context.Context, id string) (*MasteryGoal, error)
	List(ctx context.Context) ([]*MasteryGoal, error)
	Update(ctx context.Context, goal *MasteryGoal) error
	Delete(ctx context.Context, id string) error
}

type WorkingRepository interface {
	Create(ctx context.Context, working *WorkingGoal) error
	GetByID(ctx context.Context, id string) (*WorkingGoal, error)
	List(ctx context.Context) ([]*WorkingGoal, error)
	Update(ctx context.Context, working *WorkingGoal) error
	Delete(ctx context.Context, id string) error
}

// ProgressRepository persists the ledger's single state container.
// Get returns a fresh empty state when nothing was stored yet.
type ProgressRepository interface {
	Get(ctx context.Context) (*ProgressState, error)
	Save(ctx context.Context, state *ProgressState) error
}

// SnapshotStore is the persistence gateway for full snapshots.
// Load returns (nil, nil) when no snapshot exists.
type SnapshotStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
}

const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityPrompt  = "prompt"
)

// Notifier is the sink for transient user feedback: toasts, badge
// unlocks, persistence warnings, journal prompts.
type Notifier interface {
	Notify(message, severity string)
}
