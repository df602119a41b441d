package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

// In-memory repositories back the engine when no database is
// configured and carry the whole test suite. Reads hand out clones so
// callers can't mutate stored state behind the repository's back.

type InMemoryFlowRepository struct {
	store map[string]*domain.Flow

	mu sync.RWMutex
}

func NewInMemoryFlowRepository() *InMemoryFlowRepository {
	return &InMemoryFlowRepository{
		store: make(map[string]*domain.Flow),
	}
}

func cloneFlow(f *domain.Flow) *domain.Flow {
	clone := *f
	clone.Steps = append([]domain.Step{}, f.Steps...)
	clone.CompletedDates = append([]string{}, f.CompletedDates...)
	clone.Schedule.Weekdays = append([]int{}, f.Schedule.Weekdays...)
	clone.Schedule.MonthDays = append([]int{}, f.Schedule.MonthDays...)
	return &clone
}

func (r *InMemoryFlowRepository) Create(ctx context.Context, flow *domain.Flow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[flow.ID] = cloneFlow(flow)
	return nil
}

func (r *InMemoryFlowRepository) GetByID(ctx context.Context, id string) (*domain.Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flow, ok := r.store[id]
	if !ok {
		return nil, domain.ErrFlowNotFound
	}
	return cloneFlow(flow), nil
}

func (r *InMemoryFlowRepository) List(ctx context.Context) ([]*domain.Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flows := make([]*domain.Flow, 0, len(r.store))
	for _, f := range r.store {
		flows = append(flows, cloneFlow(f))
	}

	sort.Slice(flows, func(i, j int) bool {
		if flows[i].SortOrder != flows[j].SortOrder {
			return flows[i].SortOrder < flows[j].SortOrder
		}
		return flows[i].CreatedAt.Before(flows[j].CreatedAt)
	})

	return flows, nil
}

func (r *InMemoryFlowRepository) Update(ctx context.Context, flow *domain.Flow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[flow.ID]; !ok {
		return domain.ErrFlowNotFound
	}

	r.store[flow.ID] = cloneFlow(flow)
	return nil
}

func (r *InMemoryFlowRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrFlowNotFound
	}

	delete(r.store, id)
	return nil
}

type InMemoryEventRepository struct {
	store map[string]*domain.ScheduledEvent

	mu sync.RWMutex
}

func NewInMemoryEventRepository() *InMemoryEventRepository {
	return &InMemoryEventRepository{
		store: make(map[string]*domain.ScheduledEvent),
	}
}

func (r *InMemoryEventRepository) Create(ctx context.Context, event *domain.ScheduledEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *event
	r.store[event.ID] = &clone
	return nil
}

func (r *InMemoryEventRepository) ListByDate(ctx context.Context, date string) ([]*domain.ScheduledEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := []*domain.ScheduledEvent{}
	for _, e := range r.store {
		if e.Date == date {
			clone := *e
			events = append(events, &clone)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})

	return events, nil
}

func (r *InMemoryEventRepository) List(ctx context.Context) ([]*domain.ScheduledEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*domain.ScheduledEvent, 0, len(r.store))
	for _, e := range r.store {
		clone := *e
		events = append(events, &clone)
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Time < events[j].Time
	})

	return events, nil
}

func (r *InMemoryEventRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrEventNotFound
	}

	delete(r.store, id)
	return nil
}

type InMemoryMasteryRepository struct {
	store map[string]*domain.MasteryGoal

	mu sync.RWMutex
}

func NewInMemoryMasteryRepository() *InMemoryMasteryRepository {
	return &InMemoryMasteryRepository{
		store: make(map[string]*domain.MasteryGoal),
	}
}

func (r *InMemoryMasteryRepository) Create(ctx context.Context, goal *domain.MasteryGoal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *goal
	r.store[goal.ID] = &clone
	return nil
}

func (r *InMemoryMasteryRepository) GetByID(ctx context.Context, id string) (*domain.MasteryGoal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	goal, ok := r.store[id]
	if !ok {
		return nil, domain.ErrMasteryNotFound
	}
	clone := *goal
	return &clone, nil
}

func (r *InMemoryMasteryRepository) List(ctx context.Context) ([]*domain.MasteryGoal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	goals := make([]*domain.MasteryGoal, 0, len(r.store))
	for _, g := range r.store {
		clone := *g
		goals = append(goals, &clone)
	}

	sort.Slice(goals, func(i, j int) bool {
		return goals[i].CreatedAt.Before(goals[j].CreatedAt)
	})

	return goals, nil
}

func (r *InMemoryMasteryRepository) Update(ctx context.Context, goal *domain.MasteryGoal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[goal.ID]; !ok {
		return domain.ErrMasteryNotFound
	}

	clone := *goal
	r.store[goal.ID] = &clone
	return nil
}

func (r *InMemoryMasteryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrMasteryNotFound
	}

	delete(r.store, id)
	return nil
}

type InMemoryWorkingRepository struct {
	store map[string]*domain.WorkingGoal

	mu sync.RWMutex
}

func NewInMemoryWorkingRepository() *InMemoryWorkingRepository {
	return &InMemoryWorkingRepository{
		store: make(map[string]*domain.WorkingGoal),
	}
}

func (r *InMemoryWorkingRepository) Create(ctx context.Context, working *domain.WorkingGoal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *working
	r.store[working.ID] = &clone
	return nil
}

func (r *InMemoryWorkingRepository) GetByID(ctx context.Context, id string) (*domain.WorkingGoal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	working, ok := r.store[id]
	if !ok {
		return nil, domain.ErrWorkingNotFound
	}
	clone := *working
	return &clone, nil
}

func (r *InMemoryWorkingRepository) List(ctx context.Context) ([]*domain.WorkingGoal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workings := make([]*domain.WorkingGoal, 0, len(r.store))
	for _, w := range r.store {
		clone := *w
		workings = append(workings, &clone)
	}

	sort.Slice(workings, func(i, j int) bool {
		return workings[i].CreatedAt.Before(workings[j].CreatedAt)
	})

	return workings, nil
}

func (r *InMemoryWorkingRepository) Update(ctx context.Context, working *domain.WorkingGoal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[working.ID]; !ok {
		return domain.ErrWorkingNotFound
	}

	clone := *working
	r.store[working.ID] = &clone
	return nil
}

func (r *InMemoryWorkingRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrWorkingNotFound
	}

	delete(r.store, id)
	return nil
}

// InMemoryProgressRepository keeps the ledger state container as a
// JSON-free deep copy.
type InMemoryProgressRepository struct {
	state *domain.ProgressState

	mu sync.RWMutex
}

func NewInMemoryProgressRepository() *InMemoryProgressRepository {
	return &InMemoryProgressRepository{}
}

func cloneProgress(s *domain.ProgressState) *domain.ProgressState {
	progress := *s.Progress
	progress.Badges = append([]string{}, s.Progress.Badges...)

	history := make(map[string]*domain.DailyHistoryEntry, len(s.History))
	for k, v := range s.History {
		entry := *v
		history[k] = &entry
	}

	activity := append([]domain.ActivityEntry{}, s.Activity...)

	return &domain.ProgressState{
		Progress: &progress,
		History:  history,
		Activity: activity,
		Stats:    s.Stats,
	}
}

func (r *InMemoryProgressRepository) Get(ctx context.Context) (*domain.ProgressState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.state == nil {
		return domain.NewProgressState(), nil
	}
	return cloneProgress(r.state), nil
}

func (r *InMemoryProgressRepository) Save(ctx context.Context, state *domain.ProgressState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = cloneProgress(state)
	return nil
}
