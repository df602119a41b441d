package services_test

import (
	"context"
	"sort"
	"sync"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

// In-file fakes shared by the service tests: map-backed repositories
// with clone-on-read semantics, plus a recording notifier.

type MockFlowRepo struct {
	mu            sync.Mutex
	store         map[string]*domain.Flow
	simulateError error
}

func NewMockFlowRepo() *MockFlowRepo {
	return &MockFlowRepo{store: make(map[string]*domain.Flow)}
}

func cloneMockFlow(f *domain.Flow) *domain.Flow {
	clone := *f
	clone.Steps = append([]domain.Step{}, f.Steps...)
	clone.CompletedDates = append([]string{}, f.CompletedDates...)
	return &clone
}

func (m *MockFlowRepo) Create(ctx context.Context, flow *domain.Flow) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[flow.ID] = cloneMockFlow(flow)
	return nil
}

func (m *MockFlowRepo) GetByID(ctx context.Context, id string) (*domain.Flow, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.store[id]
	if !ok {
		return nil, domain.ErrFlowNotFound
	}
	return cloneMockFlow(f), nil
}

func (m *MockFlowRepo) List(ctx context.Context) ([]*domain.Flow, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]*domain.Flow, 0, len(m.store))
	for _, f := range m.store {
		list = append(list, cloneMockFlow(f))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SortOrder < list[j].SortOrder })
	return list, nil
}

func (m *MockFlowRepo) Update(ctx context.Context, flow *domain.Flow) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[flow.ID]; !ok {
		return domain.ErrFlowNotFound
	}
	m.store[flow.ID] = cloneMockFlow(flow)
	return nil
}

func (m *MockFlowRepo) Delete(ctx context.Context, id string) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrFlowNotFound
	}
	delete(m.store, id)
	return nil
}

type MockEventRepo struct {
	mu    sync.Mutex
	store map[string]*domain.ScheduledEvent
}

func NewMockEventRepo() *MockEventRepo {
	return &MockEventRepo{store: make(map[string]*domain.ScheduledEvent)}
}

func (m *MockEventRepo) Create(ctx context.Context, event *domain.ScheduledEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *event
	m.store[event.ID] = &clone
	return nil
}

func (m *MockEventRepo) ListByDate(ctx context.Context, date string) ([]*domain.ScheduledEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*domain.ScheduledEvent
	for _, e := range m.store {
		if e.Date == date {
			clone := *e
			list = append(list, &clone)
		}
	}
	return list, nil
}

func (m *MockEventRepo) List(ctx context.Context) ([]*domain.ScheduledEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]*domain.ScheduledEvent, 0, len(m.store))
	for _, e := range m.store {
		clone := *e
		list = append(list, &clone)
	}
	return list, nil
}

func (m *MockEventRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(m.store, id)
	return nil
}

type MockMasteryRepo struct {
	mu    sync.Mutex
	store map[string]*domain.MasteryGoal
}

func NewMockMasteryRepo() *MockMasteryRepo {
	return &MockMasteryRepo{store: make(map[string]*domain.MasteryGoal)}
}

func (m *MockMasteryRepo) Create(ctx context.Context, goal *domain.MasteryGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *goal
	m.store[goal.ID] = &clone
	return nil
}

func (m *MockMasteryRepo) GetByID(ctx context.Context, id string) (*domain.MasteryGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.store[id]
	if !ok {
		return nil, domain.ErrMasteryNotFound
	}
	clone := *g
	return &clone, nil
}

func (m *MockMasteryRepo) List(ctx context.Context) ([]*domain.MasteryGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]*domain.MasteryGoal, 0, len(m.store))
	for _, g := range m.store {
		clone := *g
		list = append(list, &clone)
	}
	return list, nil
}

func (m *MockMasteryRepo) Update(ctx context.Context, goal *domain.MasteryGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[goal.ID]; !ok {
		return domain.ErrMasteryNotFound
	}
	clone := *goal
	m.store[goal.ID] = &clone
	return nil
}

func (m *MockMasteryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrMasteryNotFound
	}
	delete(m.store, id)
	return nil
}

type MockWorkingRepo struct {
	mu    sync.Mutex
	store map[string]*domain.WorkingGoal
}

func NewMockWorkingRepo() *MockWorkingRepo {
	return &MockWorkingRepo{store: make(map[string]*domain.WorkingGoal)}
}

func (m *MockWorkingRepo) Create(ctx context.Context, working *domain.WorkingGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *working
	m.store[working.ID] = &clone
	return nil
}

func (m *MockWorkingRepo) GetByID(ctx context.Context, id string) (*domain.WorkingGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.store[id]
	if !ok {
		return nil, domain.ErrWorkingNotFound
	}
	clone := *w
	return &clone, nil
}

func (m *MockWorkingRepo) List(ctx context.Context) ([]*domain.WorkingGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]*domain.WorkingGoal, 0, len(m.store))
	for _, w := range m.store {
		clone := *w
		list = append(list, &clone)
	}
	return list, nil
}

func (m *MockWorkingRepo) Update(ctx context.Context, working *domain.WorkingGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[working.ID]; !ok {
		return domain.ErrWorkingNotFound
	}
	clone := *working
	m.store[working.ID] = &clone
	return nil
}

func (m *MockWorkingRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrWorkingNotFound
	}
	delete(m.store, id)
	return nil
}

type MockProgressRepo struct {
	mu            sync.Mutex
	saved         *domain.ProgressState
	saves         int
	simulateError error
}

func NewMockProgressRepo() *MockProgressRepo {
	return &MockProgressRepo{}
}

func (m *MockProgressRepo) Get(ctx context.Context) (*domain.ProgressState, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return domain.NewProgressState(), nil
	}
	return m.saved, nil
}

func (m *MockProgressRepo) Save(ctx context.Context, state *domain.ProgressState) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = state
	m.saves++
	return nil
}

func (m *MockProgressRepo) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

type notification struct {
	Message  string
	Severity string
}

// RecordingNotifier captures everything the services toast.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) Notify(message, severity string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{Message: message, Severity: severity})
}

func (n *RecordingNotifier) Sent() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification{}, n.sent...)
}

func (n *RecordingNotifier) HasSeverity(severity string) bool {
	for _, msg := range n.Sent() {
		if msg.Severity == severity {
			return true
		}
	}
	return false
}
