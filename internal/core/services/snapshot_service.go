package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

var ErrTaskNotFound = errors.New("task not found")

const (
	TaskTodo = "todo"
	TaskDone = "done"
)

// SnapshotService assembles and restores the full persisted record.
// It also owns the plain record-keeping collections (tasks, journal,
// settings, custom breathing patterns) that have no behavior of their
// own but must round-trip through the snapshot.
type SnapshotService struct {
	flowRepo    domain.FlowRepository
	eventRepo   domain.EventRepository
	masteryRepo domain.MasteryRepository
	workingRepo domain.WorkingRepository
	ledger      *LedgerService
	pomodoro    *PomodoroService
	runner      *RunnerService

	mu       sync.Mutex
	tasks    []domain.Task
	journal  []domain.JournalEntry
	settings domain.Settings
	patterns []domain.BreathingPattern
}

func NewSnapshotService(
	flowRepo domain.FlowRepository,
	eventRepo domain.EventRepository,
	masteryRepo domain.MasteryRepository,
	workingRepo domain.WorkingRepository,
	ledger *LedgerService,
	pomodoro *PomodoroService,
	runner *RunnerService,
) *SnapshotService {
	return &SnapshotService{
		flowRepo:    flowRepo,
		eventRepo:   eventRepo,
		masteryRepo: masteryRepo,
		workingRepo: workingRepo,
		ledger:      ledger,
		pomodoro:    pomodoro,
		runner:      runner,
		tasks:       []domain.Task{},
		journal:     []domain.JournalEntry{},
		settings:    domain.DefaultSettings(),
		patterns:    domain.DefaultPatterns(),
	}
}

// Export builds a snapshot of everything durable. The active session
// runner state is deliberately absent: it is transient by contract.
func (s *SnapshotService) Export(ctx context.Context) (*domain.Snapshot, error) {
	flows, err := s.flowRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	masteries, err := s.masteryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	workings, err := s.workingRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	tasks := append([]domain.Task{}, s.tasks...)
	journal := append([]domain.JournalEntry{}, s.journal...)
	settings := s.settings
	patterns := append([]domain.BreathingPattern{}, s.patterns...)
	s.mu.Unlock()

	return &domain.Snapshot{
		Progress:  s.ledger.StateCopy(),
		Flows:     flows,
		Workings:  workings,
		Tasks:     tasks,
		Masteries: masteries,
		Journal:   journal,
		Patterns:  patterns,
		Events:    events,
		Settings:  settings,
		Pomodoro:  s.pomodoro.Snapshot(),
		SavedAt:   time.Now().UTC(),
	}, nil
}

// Import replaces all stored collections with the snapshot's content.
// The pomodoro running flag is never restored as true; a nil snapshot
// resets everything to empty collections and default settings.
func (s *SnapshotService) Import(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		snap = &domain.Snapshot{Settings: domain.DefaultSettings()}
	}

	if err := s.replaceFlows(ctx, snap.Flows); err != nil {
		return err
	}
	if err := s.replaceEvents(ctx, snap.Events); err != nil {
		return err
	}
	if err := s.replaceMasteries(ctx, snap.Masteries); err != nil {
		return err
	}
	if err := s.replaceWorkings(ctx, snap.Workings); err != nil {
		return err
	}

	s.ledger.Restore(ctx, snap.Progress)
	s.pomodoro.Restore(snap.Pomodoro)

	s.mu.Lock()
	s.tasks = snap.Tasks
	if s.tasks == nil {
		s.tasks = []domain.Task{}
	}
	s.journal = snap.Journal
	if s.journal == nil {
		s.journal = []domain.JournalEntry{}
	}
	if snap.Settings.Theme == "" {
		snap.Settings = domain.DefaultSettings()
	}
	s.settings = snap.Settings
	s.patterns = snap.Patterns
	if len(s.patterns) == 0 {
		s.patterns = domain.DefaultPatterns()
	}
	patterns := append([]domain.BreathingPattern{}, s.patterns...)
	s.mu.Unlock()

	s.runner.SetPatterns(patterns)

	return nil
}

func (s *SnapshotService) replaceFlows(ctx context.Context, flows []*domain.Flow) error {
	existing, err := s.flowRepo.List(ctx)
	if err != nil {
		return err
	}
	for _, f := range existing {
		if err := s.flowRepo.Delete(ctx, f.ID); err != nil {
			return err
		}
	}
	for _, f := range flows {
		if err := s.flowRepo.Create(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (s *SnapshotService) replaceEvents(ctx context.Context, events []*domain.ScheduledEvent) error {
	existing, err := s.eventRepo.List(ctx)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if err := s.eventRepo.Delete(ctx, e.ID); err != nil {
			return err
		}
	}
	for _, e := range events {
		if err := s.eventRepo.Create(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *SnapshotService) replaceMasteries(ctx context.Context, goals []*domain.MasteryGoal) error {
	existing, err := s.masteryRepo.List(ctx)
	if err != nil {
		return err
	}
	for _, g := range existing {
		if err := s.masteryRepo.Delete(ctx, g.ID); err != nil {
			return err
		}
	}
	for _, g := range goals {
		if err := s.masteryRepo.Create(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

func (s *SnapshotService) replaceWorkings(ctx context.Context, workings []*domain.WorkingGoal) error {
	existing, err := s.workingRepo.List(ctx)
	if err != nil {
		return err
	}
	for _, w := range existing {
		if err := s.workingRepo.Delete(ctx, w.ID); err != nil {
			return err
		}
	}
	for _, w := range workings {
		if err := s.workingRepo.Create(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// Tasks returns a copy of the kanban board.
func (s *SnapshotService) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Task{}, s.tasks...)
}

func (s *SnapshotService) AddTask(title string) domain.Task {
	task := domain.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Status:    TaskTodo,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	return task
}

// ToggleTask flips a task between todo and done. Completing it bumps
// the lifetime counter behind the tasks badge; un-completing does not
// take the credit back.
func (s *SnapshotService) ToggleTask(ctx context.Context, id string) (domain.Task, error) {
	s.mu.Lock()
	var toggled *domain.Task
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		if s.tasks[i].Status == TaskDone {
			s.tasks[i].Status = TaskTodo
			s.tasks[i].CompletedAt = nil
		} else {
			now := time.Now().UTC()
			s.tasks[i].Status = TaskDone
			s.tasks[i].CompletedAt = &now
		}
		t := s.tasks[i]
		toggled = &t
		break
	}
	s.mu.Unlock()

	if toggled == nil {
		return domain.Task{}, ErrTaskNotFound
	}

	if toggled.Status == TaskDone {
		s.ledger.RecordTaskCompletion(ctx)
	}

	return *toggled, nil
}

func (s *SnapshotService) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return ErrTaskNotFound
}

// Journal returns a copy of the journal entries.
func (s *SnapshotService) Journal() []domain.JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.JournalEntry{}, s.journal...)
}

func (s *SnapshotService) AddJournalEntry(title, body, flowID string) domain.JournalEntry {
	entry := domain.JournalEntry{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		FlowID:    flowID,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.journal = append([]domain.JournalEntry{entry}, s.journal...)
	s.mu.Unlock()

	return entry
}

// Patterns returns the available breathing patterns.
func (s *SnapshotService) Patterns() []domain.BreathingPattern {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.BreathingPattern{}, s.patterns...)
}

// AddPattern registers a custom breathing pattern and pushes the
// refreshed set to the runner.
func (s *SnapshotService) AddPattern(name string, inhale, hold1, exhale, hold2 int) (*domain.BreathingPattern, error) {
	pattern, err := domain.NewBreathingPattern(name, inhale, hold1, exhale, hold2)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	replaced := false
	for i := range s.patterns {
		if s.patterns[i].Name == pattern.Name {
			s.patterns[i] = *pattern
			replaced = true
			break
		}
	}
	if !replaced {
		s.patterns = append(s.patterns, *pattern)
	}
	patterns := append([]domain.BreathingPattern{}, s.patterns...)
	s.mu.Unlock()

	s.runner.SetPatterns(patterns)
	return pattern, nil
}

// Settings returns the current settings.
func (s *SnapshotService) Settings() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings stores new settings.
func (s *SnapshotService) UpdateSettings(settings domain.Settings) domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings.Theme == "" {
		settings.Theme = domain.DefaultSettings().Theme
	}
	s.settings = settings
	return s.settings
}
