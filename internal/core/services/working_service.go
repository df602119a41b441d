package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

type WorkingService struct {
	repo     domain.WorkingRepository
	ledger   *LedgerService
	notifier domain.Notifier
}

func NewWorkingService(repo domain.WorkingRepository, ledger *LedgerService, notifier domain.Notifier) *WorkingService {
	return &WorkingService{
		repo:     repo,
		ledger:   ledger,
		notifier: notifier,
	}
}

type WorkingInput struct {
	Name      string
	Intention string
	Duration  int
	Status    string
}

func (s *WorkingService) Create(ctx context.Context, input WorkingInput) (*domain.WorkingGoal, error) {
	working, err := domain.NewWorkingGoal(input.Name, input.Intention, input.Duration, input.Status)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, working); err != nil {
		return nil, err
	}

	s.ledger.RecordWorkingCreated(ctx)

	return working, nil
}

func (s *WorkingService) List(ctx context.Context) ([]*domain.WorkingGoal, error) {
	return s.repo.List(ctx)
}

func (s *WorkingService) Activate(ctx context.Context, id string) (*domain.WorkingGoal, error) {
	working, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	working.Activate(domain.DateKey(time.Now()))

	if err := s.repo.Update(ctx, working); err != nil {
		return nil, err
	}
	return working, nil
}

func (s *WorkingService) Pause(ctx context.Context, id string) (*domain.WorkingGoal, error) {
	working, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	working.Pause()

	if err := s.repo.Update(ctx, working); err != nil {
		return nil, err
	}
	return working, nil
}

// CompleteDay counts one day toward the working and completes it
// automatically when the full duration is reached.
func (s *WorkingService) CompleteDay(ctx context.Context, id string) (*domain.WorkingGoal, error) {
	working, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	finished, err := working.CompleteDay()
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, working); err != nil {
		return nil, err
	}

	today := domain.DateKey(time.Now())
	s.ledger.GrantXP(ctx, domain.XPWorkingDay, today)

	if finished {
		s.ledger.LogActivity(ctx, fmt.Sprintf("Working fulfilled: %s (%d days)", working.Name, working.Duration))
		s.notifier.Notify(fmt.Sprintf("Working fulfilled: %s", working.Name), domain.SeveritySuccess)
	}

	return working, nil
}

func (s *WorkingService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
