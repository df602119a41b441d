package services

import (
	"context"
	"fmt"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

type MasteryService struct {
	repo   domain.MasteryRepository
	ledger *LedgerService
}

func NewMasteryService(repo domain.MasteryRepository, ledger *LedgerService) *MasteryService {
	return &MasteryService{
		repo:   repo,
		ledger: ledger,
	}
}

type MasteryInput struct {
	Name      string
	Type      string
	GoalUnits float64
	Color     string
}

func (s *MasteryService) Create(ctx context.Context, input MasteryInput) (*domain.MasteryGoal, error) {
	goal, err := domain.NewMasteryGoal(input.Name, input.Type, input.Color, input.GoalUnits)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *MasteryService) List(ctx context.Context) ([]*domain.MasteryGoal, error) {
	return s.repo.List(ctx)
}

func (s *MasteryService) GetByID(ctx context.Context, id string) (*domain.MasteryGoal, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *MasteryService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// LogSession is the manual adjustment path: the amount is applied
// as-is, negative corrections included, and is never clamped to the
// goal. Manual logs earn no XP; only step-driven contributions do.
func (s *MasteryService) LogSession(ctx context.Context, id string, amount float64) (*domain.MasteryGoal, error) {
	goal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	goal.Apply(amount)

	if err := s.repo.Update(ctx, goal); err != nil {
		return nil, err
	}

	if amount != 0 {
		s.ledger.LogActivity(ctx, fmt.Sprintf("Manually logged %+.2f %s on %s", amount, goal.Type, goal.Name))
	}

	return goal, nil
}
