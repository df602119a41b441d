package services

import (
	"context"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

// FlowService owns the flow definition collection: builder CRUD,
// explicit reordering, the authoritative completion toggle and the
// lazy daily reset of the today-only checkboxes.
type FlowService struct {
	repo   domain.FlowRepository
	ledger *LedgerService
}

func NewFlowService(repo domain.FlowRepository, ledger *LedgerService) *FlowService {
	return &FlowService{
		repo:   repo,
		ledger: ledger,
	}
}

type FlowInput struct {
	Title       string
	Description string
	CoverImage  string
	Steps       []domain.Step
	Schedule    domain.Schedule
	MasteryID   string
}

func (s *FlowService) Create(ctx context.Context, input FlowInput) (*domain.Flow, error) {
	flow, err := domain.NewFlow(input.Title, input.Description, input.Steps, input.Schedule)
	if err != nil {
		return nil, err
	}

	flow.CoverImage = input.CoverImage
	flow.MasteryID = input.MasteryID

	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	flow.SortOrder = len(existing)

	if err := s.repo.Create(ctx, flow); err != nil {
		return nil, err
	}
	return flow, nil
}

func (s *FlowService) GetByID(ctx context.Context, id string) (*domain.Flow, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlowService) List(ctx context.Context) ([]*domain.Flow, error) {
	return s.repo.List(ctx)
}

// Update replaces the editable definition wholesale; the builder
// always submits the complete flow.
func (s *FlowService) Update(ctx context.Context, id string, input FlowInput) (*domain.Flow, error) {
	flow, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := flow.Update(input.Title, input.Description, input.Steps, input.Schedule); err != nil {
		return nil, err
	}
	flow.CoverImage = input.CoverImage
	flow.MasteryID = input.MasteryID

	if err := s.repo.Update(ctx, flow); err != nil {
		return nil, err
	}
	return flow, nil
}

func (s *FlowService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Reorder moves a flow to the target position and renumbers the rest,
// keeping the relative order of all other flows stable.
func (s *FlowService) Reorder(ctx context.Context, id string, targetPosition int) error {
	flows, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i, f := range flows {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return domain.ErrFlowNotFound
	}

	moved := flows[idx]
	flows = append(flows[:idx], flows[idx+1:]...)

	if targetPosition < 0 {
		targetPosition = 0
	}
	if targetPosition > len(flows) {
		targetPosition = len(flows)
	}

	flows = append(flows[:targetPosition], append([]*domain.Flow{moved}, flows[targetPosition:]...)...)

	for i, f := range flows {
		if f.SortOrder == i {
			continue
		}
		f.ChangePosition(i)
		if err := s.repo.Update(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// ToggleCompletion is the single authoritative completion-toggle path,
// shared by the dashboard quick-check and the flow-card control. Only
// the "add" transition emits a completion outcome; toggling back off
// is reward-neutral.
func (s *FlowService) ToggleCompletion(ctx context.Context, id, date string) (*domain.Flow, error) {
	flow, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	added := flow.ToggleCompletion(date)

	if err := s.repo.Update(ctx, flow); err != nil {
		return nil, err
	}

	if added {
		s.ledger.RecordFlowCompletion(ctx, flow.Title, date, domain.XPQuickComplete)
	}

	return flow, nil
}

// ResetDaily prunes every flow's completed dates down to today's
// entry. Called lazily on the first access of a new calendar day; the
// permanent completion history in the ledger is untouched.
func (s *FlowService) ResetDaily(ctx context.Context, today string) error {
	flows, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	for _, f := range flows {
		if !f.PruneCompletedDates(today) {
			continue
		}
		if err := s.repo.Update(ctx, f); err != nil {
			return err
		}
	}
	return nil
}
