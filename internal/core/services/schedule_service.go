package services

import (
	"context"
	"time"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

type ScheduleService struct {
	flowRepo  domain.FlowRepository
	eventRepo domain.EventRepository
}

func NewScheduleService(flowRepo domain.FlowRepository, eventRepo domain.EventRepository) *ScheduleService {
	return &ScheduleService{
		flowRepo:  flowRepo,
		eventRepo: eventRepo,
	}
}

// DueAgenda is everything applicable to one calendar date: recurring
// flows whose schedule matches, plus one-off events authored for it.
type DueAgenda struct {
	Date      string                   `json:"date"`
	Recurring []*domain.Flow           `json:"recurring"`
	OneOffs   []*domain.ScheduledEvent `json:"one_offs"`
}

// Resolve computes the agenda for a date. Manual flows never surface
// here; they are only started directly from the catalog. Dates with
// nothing due yield empty lists, never an error.
func (s *ScheduleService) Resolve(ctx context.Context, date time.Time) (*DueAgenda, error) {
	flows, err := s.flowRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	agenda := &DueAgenda{
		Date:      domain.DateKey(date),
		Recurring: []*domain.Flow{},
		OneOffs:   []*domain.ScheduledEvent{},
	}

	for _, f := range flows {
		if f.Schedule.Kind == domain.ScheduleManual {
			continue
		}
		if f.Schedule.Matches(date) {
			agenda.Recurring = append(agenda.Recurring, f)
		}
	}

	events, err := s.eventRepo.ListByDate(ctx, agenda.Date)
	if err != nil {
		return nil, err
	}
	agenda.OneOffs = events

	return agenda, nil
}

type CreateEventInput struct {
	Title  string
	FlowID string
	Date   string
	Time   string
	Type   string
}

func (s *ScheduleService) CreateEvent(ctx context.Context, input CreateEventInput) (*domain.ScheduledEvent, error) {
	event, err := domain.NewScheduledEvent(input.Title, input.FlowID, input.Date, input.Time, input.Type)
	if err != nil {
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *ScheduleService) ListEvents(ctx context.Context) ([]*domain.ScheduledEvent, error) {
	return s.eventRepo.List(ctx)
}

func (s *ScheduleService) DeleteEvent(ctx context.Context, id string) error {
	return s.eventRepo.Delete(ctx, id)
}
