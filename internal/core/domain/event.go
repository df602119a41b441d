package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEventTitleEmpty = errors.New("event title cannot be empty")
	ErrEventDateEmpty  = errors.New("event date is required")
)

// ScheduledEvent is a one-off calendar entry, optionally linked to a
// flow definition. Its lifecycle is independent from recurring flows:
// created from the calendar, deleted individually.
type ScheduledEvent struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	FlowID    string    `json:"flow_id,omitempty" db:"flow_id"`
	Date      string    `json:"date" db:"date"`
	Time      string    `json:"time,omitempty" db:"time"`
	Type      string    `json:"type,omitempty" db:"type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func NewScheduledEvent(title, flowID, date, timeOfDay, eventType string) (*ScheduledEvent, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEventTitleEmpty
	}
	if date == "" {
		return nil, ErrEventDateEmpty
	}
	if _, err := ParseDateKey(date); err != nil {
		return nil, err
	}

	return &ScheduledEvent{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(title),
		FlowID:    flowID,
		Date:      date,
		Time:      timeOfDay,
		Type:      eventType,
		CreatedAt: time.Now().UTC(),
	}, nil
}
