package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

type PostgresEventRepository struct {
	db *sqlx.DB
}

func NewPostgresEventRepository(db *sqlx.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.ScheduledEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	query := `
		INSERT INTO scheduled_events (
			id, title, flow_id, date, time, type, created_at
		) VALUES (
			:id, :title, :flow_id, :date, :time, :type, :created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return errors.New("scheduled event already exists")
		}
		return err
	}
	return nil
}

func (r *PostgresEventRepository) ListByDate(ctx context.Context, date string) ([]*domain.ScheduledEvent, error) {
	events := []*domain.ScheduledEvent{}

	query := `
		SELECT * FROM scheduled_events
		WHERE date = $1
		ORDER BY time ASC, created_at ASC`

	if err := r.db.SelectContext(ctx, &events, query, date); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PostgresEventRepository) List(ctx context.Context) ([]*domain.ScheduledEvent, error) {
	events := []*domain.ScheduledEvent{}

	query := `SELECT * FROM scheduled_events ORDER BY date ASC, time ASC`

	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PostgresEventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scheduled_events WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}
