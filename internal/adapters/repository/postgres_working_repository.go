package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

type PostgresWorkingRepository struct {
	db *sqlx.DB
}

func NewPostgresWorkingRepository(db *sqlx.DB) *PostgresWorkingRepository {
	return &PostgresWorkingRepository{db: db}
}

func (r *PostgresWorkingRepository) Create(ctx context.Context, working *domain.WorkingGoal) error {
	query := `
		INSERT INTO workings (
			id, name, intention, duration, days_completed, status, start_date, created_at, updated_at
		) VALUES (
			:id, :name, :intention, :duration, :days_completed, :status, :start_date, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, working)
	return err
}

func (r *PostgresWorkingRepository) GetByID(ctx context.Context, id string) (*domain.WorkingGoal, error) {
	var working domain.WorkingGoal

	err := r.db.GetContext(ctx, &working, `SELECT * FROM workings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWorkingNotFound
		}
		return nil, err
	}
	return &working, nil
}

func (r *PostgresWorkingRepository) List(ctx context.Context) ([]*domain.WorkingGoal, error) {
	workings := []*domain.WorkingGoal{}

	err := r.db.SelectContext(ctx, &workings, `SELECT * FROM workings ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	return workings, nil
}

func (r *PostgresWorkingRepository) Update(ctx context.Context, working *domain.WorkingGoal) error {
	query := `
		UPDATE workings SET
			name=:name, intention=:intention, duration=:duration,
			days_completed=:days_completed, status=:status,
			start_date=:start_date, updated_at=:updated_at
		WHERE id=:id`

	res, err := r.db.NamedExecContext(ctx, query, working)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrWorkingNotFound
	}
	return nil
}

func (r *PostgresWorkingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM workings WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrWorkingNotFound
	}
	return nil
}
