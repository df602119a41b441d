package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

type PostgresMasteryRepository struct {
	db *sqlx.DB
}

func NewPostgresMasteryRepository(db *sqlx.DB) *PostgresMasteryRepository {
	return &PostgresMasteryRepository{db: db}
}

func (r *PostgresMasteryRepository) Create(ctx context.Context, goal *domain.MasteryGoal) error {
	query := `
		INSERT INTO mastery_goals (
			id, name, type, goal_units, current_units, color, created_at, updated_at
		) VALUES (
			:id, :name, :type, :goal_units, :current_units, :color, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, goal)
	return err
}

func (r *PostgresMasteryRepository) GetByID(ctx context.Context, id string) (*domain.MasteryGoal, error) {
	var goal domain.MasteryGoal

	err := r.db.GetContext(ctx, &goal, `SELECT * FROM mastery_goals WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMasteryNotFound
		}
		return nil, err
	}
	return &goal, nil
}

func (r *PostgresMasteryRepository) List(ctx context.Context) ([]*domain.MasteryGoal, error) {
	goals := []*domain.MasteryGoal{}

	err := r.db.SelectContext(ctx, &goals, `SELECT * FROM mastery_goals ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *PostgresMasteryRepository) Update(ctx context.Context, goal *domain.MasteryGoal) error {
	query := `
		UPDATE mastery_goals SET
			name=:name, type=:type, goal_units=:goal_units,
			current_units=:current_units, color=:color, updated_at=:updated_at
		WHERE id=:id`

	res, err := r.db.NamedExecContext(ctx, query, goal)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMasteryNotFound
	}
	return nil
}

func (r *PostgresMasteryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mastery_goals WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMasteryNotFound
	}
	return nil
}
