package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresFlowRepository struct {
	db *sqlx.DB
}

func NewPostgresFlowRepository(db *sqlx.DB) *PostgresFlowRepository {
	return &PostgresFlowRepository{db: db}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresFlowRepository) scanRow(row scannable) (*domain.Flow, error) {
	var f domain.Flow
	var stepsJSON, scheduleJSON []byte
	var completedDates pq.StringArray

	err := row.Scan(
		&f.ID, &f.Title, &f.Description, &f.CoverImage,
		&stepsJSON, &scheduleJSON, &f.MasteryID,
		&completedDates, &f.SortOrder,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(stepsJSON) > 0 {
		if err := json.Unmarshal(stepsJSON, &f.Steps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
		}
	}
	if len(scheduleJSON) > 0 {
		if err := json.Unmarshal(scheduleJSON, &f.Schedule); err != nil {
			return nil, fmt.Errorf("failed to unmarshal schedule: %w", err)
		}
	}

	f.CompletedDates = []string(completedDates)
	if f.CompletedDates == nil {
		f.CompletedDates = []string{}
	}

	return &f, nil
}

func (r *PostgresFlowRepository) marshalParts(f *domain.Flow) ([]byte, []byte, error) {
	stepsJSON, err := json.Marshal(f.Steps)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal steps: %w", err)
	}
	scheduleJSON, err := json.Marshal(f.Schedule)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal schedule: %w", err)
	}
	return stepsJSON, scheduleJSON, nil
}

func (r *PostgresFlowRepository) Create(ctx context.Context, f *domain.Flow) error {
	stepsJSON, scheduleJSON, err := r.marshalParts(f)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO flows (
            id, title, description, cover_image,
            steps, schedule, mastery_id,
            completed_dates, sort_order,
            created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4,
            $5, $6, $7,
            $8, $9,
            $10, $11
        )`

	_, err = r.db.ExecContext(ctx, query,
		f.ID, f.Title, f.Description, f.CoverImage,
		stepsJSON, scheduleJSON, f.MasteryID,
		pq.Array(f.CompletedDates), f.SortOrder,
		f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert flow: %w", err)
	}
	return nil
}

func (r *PostgresFlowRepository) GetByID(ctx context.Context, id string) (*domain.Flow, error) {
	query := `SELECT * FROM flows WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	f, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFlowNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return f, nil
}

func (r *PostgresFlowRepository) List(ctx context.Context) ([]*domain.Flow, error) {
	query := `SELECT * FROM flows ORDER BY sort_order ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var flows []*domain.Flow

	for rows.Next() {
		f, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		flows = append(flows, f)
	}

	return flows, nil
}

func (r *PostgresFlowRepository) Update(ctx context.Context, f *domain.Flow) error {
	stepsJSON, scheduleJSON, err := r.marshalParts(f)
	if err != nil {
		return err
	}

	query := `
        UPDATE flows SET
            title=$1, description=$2, cover_image=$3,
            steps=$4, schedule=$5, mastery_id=$6,
            completed_dates=$7, sort_order=$8,
            updated_at=$9
        WHERE id=$10`

	res, err := r.db.ExecContext(ctx, query,
		f.Title, f.Description, f.CoverImage,
		stepsJSON, scheduleJSON, f.MasteryID,
		pq.Array(f.CompletedDates), f.SortOrder,
		f.UpdatedAt,
		f.ID,
	)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrFlowNotFound
	}

	return nil
}

func (r *PostgresFlowRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM flows WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrFlowNotFound
	}

	return nil
}
