package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

// PostgresProgressRepository stores the ledger's single state
// container as one JSONB row. The engine is single-user, so a fixed
// key is enough.
type PostgresProgressRepository struct {
	db *sqlx.DB
}

const progressKey = "default"

func NewPostgresProgressRepository(db *sqlx.DB) *PostgresProgressRepository {
	return &PostgresProgressRepository{db: db}
}

func (r *PostgresProgressRepository) Get(ctx context.Context) (*domain.ProgressState, error) {
	var payload []byte

	err := r.db.QueryRowContext(ctx,
		`SELECT state FROM progress_state WHERE key = $1`, progressKey,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewProgressState(), nil
		}
		return nil, fmt.Errorf("progress query error: %w", err)
	}

	state := domain.NewProgressState()
	if err := json.Unmarshal(payload, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal progress state: %w", err)
	}
	if state.Progress == nil {
		state.Progress = domain.NewUserProgress()
	}
	if state.History == nil {
		state.History = make(map[string]*domain.DailyHistoryEntry)
	}

	return state, nil
}

func (r *PostgresProgressRepository) Save(ctx context.Context, state *domain.ProgressState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal progress state: %w", err)
	}

	query := `
		INSERT INTO progress_state (key, state, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET state = $2, updated_at = $3`

	if _, err := r.db.ExecContext(ctx, query, progressKey, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save progress state: %w", err)
	}
	return nil
}
