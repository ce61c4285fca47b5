package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grovelab/grove-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

type PostgresMissionRepository struct {
	db *sqlx.DB
}

func NewPostgresMissionRepository(db *sqlx.DB) *PostgresMissionRepository {
	return &PostgresMissionRepository{db: db}
}

const missionColumns = `id, user_id, description, required_count, completed_count, reward, is_completed, is_reward_claimed, creation_date`

// CreateBatch inserts a full day's missions. It is always called inside
// the rollover transaction that also deletes the previous batch.
func (r *PostgresMissionRepository) CreateBatch(ctx context.Context, missions []*domain.DailyMission) error {
	query := `
        INSERT INTO daily_missions (` + missionColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, m := range missions {
		_, err := ext(ctx, r.db).ExecContext(ctx, query,
			m.ID, m.UserID, m.Description,
			m.RequiredCount, m.CompletedCount, m.Reward,
			m.IsCompleted, m.IsRewardClaimed,
			m.CreationDate,
		)
		if err != nil {
			return fmt.Errorf("repository: insert mission failed: %w", err)
		}
	}

	return nil
}

func (r *PostgresMissionRepository) GetByID(ctx context.Context, id string) (*domain.DailyMission, error) {
	query := `SELECT ` + missionColumns + ` FROM daily_missions WHERE id = $1`

	var m domain.DailyMission
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMissionNotFound
		}
		return nil, fmt.Errorf("repository: get mission failed: %w", err)
	}

	return &m, nil
}

func (r *PostgresMissionRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.DailyMission, error) {
	query := `SELECT ` + missionColumns + ` FROM daily_missions WHERE user_id = $1 ORDER BY required_count ASC`

	var missions []*domain.DailyMission
	if err := sqlx.SelectContext(ctx, ext(ctx, r.db), &missions, query, userID); err != nil {
		return nil, fmt.Errorf("repository: list missions failed: %w", err)
	}

	return missions, nil
}

func (r *PostgresMissionRepository) Update(ctx context.Context, m *domain.DailyMission) error {
	query := `
        UPDATE daily_missions
        SET completed_count = $1, is_completed = $2, is_reward_claimed = $3
        WHERE id = $4`

	res, err := ext(ctx, r.db).ExecContext(ctx, query,
		m.CompletedCount, m.IsCompleted, m.IsRewardClaimed,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: update mission failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMissionNotFound
	}

	return nil
}

func (r *PostgresMissionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	query := `DELETE FROM daily_missions WHERE user_id = $1`

	if _, err := ext(ctx, r.db).ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("repository: delete missions failed: %w", err)
	}

	return nil
}
