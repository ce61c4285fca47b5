package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grovelab/grove-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

const habitColumns = `id, user_id, name, current_streak, last_completed_date, completed_for_mission, created_at, updated_at`

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	query := `
        INSERT INTO habits (` + habitColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := ext(ctx, r.db).ExecContext(ctx, query,
		h.ID, h.UserID, h.Name,
		h.CurrentStreak, h.LastCompletedDate, h.CompletedForMission,
		h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: insert habit failed: %w", err)
	}

	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1`

	var h domain.Habit
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &h, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("repository: get habit failed: %w", err)
	}

	return &h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1 ORDER BY name ASC`

	var habits []*domain.Habit
	if err := sqlx.SelectContext(ctx, ext(ctx, r.db), &habits, query, userID); err != nil {
		return nil, fmt.Errorf("repository: list habits failed: %w", err)
	}

	return habits, nil
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	query := `
        UPDATE habits
        SET name = $1, current_streak = $2, last_completed_date = $3,
            completed_for_mission = $4, updated_at = $5
        WHERE id = $6`

	res, err := ext(ctx, r.db).ExecContext(ctx, query,
		h.Name, h.CurrentStreak, h.LastCompletedDate,
		h.CompletedForMission, h.UpdatedAt,
		h.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: update habit failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	res, err := ext(ctx, r.db).ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: delete habit failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *PostgresHabitRepository) ClearMissionFlags(ctx context.Context, userID string) error {
	query := `UPDATE habits SET completed_for_mission = FALSE WHERE user_id = $1`

	if _, err := ext(ctx, r.db).ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("repository: clear mission flags failed: %w", err)
	}

	return nil
}
