package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grovelab/grove-engine/internal/core/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

type PostgresGardenRepository struct {
	db *sqlx.DB
}

func NewPostgresGardenRepository(db *sqlx.DB) *PostgresGardenRepository {
	return &PostgresGardenRepository{db: db}
}

const flowerColumns = `id, user_id, position, flower_type, emoji, planted_date`

func (r *PostgresGardenRepository) Create(ctx context.Context, f *domain.PlantedFlower) error {
	query := `
        INSERT INTO planted_flowers (` + flowerColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := ext(ctx, r.db).ExecContext(ctx, query,
		f.ID, f.UserID, f.Position,
		f.Type, f.Emoji,
		f.PlantedDate,
	)
	if err != nil {
		// The (user_id, position) unique index is the last line of
		// defence against two concurrent plants on the same slot.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrSlotOccupied
		}
		return fmt.Errorf("repository: insert flower failed: %w", err)
	}

	return nil
}

func (r *PostgresGardenRepository) GetBySlot(ctx context.Context, userID string, position int) (*domain.PlantedFlower, error) {
	query := `SELECT ` + flowerColumns + ` FROM planted_flowers WHERE user_id = $1 AND position = $2`

	var f domain.PlantedFlower
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &f, query, userID, position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFlowerNotFound
		}
		return nil, fmt.Errorf("repository: get flower failed: %w", err)
	}

	return &f, nil
}

func (r *PostgresGardenRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.PlantedFlower, error) {
	query := `SELECT ` + flowerColumns + ` FROM planted_flowers WHERE user_id = $1 ORDER BY position ASC`

	var flowers []*domain.PlantedFlower
	if err := sqlx.SelectContext(ctx, ext(ctx, r.db), &flowers, query, userID); err != nil {
		return nil, fmt.Errorf("repository: list flowers failed: %w", err)
	}

	return flowers, nil
}
