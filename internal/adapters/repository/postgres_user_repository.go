package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grovelab/grove-engine/internal/core/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const pgUniqueViolation = "23505"

type PostgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, diamonds, last_mission_reset, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := ext(ctx, r.db).ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Diamonds,
		user.LastMissionReset,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("repository: create user failed: %w", err)
	}

	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, diamonds, last_mission_reset, created_at, updated_at
		FROM users
		WHERE id = $1`

	return r.scanOne(ext(ctx, r.db).QueryRowxContext(ctx, query, id))
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, diamonds, last_mission_reset, created_at, updated_at
		FROM users
		WHERE email = $1`

	return r.scanOne(ext(ctx, r.db).QueryRowxContext(ctx, query, email))
}

func (r *PostgresUserRepository) UpdateWallet(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET diamonds = $1, last_mission_reset = $2, updated_at = $3
		WHERE id = $4`

	res, err := ext(ctx, r.db).ExecContext(ctx, query,
		user.Diamonds,
		user.LastMissionReset,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: update wallet failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

func (r *PostgresUserRepository) scanOne(row *sqlx.Row) (*domain.User, error) {
	var user domain.User

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Diamonds,
		&user.LastMissionReset,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: scan user failed: %w", err)
	}

	return &user, nil
}
