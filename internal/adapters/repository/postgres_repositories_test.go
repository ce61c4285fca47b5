package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovelab/grove-engine/internal/core/domain"
)

const testSchema = `
CREATE TABLE IF NOT EXISTS users (
    id                 TEXT PRIMARY KEY,
    email              TEXT NOT NULL UNIQUE,
    password_hash      TEXT NOT NULL,
    diamonds           INTEGER NOT NULL DEFAULT 0,
    last_mission_reset TIMESTAMPTZ,
    created_at         TIMESTAMPTZ NOT NULL,
    updated_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS habits (
    id                    TEXT PRIMARY KEY,
    user_id               TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name                  TEXT NOT NULL,
    current_streak        INTEGER NOT NULL DEFAULT 0,
    last_completed_date   TIMESTAMPTZ,
    completed_for_mission BOOLEAN NOT NULL DEFAULT FALSE,
    created_at            TIMESTAMPTZ NOT NULL,
    updated_at            TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS daily_missions (
    id                TEXT PRIMARY KEY,
    user_id           TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    description       TEXT NOT NULL,
    required_count    INTEGER NOT NULL,
    completed_count   INTEGER NOT NULL DEFAULT 0,
    reward            INTEGER NOT NULL,
    is_completed      BOOLEAN NOT NULL DEFAULT FALSE,
    is_reward_claimed BOOLEAN NOT NULL DEFAULT FALSE,
    creation_date     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS planted_flowers (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    position     INTEGER NOT NULL,
    flower_type  TEXT NOT NULL,
    emoji        TEXT NOT NULL,
    planted_date TIMESTAMPTZ NOT NULL,
    UNIQUE (user_id, position)
);`

func setupTestDB(t *testing.T) *sqlx.DB {
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		dbUser = "grove_user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "secret"
	}
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "grove_db"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}

	_, err = db.Exec(testSchema)
	require.NoError(t, err, "Failed to apply schema")

	return db
}

func cleanup(t *testing.T, db *sqlx.DB) {
	_, err := db.Exec("TRUNCATE TABLE planted_flowers, daily_missions, habits, users CASCADE")
	require.NoError(t, err, "Failed to clean up database")
}

func seedUser(t *testing.T, repo *PostgresUserRepository) *domain.User {
	user, err := domain.NewUser(uuid.NewString(), fmt.Sprintf("%s@example.com", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestPostgresUserRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	cleanup(t, db)

	repo := NewPostgresUserRepository(db)
	ctx := context.Background()

	t.Run("Create and fetch back", func(t *testing.T) {
		user := seedUser(t, repo)

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
		assert.Equal(t, 0, got.Diamonds)

		got, err = repo.GetByEmail(ctx, user.Email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("Duplicate email maps to ErrEmailAlreadyExists", func(t *testing.T) {
		user := seedUser(t, repo)

		dup, err := domain.NewUser(uuid.NewString(), user.Email)
		require.NoError(t, err)
		require.NoError(t, dup.SetPassword("password123"))

		err = repo.Create(ctx, dup)
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})

	t.Run("UpdateWallet persists diamonds and reset marker", func(t *testing.T) {
		user := seedUser(t, repo)

		require.NoError(t, user.Credit(25))
		today := domain.StartOfDay(time.Now())
		user.LastMissionReset = &today

		require.NoError(t, repo.UpdateWallet(ctx, user))

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 25, got.Diamonds)
		require.NotNil(t, got.LastMissionReset)
		assert.True(t, domain.SameDay(*got.LastMissionReset, today))
	})

	t.Run("GetByID: unknown id maps to ErrUserNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestPostgresHabitRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	cleanup(t, db)

	userRepo := NewPostgresUserRepository(db)
	repo := NewPostgresHabitRepository(db)
	ctx := context.Background()

	user := seedUser(t, userRepo)

	t.Run("Create, update and clear mission flags", func(t *testing.T) {
		habit, err := domain.NewHabit(user.ID, "Morning run")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, habit))

		habit.ToggleCompletion(time.Now())
		habit.CompletedForMission = true
		require.NoError(t, repo.Update(ctx, habit))

		got, err := repo.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.CurrentStreak)
		assert.True(t, got.CompletedForMission)

		require.NoError(t, repo.ClearMissionFlags(ctx, user.ID))

		got, err = repo.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		assert.False(t, got.CompletedForMission)
		assert.Equal(t, 1, got.CurrentStreak)
	})

	t.Run("Delete: unknown id maps to ErrHabitNotFound", func(t *testing.T) {
		err := repo.Delete(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})
}

func TestPostgresMissionRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	cleanup(t, db)

	userRepo := NewPostgresUserRepository(db)
	repo := NewPostgresMissionRepository(db)
	ctx := context.Background()

	user := seedUser(t, userRepo)

	t.Run("Batch lifecycle", func(t *testing.T) {
		batch := domain.GenerateMissions(user.ID, 4, time.Now())
		require.NoError(t, repo.CreateBatch(ctx, batch))

		missions, err := repo.ListByUserID(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, missions, 4)
		assert.Equal(t, 1, missions[0].RequiredCount)

		missions[0].CompletedCount = 1
		missions[0].IsCompleted = true
		require.NoError(t, repo.Update(ctx, missions[0]))

		got, err := repo.GetByID(ctx, missions[0].ID)
		require.NoError(t, err)
		assert.True(t, got.IsCompleted)

		require.NoError(t, repo.DeleteByUserID(ctx, user.ID))

		missions, err = repo.ListByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, missions)
	})
}

func TestPostgresGardenRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	cleanup(t, db)

	userRepo := NewPostgresUserRepository(db)
	repo := NewPostgresGardenRepository(db)
	ctx := context.Background()

	user := seedUser(t, userRepo)

	t.Run("Plant and read back by slot", func(t *testing.T) {
		spec, err := domain.FlowerSpecFor(domain.FlowerLeaf)
		require.NoError(t, err)

		flower, err := domain.NewPlantedFlower(user.ID, 3, spec, time.Now())
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, flower))

		got, err := repo.GetBySlot(ctx, user.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, domain.FlowerLeaf, got.Type)

		_, err = repo.GetBySlot(ctx, user.ID, 4)
		assert.ErrorIs(t, err, domain.ErrFlowerNotFound)
	})

	t.Run("Same slot twice maps to ErrSlotOccupied", func(t *testing.T) {
		spec, err := domain.FlowerSpecFor(domain.FlowerShrub)
		require.NoError(t, err)

		first, err := domain.NewPlantedFlower(user.ID, 7, spec, time.Now())
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, first))

		second, err := domain.NewPlantedFlower(user.ID, 7, spec, time.Now())
		require.NoError(t, err)

		err = repo.Create(ctx, second)
		assert.ErrorIs(t, err, domain.ErrSlotOccupied)
	})
}

func TestSqlxAtomic_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	cleanup(t, db)

	userRepo := NewPostgresUserRepository(db)
	gardenRepo := NewPostgresGardenRepository(db)
	atomic := NewSqlxAtomic(db)
	ctx := context.Background()

	user := seedUser(t, userRepo)

	t.Run("Rollback leaves no partial state", func(t *testing.T) {
		spec, err := domain.FlowerSpecFor(domain.FlowerLeaf)
		require.NoError(t, err)

		boom := fmt.Errorf("boom")
		err = atomic.RunAtomic(ctx, func(ctx context.Context) error {
			flower, err := domain.NewPlantedFlower(user.ID, 0, spec, time.Now())
			if err != nil {
				return err
			}
			if err := gardenRepo.Create(ctx, flower); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = gardenRepo.GetBySlot(ctx, user.ID, 0)
		assert.ErrorIs(t, err, domain.ErrFlowerNotFound)
	})

	t.Run("Commit makes writes visible", func(t *testing.T) {
		spec, err := domain.FlowerSpecFor(domain.FlowerLeaf)
		require.NoError(t, err)

		err = atomic.RunAtomic(ctx, func(ctx context.Context) error {
			flower, err := domain.NewPlantedFlower(user.ID, 1, spec, time.Now())
			if err != nil {
				return err
			}
			return gardenRepo.Create(ctx, flower)
		})
		require.NoError(t, err)

		got, err := gardenRepo.GetBySlot(ctx, user.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.FlowerLeaf, got.Type)
	})
}
