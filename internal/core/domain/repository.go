package domain

import (
	"context"
	"errors"
)

// ErrPersistenceFailure wraps storage errors that reach the domain
// boundary: the write did not complete and no partial state was kept.
var ErrPersistenceFailure = errors.New("persistence failure")

// Atomic runs fn inside one all-or-nothing storage transaction. Every
// repository call made with the ctx passed to fn joins that transaction,
// so a wallet debit and the flower it paid for (or a claim and its
// credit) commit together or not at all.
type Atomic interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdateWallet persists diamonds and the mission reset marker.
	UpdateWallet(ctx context.Context, user *User) error
}

type HabitRepository interface {
	Create(ctx context.Context, habit *Habit) error
	GetByID(ctx context.Context, id string) (*Habit, error)
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)
	Update(ctx context.Context, habit *Habit) error
	Delete(ctx context.Context, id string) error

	// ClearMissionFlags resets CompletedForMission for all of the
	// user's habits, as part of a batch rollover.
	ClearMissionFlags(ctx context.Context, userID string) error
}

type MissionRepository interface {
	CreateBatch(ctx context.Context, missions []*DailyMission) error
	GetByID(ctx context.Context, id string) (*DailyMission, error)
	ListByUserID(ctx context.Context, userID string) ([]*DailyMission, error)
	Update(ctx context.Context, mission *DailyMission) error

	// DeleteByUserID removes the user's whole batch. Missions are never
	// deleted individually.
	DeleteByUserID(ctx context.Context, userID string) error
}

type GardenRepository interface {
	Create(ctx context.Context, flower *PlantedFlower) error
	GetBySlot(ctx context.Context, userID string, position int) (*PlantedFlower, error)
	ListByUserID(ctx context.Context, userID string) ([]*PlantedFlower, error)
}

// ErrFlowerNotFound is returned by GetBySlot for an empty slot.
var ErrFlowerNotFound = errors.New("no flower at this slot")
