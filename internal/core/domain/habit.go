package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrHabitNotFound      = errors.New("habit not found")
)

const MaxHabitNameLen = 100

// Habit keeps no per-day completion log: consecutive completions collapse
// into CurrentStreak plus LastCompletedDate. CompletedForMission tracks
// whether today's completion was already counted toward the daily mission
// batch and is cleared on every batch rollover.
//
// Invariant: CurrentStreak is 0 whenever LastCompletedDate is nil.
type Habit struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`
	Name   string `json:"name" db:"name"`

	CurrentStreak       int        `json:"current_streak" db:"current_streak"`
	LastCompletedDate   *time.Time `json:"last_completed_date,omitempty" db:"last_completed_date"`
	CompletedForMission bool       `json:"completed_for_mission" db:"completed_for_mission"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewHabit(userID, name string) (*Habit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrHabitNameEmpty
	}
	if len(trimmed) > MaxHabitNameLen {
		return nil, ErrHabitNameTooLong
	}

	now := time.Now().UTC()
	return &Habit{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          trimmed,
		CurrentStreak: 0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Rename validates and applies a new name.
func (h *Habit) Rename(name string, now time.Time) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrHabitNameEmpty
	}
	if len(trimmed) > MaxHabitNameLen {
		return ErrHabitNameTooLong
	}

	h.Name = trimmed
	h.UpdatedAt = now.UTC()
	return nil
}

// CompletedOn reports whether the habit was completed on the same
// calendar day as ref.
func (h *Habit) CompletedOn(ref time.Time) bool {
	return h.LastCompletedDate != nil && SameDay(*h.LastCompletedDate, ref)
}

// ToggleCompletion flips the habit's completion state for the calendar
// day of now.
//
// Completing extends the streak by one when the previous completion was
// yesterday, otherwise the streak restarts at 1. Toggling an
// already-completed habit is an undo: the completion date is cleared, the
// streak steps back by one (floor 0) and the mission flag resets so the
// habit can be counted again after a re-complete.
//
// Pure state transition; persisting the result is the caller's job and
// must happen in a single write together with any mission progress it
// triggers.
func (h *Habit) ToggleCompletion(now time.Time) {
	if h.CompletedOn(now) {
		h.CurrentStreak = max(0, h.CurrentStreak-1)
		h.LastCompletedDate = nil
		h.CompletedForMission = false
		h.UpdatedAt = now.UTC()
		return
	}

	if h.LastCompletedDate != nil && IsYesterday(*h.LastCompletedDate, now) {
		h.CurrentStreak++
	} else {
		h.CurrentStreak = 1
	}

	completed := now
	h.LastCompletedDate = &completed
	h.UpdatedAt = now.UTC()
}
