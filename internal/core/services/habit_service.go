package services

import (
	"context"
	"fmt"

	"github.com/grovelab/grove-engine/internal/core/domain"
)

type HabitService struct {
	habitRepo   domain.HabitRepository
	missionRepo domain.MissionRepository
	missions    *MissionService
	atomic      domain.Atomic
	clock       domain.Clock
}

func NewHabitService(habitRepo domain.HabitRepository, missionRepo domain.MissionRepository, missions *MissionService, atomic domain.Atomic, clock domain.Clock) *HabitService {
	return &HabitService{
		habitRepo:   habitRepo,
		missionRepo: missionRepo,
		missions:    missions,
		atomic:      atomic,
		clock:       clock,
	}
}

type CreateHabitInput struct {
	UserID string
	Name   string
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	habit, err := domain.NewHabit(input.UserID, input.Name)
	if err != nil {
		return nil, err
	}

	if err := s.habitRepo.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("habit service: create failed: %w", err)
	}

	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.habitRepo.ListByUserID(ctx, userID)
}

// Rename changes a habit's name. Streak state is untouched.
func (s *HabitService) Rename(ctx context.Context, id, userID, name string) (*domain.Habit, error) {
	habit, err := s.habitRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	if err := habit.Rename(name, s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.habitRepo.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("habit service: rename failed: %w", err)
	}

	return habit, nil
}

// Toggle flips today's completion state of a habit and folds the result
// into the current mission batch. The streak change, the consumed
// mission flags and the mission counters commit in one transaction, so a
// crash cannot leave a completion counted but not stored (or the other
// way around).
func (s *HabitService) Toggle(ctx context.Context, habitID, userID string) (*domain.Habit, error) {
	// The batch must belong to today before progress lands in it.
	if err := s.missions.EnsureDailyBatch(ctx, userID); err != nil {
		return nil, err
	}

	now := s.clock.Now()

	var toggled *domain.Habit
	err := s.atomic.RunAtomic(ctx, func(ctx context.Context) error {
		habit, err := s.habitRepo.GetByID(ctx, habitID)
		if err != nil {
			return err
		}
		if habit.UserID != userID {
			return domain.ErrHabitNotFound
		}

		habit.ToggleCompletion(now)
		if err := s.habitRepo.Update(ctx, habit); err != nil {
			return err
		}

		habits, err := s.habitRepo.ListByUserID(ctx, userID)
		if err != nil {
			return err
		}
		for i, h := range habits {
			if h.ID == habit.ID {
				habits[i] = habit
			}
		}

		missions, err := s.missionRepo.ListByUserID(ctx, userID)
		if err != nil {
			return err
		}

		counted := domain.ApplyProgress(missions, habits, now)
		for _, h := range counted {
			if err := s.habitRepo.Update(ctx, h); err != nil {
				return err
			}
		}
		if len(counted) > 0 {
			for _, m := range missions {
				if err := s.missionRepo.Update(ctx, m); err != nil {
					return err
				}
			}
		}

		toggled = habit
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toggled, nil
}

func (s *HabitService) Delete(ctx context.Context, id string, userID string) error {
	habit, err := s.habitRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if habit.UserID != userID {
		return domain.ErrHabitNotFound
	}

	return s.habitRepo.Delete(ctx, id)
}
