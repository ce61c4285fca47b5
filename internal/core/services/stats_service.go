package services

import (
	"context"

	"github.com/grovelab/grove-engine/internal/core/domain"
)

type StatsService struct {
	habitRepo domain.HabitRepository
	clock     domain.Clock
}

func NewStatsService(habitRepo domain.HabitRepository, clock domain.Clock) *StatsService {
	return &StatsService{
		habitRepo: habitRepo,
		clock:     clock,
	}
}

// Summary reports how many habits were completed within the timeframe
// containing now. "Completed" means the last completion falls inside the
// frame; the model keeps no per-day log, so this mirrors what the app
// can actually show.
func (s *StatsService) Summary(ctx context.Context, userID string, frame domain.Timeframe) (*domain.StatsSummary, error) {
	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	start := frame.Start(now)

	summary := &domain.StatsSummary{
		Timeframe:   frame,
		TotalHabits: len(habits),
		Habits:      make([]domain.HabitStat, 0, len(habits)),
	}

	for _, h := range habits {
		completed := h.LastCompletedDate != nil && !h.LastCompletedDate.Before(start)
		if completed {
			summary.Completed++
		}

		summary.Habits = append(summary.Habits, domain.HabitStat{
			HabitID:       h.ID,
			Name:          h.Name,
			CurrentStreak: h.CurrentStreak,
			Completed:     completed,
		})
	}

	if summary.TotalHabits > 0 {
		summary.CompletionRate = float64(summary.Completed) / float64(summary.TotalHabits) * 100
	}

	return summary, nil
}
