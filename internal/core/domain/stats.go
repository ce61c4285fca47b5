package domain

import (
	"errors"
	"time"
)

var ErrInvalidTimeframe = errors.New("invalid timeframe (must be day, week, or month)")

type Timeframe string

const (
	TimeframeDay   Timeframe = "day"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
)

func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case TimeframeDay, TimeframeWeek, TimeframeMonth:
		return Timeframe(s), nil
	case "":
		return TimeframeDay, nil
	}
	return "", ErrInvalidTimeframe
}

// Start returns the beginning of the timeframe containing now. Weeks
// start on Monday.
func (f Timeframe) Start(now time.Time) time.Time {
	switch f {
	case TimeframeWeek:
		day := StartOfDay(now)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case TimeframeMonth:
		y, m, _ := now.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	default:
		return StartOfDay(now)
	}
}

type HabitStat struct {
	HabitID       string `json:"habit_id"`
	Name          string `json:"name"`
	CurrentStreak int    `json:"current_streak"`
	Completed     bool   `json:"completed"`
}

type StatsSummary struct {
	Timeframe      Timeframe   `json:"timeframe"`
	TotalHabits    int         `json:"total_habits"`
	Completed      int         `json:"completed"`
	CompletionRate float64     `json:"completion_rate"`
	Habits         []HabitStat `json:"habits"`
}
