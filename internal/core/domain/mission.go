package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissionNotFound     = errors.New("mission not found")
	ErrMissionNotCompleted = errors.New("mission is not completed yet")
	ErrMissionClaimed      = errors.New("mission reward already claimed")
	ErrMissionExpired      = errors.New("mission belongs to a previous day")
)

// Mission rewards per tier, in diamonds.
const (
	rewardTier1 = 5
	rewardTier2 = 10
	rewardTier3 = 15
	rewardTier4 = 20
)

// DailyMission is one goal of the current day's batch. Batches are only
// ever replaced whole: a rollover deletes every mission of the previous
// day and generates a fresh ladder.
type DailyMission struct {
	ID          string `json:"id" db:"id"`
	UserID      string `json:"user_id" db:"user_id"`
	Description string `json:"description" db:"description"`

	RequiredCount   int  `json:"required_count" db:"required_count"`
	CompletedCount  int  `json:"completed_count" db:"completed_count"`
	Reward          int  `json:"reward" db:"reward"`
	IsCompleted     bool `json:"is_completed" db:"is_completed"`
	IsRewardClaimed bool `json:"is_reward_claimed" db:"is_reward_claimed"`

	CreationDate time.Time `json:"creation_date" db:"creation_date"`
}

func newMission(userID, description string, required, reward int, now time.Time) *DailyMission {
	return &DailyMission{
		ID:            uuid.NewString(),
		UserID:        userID,
		Description:   description,
		RequiredCount: required,
		Reward:        reward,
		CreationDate:  now,
	}
}

// GenerateMissions builds the daily ladder for a user with habitCount
// habits. The tier thresholds are proportional with per-tier floors, so a
// small habit list still gets achievable goals and a large one gets goals
// that scale with it.
func GenerateMissions(userID string, habitCount int, now time.Time) []*DailyMission {
	if habitCount == 0 {
		return []*DailyMission{
			newMission(userID, "Add your first habit", 1, rewardTier1, now),
		}
	}

	missions := []*DailyMission{
		newMission(userID,
			completeDescription(max(1, habitCount/4)),
			max(1, habitCount/4), rewardTier1, now),
	}

	if habitCount >= 2 {
		n := max(2, habitCount/2)
		missions = append(missions, newMission(userID, completeDescription(n), n, rewardTier2, now))
	}

	if habitCount >= 3 {
		n := max(3, habitCount*3/4)
		missions = append(missions, newMission(userID, completeDescription(n), n, rewardTier3, now))
	}

	if habitCount >= 4 {
		missions = append(missions, newMission(userID,
			fmt.Sprintf("Complete all %d habits", habitCount),
			habitCount, rewardTier4, now))
	}

	return missions
}

func completeDescription(n int) string {
	if n == 1 {
		return "Complete 1 habit"
	}
	return fmt.Sprintf("Complete %d habits", n)
}

// ApplyProgress advances every mission of the batch by the number of
// habits newly completed since the last call. Habits already consumed
// this epoch (CompletedForMission true) do not count again, so progress
// moves forward only: calling twice with no new completions changes
// nothing. Returns the habits whose mission flag was consumed.
func ApplyProgress(missions []*DailyMission, habits []*Habit, now time.Time) []*Habit {
	var counted []*Habit
	for _, h := range habits {
		if h.CompletedOn(now) && !h.CompletedForMission {
			h.CompletedForMission = true
			counted = append(counted, h)
		}
	}

	if len(counted) == 0 {
		return nil
	}

	for _, m := range missions {
		m.CompletedCount = min(m.CompletedCount+len(counted), m.RequiredCount)
		m.IsCompleted = m.CompletedCount >= m.RequiredCount
	}

	return counted
}

// Claim marks the reward as collected. It fails without mutating when
// the mission is unfinished, already claimed, or belongs to a day that
// has since rolled over; a stale claim never pays out against a new
// batch. Crediting the reward is the caller's job, in the same
// transaction.
func (m *DailyMission) Claim(now time.Time) error {
	if !SameDay(m.CreationDate, now) {
		return ErrMissionExpired
	}
	if !m.IsCompleted {
		return ErrMissionNotCompleted
	}
	if m.IsRewardClaimed {
		return ErrMissionClaimed
	}

	m.IsRewardClaimed = true
	return nil
}
