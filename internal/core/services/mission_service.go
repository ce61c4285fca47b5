package services

import (
	"context"
	"fmt"
	"time"

	"github.com/grovelab/grove-engine/internal/core/domain"
)

type MissionService struct {
	missionRepo domain.MissionRepository
	habitRepo   domain.HabitRepository
	userRepo    domain.UserRepository
	atomic      domain.Atomic
	clock       domain.Clock
}

func NewMissionService(missionRepo domain.MissionRepository, habitRepo domain.HabitRepository, userRepo domain.UserRepository, atomic domain.Atomic, clock domain.Clock) *MissionService {
	return &MissionService{
		missionRepo: missionRepo,
		habitRepo:   habitRepo,
		userRepo:    userRepo,
		atomic:      atomic,
		clock:       clock,
	}
}

// EnsureDailyBatch makes the user's mission batch belong to today. A
// stale batch (or a missing one on first run) is replaced whole; a
// current batch is left alone.
func (s *MissionService) EnsureDailyBatch(ctx context.Context, userID string) error {
	now := s.clock.Now()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	missions, err := s.missionRepo.ListByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if user.MissionBatchCurrent(now) && len(missions) > 0 {
		return nil
	}

	return s.replaceBatch(ctx, user, now)
}

// Reset forces a fresh batch regardless of the date, mirroring the
// manual reset in the app. Progress and unclaimed rewards of the current
// batch are lost.
func (s *MissionService) Reset(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	return s.replaceBatch(ctx, user, s.clock.Now())
}

// replaceBatch deletes the old missions, clears every habit's mission
// flag, regenerates the ladder from the current habit count and stamps
// the reset date in one transaction, so the user can never observe half
// a rollover.
func (s *MissionService) replaceBatch(ctx context.Context, user *domain.User, now time.Time) error {
	return s.atomic.RunAtomic(ctx, func(ctx context.Context) error {
		if err := s.missionRepo.DeleteByUserID(ctx, user.ID); err != nil {
			return err
		}
		if err := s.habitRepo.ClearMissionFlags(ctx, user.ID); err != nil {
			return err
		}

		habits, err := s.habitRepo.ListByUserID(ctx, user.ID)
		if err != nil {
			return err
		}

		batch := domain.GenerateMissions(user.ID, len(habits), now)
		if err := s.missionRepo.CreateBatch(ctx, batch); err != nil {
			return err
		}

		today := domain.StartOfDay(now)
		user.LastMissionReset = &today
		if err := s.userRepo.UpdateWallet(ctx, user); err != nil {
			return err
		}

		return nil
	})
}

// List returns today's batch, rolling it over first when a new day has
// started since the last call.
func (s *MissionService) List(ctx context.Context, userID string) ([]*domain.DailyMission, error) {
	if err := s.EnsureDailyBatch(ctx, userID); err != nil {
		return nil, err
	}

	return s.missionRepo.ListByUserID(ctx, userID)
}

type ClaimResult struct {
	Mission  *domain.DailyMission
	Diamonds int
}

// Claim collects a completed mission's reward. The claim flag and the
// wallet credit commit in the same transaction; a stale mission from a
// previous day is replaced by the rollover check and can no longer pay
// out.
func (s *MissionService) Claim(ctx context.Context, missionID, userID string) (*ClaimResult, error) {
	if err := s.EnsureDailyBatch(ctx, userID); err != nil {
		return nil, err
	}

	now := s.clock.Now()

	var result *ClaimResult
	err := s.atomic.RunAtomic(ctx, func(ctx context.Context) error {
		mission, err := s.missionRepo.GetByID(ctx, missionID)
		if err != nil {
			return err
		}
		if mission.UserID != userID {
			return domain.ErrMissionNotFound
		}

		if err := mission.Claim(now); err != nil {
			return err
		}

		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := user.Credit(mission.Reward); err != nil {
			return err
		}

		if err := s.missionRepo.Update(ctx, mission); err != nil {
			return err
		}
		if err := s.userRepo.UpdateWallet(ctx, user); err != nil {
			return err
		}

		result = &ClaimResult{Mission: mission, Diamonds: user.Diamonds}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mission service: claim: %w", err)
	}

	return result, nil
}

// NextRollover reports how long until the batch rolls over at local
// midnight. Cosmetic countdown for the UI.
func (s *MissionService) NextRollover() time.Duration {
	now := s.clock.Now()
	return domain.NextMidnight(now).Sub(now)
}
