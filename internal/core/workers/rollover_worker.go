package workers

import (
	"context"
	"log"
	"time"

	"github.com/grovelab/grove-engine/internal/core/domain"
)

// MissionRoller is the slice of MissionService the worker needs.
type MissionRoller interface {
	EnsureDailyBatch(ctx context.Context, userID string) error
}

// RolloverWorker replaces stale mission batches at local midnight for
// users who were active during the day. Request paths already roll
// batches lazily; the worker keeps countdowns and next-morning reads
// fresh without waiting for the first request of the day.
type RolloverWorker struct {
	missions MissionRoller
	clock    domain.Clock
	jobs     chan string
	active   map[string]struct{}
}

func NewRolloverWorker(missions MissionRoller, clock domain.Clock) *RolloverWorker {
	return &RolloverWorker{
		missions: missions,
		clock:    clock,
		jobs:     make(chan string, 100),
		active:   make(map[string]struct{}),
	}
}

func (w *RolloverWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Rollover Worker started in background...")

		timer := time.NewTimer(w.untilMidnight())
		defer timer.Stop()

		for {
			select {
			case userID := <-w.jobs:
				w.active[userID] = struct{}{}
			case <-timer.C:
				w.rollAll(ctx)
				timer.Reset(w.untilMidnight())
			case <-ctx.Done():
				log.Println("Rollover Worker shutting down...")
				return
			}
		}
	}()
}

// Enqueue marks a user as active today. Non-blocking; when the queue is
// full the user simply rolls over lazily on their next request.
func (w *RolloverWorker) Enqueue(userID string) {
	select {
	case w.jobs <- userID:
	default:
		log.Printf("Rollover Worker queue full! Dropping activity mark for user %s", userID)
	}
}

func (w *RolloverWorker) untilMidnight() time.Duration {
	now := w.clock.Now()
	return domain.NextMidnight(now).Sub(now)
}

func (w *RolloverWorker) rollAll(ctx context.Context) {
	for userID := range w.active {
		if err := w.missions.EnsureDailyBatch(ctx, userID); err != nil {
			log.Printf("Worker failed to roll missions for user %s: %v", userID, err)
			continue
		}
		delete(w.active, userID)
	}
}
