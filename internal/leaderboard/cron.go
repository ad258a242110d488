package leaderboard

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler recomputes the leaderboard on a fixed interval so the cached
// board is never older than one refresh period plus one scan.
type Scheduler struct {
	svc      *Service
	interval time.Duration
	cron     *cron.Cron
}

func NewScheduler(svc *Service, interval time.Duration) *Scheduler {
	return &Scheduler{
		svc:      svc,
		interval: interval,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start begins the periodic refresh. An immediate first refresh warms the
// cache so the first viewer does not pay for the scan.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		refreshCtx, cancel := context.WithTimeout(ctx, s.interval)
		defer cancel()

		if _, err := s.svc.Refresh(refreshCtx); err != nil {
			log.Printf("[leaderboard] scheduled refresh failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule leaderboard refresh: %w", err)
	}

	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, s.interval)
		defer cancel()
		if _, err := s.svc.Refresh(warmCtx); err != nil {
			log.Printf("[leaderboard] initial refresh failed: %v", err)
		}
	}()

	s.cron.Start()
	log.Printf("[leaderboard] refresh scheduled every %s", s.interval)
	return nil
}

// Stop halts the periodic refresh and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
