// Package scheduler drives the fixture sync cadence.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"betpool/backend/internal/config"
	"betpool/backend/internal/leaderboard"
	"betpool/backend/internal/metrics"
	matchsync "betpool/backend/internal/sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler manages the background sync tasks:
// - Full fixture sync on a daily cron
// - Live sync on a frequent tick, gated by the local pre-check so the
//   provider is only called when a match is near kickoff
type Scheduler struct {
	cfg         *config.Config
	sync        *matchsync.Service
	leaderboard *leaderboard.Service
	cron        *cron.Cron
	ticker      *time.Ticker
	stopChan    chan struct{}
}

// NewScheduler creates a new scheduler instance
// The leaderboard service is refreshed after syncs that move points
func NewScheduler(cfg *config.Config, sync *matchsync.Service, lb *leaderboard.Service) *Scheduler {
	return &Scheduler{
		cfg:         cfg,
		sync:        sync,
		leaderboard: lb,
		cron:        cron.New(),
		stopChan:    make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	// Daily full sync cron job
	if _, err := s.cron.AddFunc(s.cfg.FullSyncCron, func() {
		log.Info().Msg("Running daily full sync...")
		if _, err := s.sync.SyncAllFixtures(ctx); err != nil {
			log.Error().Err(err).Msg("Daily full sync failed")
			metrics.RecordError("scheduler", "full_sync")
			return
		}
		s.refreshLeaderboard(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule full sync: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.FullSyncCron).
		Msg("Daily full sync scheduled")

	// Live sync ticker; each tick pre-checks locally before touching the API
	interval := time.Duration(s.cfg.LiveSyncInterval) * time.Second
	s.ticker = time.NewTicker(interval)
	log.Info().
		Dur("interval", interval).
		Msg("Live sync polling started")

	go s.pollLiveMatches(ctx)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// pollLiveMatches runs the live sync tick until stopped
func (s *Scheduler) pollLiveMatches(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping live sync polling")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping live sync polling")
			return
		case <-s.ticker.C:
			if err := s.runLiveTick(ctx); err != nil {
				log.Error().Err(err).Msg("Live sync tick failed")
				metrics.RecordError("scheduler", "live_sync")
			}
		}
	}
}

// runLiveTick performs one live sync cycle: pre-check, then targeted sync
func (s *Scheduler) runLiveTick(ctx context.Context) error {
	check, err := s.sync.ShouldSyncLiveMatches(ctx)
	if err != nil {
		return fmt.Errorf("live pre-check failed: %w", err)
	}

	if !check.ShouldSync {
		metrics.RecordLiveCheckSkipped()
		log.Debug().Msg("No matches in live window, skipping provider call")
		return nil
	}

	log.Info().
		Int("candidates", len(check.MatchIDs)).
		Msg("Matches in live window, syncing")

	result, err := s.sync.SyncLiveMatches(ctx, check.MatchIDs)
	if err != nil {
		return fmt.Errorf("live sync failed: %w", err)
	}

	if result.Updated > 0 {
		s.refreshLeaderboard(ctx)
	}

	log.Info().
		Int("updated", result.Updated).
		Bool("api_call_made", result.APICallMade).
		Msg("Live sync tick complete")

	return nil
}

// refreshLeaderboard rebuilds the cached standings after points moved
func (s *Scheduler) refreshLeaderboard(ctx context.Context) {
	if s.leaderboard == nil {
		return
	}
	if err := s.leaderboard.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("Leaderboard refresh failed")
	}
}
