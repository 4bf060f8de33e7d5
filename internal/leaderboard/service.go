// Package leaderboard serves the dense-ranked standings derived from bets.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"betpool/backend/internal/cache"
	"betpool/backend/internal/metrics"
	"betpool/backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Store is the aggregation query the service reads from
type Store interface {
	Leaderboard(ctx context.Context, limit, offset int) ([]*models.LeaderboardEntry, int, error)
}

// Cache is the optional read-through cache
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Result is one page of the leaderboard
type Result struct {
	Entries []*models.LeaderboardEntry `json:"entries"`
	Total   int                        `json:"total"`
}

// Service computes leaderboard pages, read-through cached
// The leaderboard is always derived from bets; nothing here is stored
type Service struct {
	store Store
	cache Cache // nil disables caching
	ttl   time.Duration
}

// NewService creates a leaderboard service; cache may be nil
func NewService(store Store, cache Cache, ttl time.Duration) *Service {
	return &Service{store: store, cache: cache, ttl: ttl}
}

// GetLeaderboard returns one page of standings. Ties in total points share a
// rank (dense ranking). Pages are cached briefly; points only move when a
// sync recalculates them, so short staleness is acceptable.
func (s *Service) GetLeaderboard(ctx context.Context, page, pageSize int) (*Result, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 25
	}
	offset := (page - 1) * pageSize

	key := fmt.Sprintf("leaderboard:%d:%d", page, pageSize)
	if s.cache != nil {
		var cached Result
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			metrics.RecordCacheHit()
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			// Degrade to the database on cache trouble
			log.Warn().Err(err).Msg("Leaderboard cache read failed")
		}
		metrics.RecordCacheMiss()
	}

	entries, total, err := s.store.Leaderboard(ctx, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}

	result := &Result{Entries: entries, Total: total}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.ttl); err != nil {
			log.Warn().Err(err).Msg("Leaderboard cache write failed")
		}
	}

	return result, nil
}

// Refresh recomputes the first page and replaces its cache entry. Called after
// a sync recalculates points; deeper pages age out on their TTL.
func (s *Service) Refresh(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	key := fmt.Sprintf("leaderboard:%d:%d", 1, 25)
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Msg("Leaderboard cache invalidation failed")
	}

	if _, err := s.GetLeaderboard(ctx, 1, 25); err != nil {
		return fmt.Errorf("failed to refresh leaderboard: %w", err)
	}

	return nil
}
