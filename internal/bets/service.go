// Package bets implements the bet gate and the points recalculation that
// follows score changes.
package bets

import (
	"context"
	"fmt"
	"time"

	"betpool/backend/internal/metrics"
	"betpool/backend/internal/models"
	"betpool/backend/internal/scoring"

	"github.com/rs/zerolog/log"
)

// MatchStore is the match lookup the gate needs
type MatchStore interface {
	// GetByID returns (nil, nil) when the match does not exist
	GetByID(ctx context.Context, id string) (*models.Match, error)
}

// BetStore is the bet persistence the service needs
type BetStore interface {
	GetByMatchID(ctx context.Context, matchID string) ([]*models.Bet, error)
	UpsertByUserAndMatch(ctx context.Context, userID, matchID string, homeScore, awayScore int, now time.Time) (*models.Bet, error)
	UpdatePointsByID(ctx context.Context, updates []models.BetPointsUpdate) error
}

// Service guards bet writes and recalculates awarded points
type Service struct {
	matches MatchStore
	bets    BetStore
}

// NewService creates a bet service with injected storage collaborators
func NewService(matches MatchStore, bets BetStore) *Service {
	return &Service{matches: matches, bets: bets}
}

// UpsertBet creates or replaces the caller's bet on a match.
//
// The write is gated twice: the match status must still allow betting
// (scheduled or live), and now must be strictly before the betting deadline
// (kickoff minus five minutes). Status is checked first. The upsert never
// touches points_awarded; that column belongs to UpdateMatchBetsPoints.
//
// Predicted scores must be non-negative; the API layer validates shape, this
// is the last line of defense for direct callers.
func (s *Service) UpsertBet(ctx context.Context, userID, matchID string, homeScore, awayScore int, now time.Time) (*models.Bet, error) {
	if homeScore < 0 || awayScore < 0 {
		return nil, fmt.Errorf("predicted scores must be non-negative: %d-%d", homeScore, awayScore)
	}

	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up match: %w", err)
	}
	if match == nil {
		return nil, fmt.Errorf("%w: id=%s", ErrMatchNotFound, matchID)
	}

	if !match.IsOpenForBetting() {
		metrics.RecordBetRejected("status")
		return nil, &LockedError{Reason: fmt.Sprintf("match status is %s, betting is closed", match.Status)}
	}

	deadline := match.BettingDeadline()
	if !now.Before(deadline) {
		metrics.RecordBetRejected("deadline")
		return nil, &LockedError{Reason: fmt.Sprintf("betting deadline has passed (%s)", deadline.Format(time.RFC3339))}
	}

	bet, err := s.bets.UpsertByUserAndMatch(ctx, userID, matchID, homeScore, awayScore, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert bet: %w", err)
	}

	metrics.RecordBetPlaced()
	log.Info().
		Str("bet_id", bet.ID).
		Str("user_id", userID).
		Str("match_id", matchID).
		Int("home", homeScore).
		Int("away", awayScore).
		Msg("Bet accepted")

	return bet, nil
}

// UpdateMatchBetsPoints recomputes points for every bet on a match against
// the given final (or current) score and persists them in one batch.
// Returns the number of bets updated. Idempotent: rerunning with the same
// score yields the same stored values.
func (s *Service) UpdateMatchBetsPoints(ctx context.Context, matchID string, homeScore, awayScore int) (int, error) {
	matchBets, err := s.bets.GetByMatchID(ctx, matchID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch bets for recalculation: %w", err)
	}

	if len(matchBets) == 0 {
		return 0, nil
	}

	updates := make([]models.BetPointsUpdate, len(matchBets))
	for i, bet := range matchBets {
		updates[i] = models.BetPointsUpdate{
			BetID:  bet.ID,
			Points: scoring.CalculatePoints(homeScore, awayScore, bet.HomeScore, bet.AwayScore),
		}
	}

	if err := s.bets.UpdatePointsByID(ctx, updates); err != nil {
		return 0, fmt.Errorf("failed to update points for bets: %w", err)
	}

	metrics.RecordPointsRecalculated(len(updates))
	log.Debug().
		Str("match_id", matchID).
		Int("home", homeScore).
		Int("away", awayScore).
		Int("bets", len(updates)).
		Msg("Points recalculated for match")

	return len(updates), nil
}
