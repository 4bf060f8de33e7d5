// Package sync reconciles the external fixture feed with local match state
// and triggers points recalculation when scores move.
package sync

import (
	"context"
	"fmt"
	"time"

	"betpool/backend/internal/client"
	"betpool/backend/internal/metrics"
	"betpool/backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Live window around now used by the pre-check: a match kicking off within
// [now-30m, now+180m] may be in play and worth a provider call
const (
	liveWindowBefore = 30 * time.Minute
	liveWindowAfter  = 180 * time.Minute
)

// FixtureProvider is the external feed the reconciler consumes
type FixtureProvider interface {
	GetFixtures(ctx context.Context, from, to string) ([]client.Fixture, error)
	GetLiveFixtures(ctx context.Context) ([]client.Fixture, error)
}

// MatchStore is the match persistence the reconciler needs
type MatchStore interface {
	// GetByAPIMatchID returns (nil, nil) when no local match tracks the fixture
	GetByAPIMatchID(ctx context.Context, apiMatchID string) (*models.Match, error)
	UpsertByAPIMatchID(ctx context.Context, data *models.MatchUpsert) (*models.Match, error)
	ListByKickoffWindow(ctx context.Context, start, end time.Time, statuses []models.MatchStatus) ([]*models.Match, error)
	UpdateScoreAndStatus(ctx context.Context, id string, home, away *int, status models.MatchStatus) error
}

// Recalculator settles points for a match's bets after a score change
type Recalculator interface {
	UpdateMatchBetsPoints(ctx context.Context, matchID string, homeScore, awayScore int) (int, error)
}

// FullSyncResult reports a full sync run
type FullSyncResult struct {
	Synced  int // newly created matches
	Updated int // existing matches refreshed
}

// LiveSyncResult reports a live sync run
type LiveSyncResult struct {
	Updated     int
	APICallMade bool
}

// PreCheckResult reports whether the live window holds any candidates
type PreCheckResult struct {
	ShouldSync bool
	MatchIDs   []string // api_match_ids of matches in the window
}

// Service mirrors provider-reported fixtures onto local matches. It does not
// own the state machine; it writes whatever status the provider reports.
type Service struct {
	provider FixtureProvider
	matches  MatchStore
	recalc   Recalculator
	now      func() time.Time
}

// NewService creates a reconciler with injected collaborators
func NewService(provider FixtureProvider, matches MatchStore, recalc Recalculator) *Service {
	return &Service{
		provider: provider,
		matches:  matches,
		recalc:   recalc,
		now:      time.Now,
	}
}

// SyncAllFixtures fetches every fixture for the tracked competition and
// upserts each as a match keyed by the provider's fixture id. When a match
// moves into finished, points for its bets are settled. Per-fixture failures
// are logged and skipped; only a failure fetching the list itself aborts.
func (s *Service) SyncAllFixtures(ctx context.Context) (*FullSyncResult, error) {
	start := time.Now()

	fixtures, err := s.provider.GetFixtures(ctx, "", "")
	if err != nil {
		metrics.RecordSync("full", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to fetch fixtures: %w", err)
	}

	result := &FullSyncResult{}
	for i := range fixtures {
		fixture := &fixtures[i]
		apiMatchID := fmt.Sprintf("%d", fixture.Fixture.ID)

		existing, err := s.matches.GetByAPIMatchID(ctx, apiMatchID)
		if err != nil {
			log.Error().Err(err).Str("api_match_id", apiMatchID).Msg("Failed to look up match, skipping fixture")
			continue
		}

		upsert, err := toMatchUpsert(fixture)
		if err != nil {
			log.Warn().Err(err).Str("api_match_id", apiMatchID).Msg("Malformed fixture, skipping")
			continue
		}

		match, err := s.matches.UpsertByAPIMatchID(ctx, upsert)
		if err != nil {
			log.Error().Err(err).Str("api_match_id", apiMatchID).Msg("Failed to sync match, skipping fixture")
			continue
		}

		if existing == nil {
			result.Synced++
			continue
		}
		result.Updated++

		// Settle points when the match just finished
		if existing.Status != models.StatusFinished && upsert.Status == models.StatusFinished {
			home, away := goalsOrZero(fixture)
			count, err := s.recalc.UpdateMatchBetsPoints(ctx, match.ID, home, away)
			if err != nil {
				log.Error().Err(err).
					Str("match_id", match.ID).
					Str("api_match_id", apiMatchID).
					Msg("Failed to settle points for finished match")
				continue
			}
			log.Info().
				Str("match_id", match.ID).
				Int("home", home).
				Int("away", away).
				Int("bets", count).
				Msg("Match finished, points settled")
		}
	}

	metrics.RecordSync("full", "success", time.Since(start).Seconds())
	log.Info().
		Int("synced", result.Synced).
		Int("updated", result.Updated).
		Dur("duration", time.Since(start)).
		Msg("Full fixture sync complete")

	return result, nil
}

// ShouldSyncLiveMatches checks local storage for matches near kickoff. When
// none are in the live window the provider call can be skipped entirely; this
// pre-check costs one local query and protects the provider quota.
func (s *Service) ShouldSyncLiveMatches(ctx context.Context) (*PreCheckResult, error) {
	now := s.now()
	windowStart := now.Add(-liveWindowBefore)
	windowEnd := now.Add(liveWindowAfter)

	matches, err := s.matches.ListByKickoffWindow(ctx, windowStart, windowEnd,
		[]models.MatchStatus{models.StatusScheduled, models.StatusLive})
	if err != nil {
		return nil, fmt.Errorf("failed to check for live matches: %w", err)
	}

	matchIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		matchIDs = append(matchIDs, m.APIMatchID)
	}

	return &PreCheckResult{
		ShouldSync: len(matchIDs) > 0,
		MatchIDs:   matchIDs,
	}, nil
}

// SyncLiveMatches fetches the provider's live fixtures, narrows them to
// targetMatchIDs when given, and refreshes each tracked match's score and
// status. Points are recalculated on every update, not only on the finished
// transition; live scores move repeatedly and recalculation is idempotent.
// Fixtures with no local match are skipped, not errors.
func (s *Service) SyncLiveMatches(ctx context.Context, targetMatchIDs []string) (*LiveSyncResult, error) {
	start := time.Now()

	liveFixtures, err := s.provider.GetLiveFixtures(ctx)
	if err != nil {
		metrics.RecordSync("live", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to fetch live fixtures: %w", err)
	}

	targets := make(map[string]bool, len(targetMatchIDs))
	for _, id := range targetMatchIDs {
		targets[id] = true
	}

	result := &LiveSyncResult{APICallMade: true}
	for i := range liveFixtures {
		fixture := &liveFixtures[i]
		apiMatchID := fmt.Sprintf("%d", fixture.Fixture.ID)

		if targetMatchIDs != nil && !targets[apiMatchID] {
			continue
		}

		match, err := s.matches.GetByAPIMatchID(ctx, apiMatchID)
		if err != nil {
			log.Error().Err(err).Str("api_match_id", apiMatchID).Msg("Failed to look up match, skipping fixture")
			continue
		}
		if match == nil {
			// The provider's live list can include fixtures we don't track
			continue
		}

		status := MapAPIStatus(fixture.Fixture.Status.Short)
		if err := s.matches.UpdateScoreAndStatus(ctx, match.ID, fixture.Goals.Home, fixture.Goals.Away, status); err != nil {
			log.Error().Err(err).Str("match_id", match.ID).Msg("Failed to update live match, skipping fixture")
			continue
		}
		result.Updated++

		home, away := goalsOrZero(fixture)
		if _, err := s.recalc.UpdateMatchBetsPoints(ctx, match.ID, home, away); err != nil {
			log.Error().Err(err).Str("match_id", match.ID).Msg("Failed to recalculate points for live match")
			continue
		}

		log.Debug().
			Str("match_id", match.ID).
			Int("home", home).
			Int("away", away).
			Str("status", string(status)).
			Msg("Live match updated")
	}

	metrics.RecordSync("live", "success", time.Since(start).Seconds())
	log.Info().
		Int("updated", result.Updated).
		Int("live_fixtures", len(liveFixtures)).
		Dur("duration", time.Since(start)).
		Msg("Live sync complete")

	return result, nil
}

// toMatchUpsert converts a provider fixture into the local upsert shape
func toMatchUpsert(fixture *client.Fixture) (*models.MatchUpsert, error) {
	kickoff, err := fixture.KickoffTime()
	if err != nil {
		return nil, fmt.Errorf("invalid fixture date %q: %w", fixture.Fixture.Date, err)
	}

	return &models.MatchUpsert{
		APIMatchID:    fmt.Sprintf("%d", fixture.Fixture.ID),
		HomeTeamAPIID: fmt.Sprintf("%d", fixture.Teams.Home.ID),
		HomeTeamName:  fixture.Teams.Home.Name,
		HomeTeamLogo:  fixture.Teams.Home.Logo,
		AwayTeamAPIID: fmt.Sprintf("%d", fixture.Teams.Away.ID),
		AwayTeamName:  fixture.Teams.Away.Name,
		AwayTeamLogo:  fixture.Teams.Away.Logo,
		HomeTeamScore: fixture.Goals.Home,
		AwayTeamScore: fixture.Goals.Away,
		KickoffTime:   kickoff,
		Status:        MapAPIStatus(fixture.Fixture.Status.Short),
	}, nil
}

func goalsOrZero(fixture *client.Fixture) (int, int) {
	home, away := 0, 0
	if fixture.Goals.Home != nil {
		home = *fixture.Goals.Home
	}
	if fixture.Goals.Away != nil {
		away = *fixture.Goals.Away
	}
	return home, away
}
