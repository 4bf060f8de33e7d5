package models

import (
	"database/sql"
	"time"
)

// MatchStatus is the lifecycle state of a match as mirrored from the provider
type MatchStatus string

const (
	StatusScheduled MatchStatus = "scheduled"
	StatusLive      MatchStatus = "live"
	StatusFinished  MatchStatus = "finished"
	StatusCancelled MatchStatus = "cancelled"
	StatusPostponed MatchStatus = "postponed"
)

// BettingDeadlineOffset is how long before kickoff betting closes
const BettingDeadlineOffset = 5 * time.Minute

// Match represents one tracked fixture
// Scores are null until the match goes live
type Match struct {
	ID            string         `db:"id"`
	APIMatchID    string         `db:"api_match_id"`
	HomeTeamAPIID string         `db:"home_team_api_id"`
	HomeTeamName  string         `db:"home_team_name"`
	HomeTeamLogo  sql.NullString `db:"home_team_logo"`
	AwayTeamAPIID string         `db:"away_team_api_id"`
	AwayTeamName  string         `db:"away_team_name"`
	AwayTeamLogo  sql.NullString `db:"away_team_logo"`

	HomeTeamScore sql.NullInt32 `db:"home_team_score"`
	AwayTeamScore sql.NullInt32 `db:"away_team_score"`

	KickoffTime time.Time   `db:"kickoff_time"`
	Status      MatchStatus `db:"status"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// BettingDeadline returns the instant after which bets are rejected
// Always derived from kickoff, never stored
func (m *Match) BettingDeadline() time.Time {
	return m.KickoffTime.Add(-BettingDeadlineOffset)
}

// IsOpenForBetting returns true if the match status still allows bets
// The deadline check is separate; both gates must pass
func (m *Match) IsOpenForBetting() bool {
	return m.Status == StatusScheduled || m.Status == StatusLive
}

// IsFinished returns true if the match is completed
func (m *Match) IsFinished() bool {
	return m.Status == StatusFinished
}

// MatchUpsert is the provider-sourced data used to create or update a match,
// keyed by APIMatchID
type MatchUpsert struct {
	APIMatchID    string
	HomeTeamAPIID string
	HomeTeamName  string
	HomeTeamLogo  string
	AwayTeamAPIID string
	AwayTeamName  string
	AwayTeamLogo  string
	HomeTeamScore *int
	AwayTeamScore *int
	KickoffTime   time.Time
	Status        MatchStatus
}
