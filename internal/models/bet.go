package models

import (
	"database/sql"
	"time"
)

// Bet is one user's score prediction for one match
// Exactly one row exists per (UserID, MatchID), enforced by a unique constraint
type Bet struct {
	ID      string `db:"id"`
	UserID  string `db:"user_id"`
	MatchID string `db:"match_id"`

	HomeScore int `db:"home_score"`
	AwayScore int `db:"away_score"`

	// Null until the match finishes or a live recalculation runs
	PointsAwarded sql.NullInt32 `db:"points_awarded"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// BetPointsUpdate carries one recalculated points value, keyed by bet id
type BetPointsUpdate struct {
	BetID  string
	Points int
}

// LeaderboardEntry is a derived ranking row, never stored
// Ties in points share a rank (dense ranking)
type LeaderboardEntry struct {
	Rank        int    `db:"rank"`
	UserID      string `db:"user_id"`
	Nickname    string `db:"nickname"`
	TotalPoints int    `db:"total_points"`
	MatchesBet  int    `db:"matches_bet"`
}
