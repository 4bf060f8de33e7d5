package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"betpool/backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// BetRepository handles bet database operations
type BetRepository struct {
	db *Database
}

const betColumns = `
	id, user_id, match_id, home_score, away_score, points_awarded,
	created_at, updated_at
`

// GetByMatchID retrieves all bets placed on a match
func (r *BetRepository) GetByMatchID(ctx context.Context, matchID string) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE match_id = $1`

	rows, err := r.db.Pool.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for match: %w", err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		var b models.Bet
		err := rows.Scan(
			&b.ID, &b.UserID, &b.MatchID, &b.HomeScore, &b.AwayScore, &b.PointsAwarded,
			&b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bets: %w", err)
	}

	log.Debug().Str("match_id", matchID).Int("count", len(bets)).Msg("Retrieved bets for match")
	return bets, nil
}

// UpsertByUserAndMatch inserts or updates the single bet a user holds on a match
// Conflict resolution on (user_id, match_id) makes concurrent submissions from
// the same user converge to one row, last write wins
// points_awarded is never touched here; it belongs to the recalculation path
func (r *BetRepository) UpsertByUserAndMatch(ctx context.Context, userID, matchID string, homeScore, awayScore int, now time.Time) (*models.Bet, error) {
	query := `
		INSERT INTO bets (id, user_id, match_id, home_score, away_score, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, match_id) DO UPDATE SET
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + betColumns

	var b models.Bet
	err := r.db.Pool.QueryRow(
		ctx, query,
		uuid.NewString(), userID, matchID, homeScore, awayScore, now,
	).Scan(
		&b.ID, &b.UserID, &b.MatchID, &b.HomeScore, &b.AwayScore, &b.PointsAwarded,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert bet: %w", err)
	}

	log.Debug().
		Str("id", b.ID).
		Str("user_id", b.UserID).
		Str("match_id", b.MatchID).
		Int("home", b.HomeScore).
		Int("away", b.AwayScore).
		Msg("Bet upserted")

	return &b, nil
}

// UpdatePointsByID writes recalculated points in one batch keyed by bet id
// A single statement keeps the batch atomic
func (r *BetRepository) UpdatePointsByID(ctx context.Context, updates []models.BetPointsUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	ids := make([]string, len(updates))
	points := make([]int32, len(updates))
	for i, u := range updates {
		ids[i] = u.BetID
		points[i] = int32(u.Points)
	}

	query := `
		UPDATE bets
		SET points_awarded = u.points, updated_at = NOW()
		FROM (SELECT UNNEST($1::uuid[]) AS id, UNNEST($2::int[]) AS points) u
		WHERE bets.id = u.id
	`

	result, err := r.db.Pool.Exec(ctx, query, ids, points)
	if err != nil {
		return fmt.Errorf("failed to update points for bets: %w", err)
	}

	log.Debug().
		Int("updates", len(updates)).
		Int64("rows_affected", result.RowsAffected()).
		Msg("Bet points updated")

	return nil
}

// GetByUserAndMatch retrieves a user's bet on a match
// Returns (nil, nil) when the user has no bet on that match
func (r *BetRepository) GetByUserAndMatch(ctx context.Context, userID, matchID string) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE user_id = $1 AND match_id = $2`

	var b models.Bet
	err := r.db.Pool.QueryRow(ctx, query, userID, matchID).Scan(
		&b.ID, &b.UserID, &b.MatchID, &b.HomeScore, &b.AwayScore, &b.PointsAwarded,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}

	return &b, nil
}

// Leaderboard computes the dense-ranked standings over awarded points
// Users tied on points share a rank; unscored bets count toward matches_bet
// but contribute zero points
func (r *BetRepository) Leaderboard(ctx context.Context, limit, offset int) ([]*models.LeaderboardEntry, int, error) {
	query := `
		SELECT
			DENSE_RANK() OVER (ORDER BY COALESCE(SUM(b.points_awarded), 0) DESC) AS rank,
			u.id AS user_id,
			u.nickname,
			COALESCE(SUM(b.points_awarded), 0) AS total_points,
			COUNT(b.id) AS matches_bet,
			COUNT(*) OVER() AS total
		FROM users u
		JOIN bets b ON b.user_id = u.id
		GROUP BY u.id, u.nickname
		ORDER BY total_points DESC, u.nickname
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	var total int
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.Rank, &e.UserID, &e.Nickname, &e.TotalPoints, &e.MatchesBet, &total); err != nil {
			return nil, 0, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating leaderboard: %w", err)
	}

	return entries, total, nil
}

// Count returns the total number of bets
func (r *BetRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM bets`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bets: %w", err)
	}

	return count, nil
}
