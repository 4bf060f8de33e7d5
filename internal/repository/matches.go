package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"betpool/backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// MatchRepository handles match database operations
type MatchRepository struct {
	db *Database
}

const matchColumns = `
	id, api_match_id, home_team_api_id, home_team_name, home_team_logo,
	away_team_api_id, away_team_name, away_team_logo,
	home_team_score, away_team_score, kickoff_time, status,
	created_at, updated_at
`

func scanMatch(row pgx.Row) (*models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.ID, &m.APIMatchID, &m.HomeTeamAPIID, &m.HomeTeamName, &m.HomeTeamLogo,
		&m.AwayTeamAPIID, &m.AwayTeamName, &m.AwayTeamLogo,
		&m.HomeTeamScore, &m.AwayTeamScore, &m.KickoffTime, &m.Status,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID retrieves a match by its database ID
// Returns (nil, nil) when the match does not exist
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatch(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return match, nil
}

// GetByAPIMatchID retrieves a match by the external provider's fixture id
// Returns (nil, nil) when the match does not exist
func (r *MatchRepository) GetByAPIMatchID(ctx context.Context, apiMatchID string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE api_match_id = $1`

	match, err := scanMatch(r.db.Pool.QueryRow(ctx, query, apiMatchID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match by api id: %w", err)
	}

	return match, nil
}

// UpsertByAPIMatchID inserts or updates a match keyed by the external fixture id
func (r *MatchRepository) UpsertByAPIMatchID(ctx context.Context, data *models.MatchUpsert) (*models.Match, error) {
	query := `
		INSERT INTO matches (
			id, api_match_id, home_team_api_id, home_team_name, home_team_logo,
			away_team_api_id, away_team_name, away_team_logo,
			home_team_score, away_team_score, kickoff_time, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (api_match_id) DO UPDATE SET
			home_team_api_id = EXCLUDED.home_team_api_id,
			home_team_name = EXCLUDED.home_team_name,
			home_team_logo = EXCLUDED.home_team_logo,
			away_team_api_id = EXCLUDED.away_team_api_id,
			away_team_name = EXCLUDED.away_team_name,
			away_team_logo = EXCLUDED.away_team_logo,
			home_team_score = EXCLUDED.home_team_score,
			away_team_score = EXCLUDED.away_team_score,
			kickoff_time = EXCLUDED.kickoff_time,
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING ` + matchColumns

	match, err := scanMatch(r.db.Pool.QueryRow(
		ctx, query,
		uuid.NewString(), data.APIMatchID,
		data.HomeTeamAPIID, data.HomeTeamName, nullString(data.HomeTeamLogo),
		data.AwayTeamAPIID, data.AwayTeamName, nullString(data.AwayTeamLogo),
		nullInt32(data.HomeTeamScore), nullInt32(data.AwayTeamScore),
		data.KickoffTime, data.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert match: %w", err)
	}

	log.Debug().
		Str("id", match.ID).
		Str("api_match_id", match.APIMatchID).
		Str("home", match.HomeTeamName).
		Str("away", match.AwayTeamName).
		Str("status", string(match.Status)).
		Msg("Match upserted")

	return match, nil
}

// ListByKickoffWindow retrieves matches kicking off within [start, end]
// restricted to the given statuses, ordered by kickoff
func (r *MatchRepository) ListByKickoffWindow(ctx context.Context, start, end time.Time, statuses []models.MatchStatus) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE kickoff_time >= $1 AND kickoff_time <= $2 AND status = ANY($3)
		ORDER BY kickoff_time
	`

	rows, err := r.db.Pool.Query(ctx, query, start, end, statusStrings(statuses))
	if err != nil {
		return nil, fmt.Errorf("failed to list matches by kickoff window: %w", err)
	}
	defer rows.Close()

	matches, err := collectMatches(rows)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("count", len(matches)).Msg("Retrieved matches in kickoff window")
	return matches, nil
}

// UpdateScoreAndStatus updates only the live fields of a match
func (r *MatchRepository) UpdateScoreAndStatus(ctx context.Context, id string, home, away *int, status models.MatchStatus) error {
	query := `
		UPDATE matches
		SET home_team_score = $1, away_team_score = $2, status = $3, updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.db.Pool.Exec(ctx, query, nullInt32(home), nullInt32(away), status, id)
	if err != nil {
		return fmt.Errorf("failed to update match score and status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("match not found: id=%s", id)
	}

	return nil
}

// ListByStatus retrieves matches in the given statuses with kickoff range
// filtering and pagination, ordered by kickoff time
// Returns the page of matches and the total count for the filter
func (r *MatchRepository) ListByStatus(ctx context.Context, statuses []models.MatchStatus, from, to *time.Time, ascending bool, limit, offset int) ([]*models.Match, int, error) {
	order := "DESC"
	if ascending {
		order = "ASC"
	}

	query := `
		SELECT ` + matchColumns + `, COUNT(*) OVER() AS total
		FROM matches
		WHERE status = ANY($1)
		  AND ($2::timestamptz IS NULL OR kickoff_time >= $2)
		  AND ($3::timestamptz IS NULL OR kickoff_time <= $3)
		ORDER BY kickoff_time ` + order + `
		LIMIT $4 OFFSET $5
	`

	rows, err := r.db.Pool.Query(ctx, query, statusStrings(statuses), from, to, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	var total int
	for rows.Next() {
		var m models.Match
		err := rows.Scan(
			&m.ID, &m.APIMatchID, &m.HomeTeamAPIID, &m.HomeTeamName, &m.HomeTeamLogo,
			&m.AwayTeamAPIID, &m.AwayTeamName, &m.AwayTeamLogo,
			&m.HomeTeamScore, &m.AwayTeamScore, &m.KickoffTime, &m.Status,
			&m.CreatedAt, &m.UpdatedAt, &total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating matches: %w", err)
	}

	return matches, total, nil
}

// Count returns the total number of matches
func (r *MatchRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM matches`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}

	return count, nil
}

func collectMatches(rows pgx.Rows) ([]*models.Match, error) {
	var matches []*models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return matches, nil
}

func statusStrings(statuses []models.MatchStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt32(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}
