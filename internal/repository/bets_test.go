//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"betpool/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestMatch(t *testing.T, db *Database, ctx context.Context) *models.Match {
	match, err := db.Matches.UpsertByAPIMatchID(ctx, testUpsert(time.Now().Add(24*time.Hour), models.StatusScheduled))
	require.NoError(t, err, "Should create test match")
	return match
}

func TestBetRepository_UpsertByUserAndMatch(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	userID := createTestUser(t, ctx, db, "upsert")
	match := createTestMatch(t, db, ctx)

	now := time.Now()

	// First submission inserts
	bet, err := db.Bets.UpsertByUserAndMatch(ctx, userID, match.ID, 2, 1, now)
	require.NoError(t, err, "Should insert bet")
	assert.Equal(t, 2, bet.HomeScore)
	assert.Equal(t, 1, bet.AwayScore)
	assert.False(t, bet.PointsAwarded.Valid, "New bet must not carry points")

	// Second submission from the same user updates the same row
	updated, err := db.Bets.UpsertByUserAndMatch(ctx, userID, match.ID, 0, 3, now.Add(time.Minute))
	require.NoError(t, err, "Should update bet")
	assert.Equal(t, bet.ID, updated.ID, "Resubmission must converge to one row")
	assert.Equal(t, 0, updated.HomeScore)
	assert.Equal(t, 3, updated.AwayScore)
}

func TestBetRepository_UpsertDoesNotTouchPoints(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	userID := createTestUser(t, ctx, db, "points")
	match := createTestMatch(t, db, ctx)

	bet, err := db.Bets.UpsertByUserAndMatch(ctx, userID, match.ID, 1, 1, time.Now())
	require.NoError(t, err)

	// Award points through the recalculation path
	err = db.Bets.UpdatePointsByID(ctx, []models.BetPointsUpdate{{BetID: bet.ID, Points: 4}})
	require.NoError(t, err)

	// A later prediction change must keep the awarded points
	updated, err := db.Bets.UpsertByUserAndMatch(ctx, userID, match.ID, 2, 0, time.Now())
	require.NoError(t, err)
	require.True(t, updated.PointsAwarded.Valid)
	assert.Equal(t, int32(4), updated.PointsAwarded.Int32, "Bet upsert must never clear awarded points")
}

func TestBetRepository_GetByMatchID(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	match := createTestMatch(t, db, ctx)
	for i := 0; i < 3; i++ {
		userID := createTestUser(t, ctx, db, "bettor")
		_, err := db.Bets.UpsertByUserAndMatch(ctx, userID, match.ID, i, 1, time.Now())
		require.NoError(t, err)
	}

	bets, err := db.Bets.GetByMatchID(ctx, match.ID)
	require.NoError(t, err)
	assert.Len(t, bets, 3, "Should retrieve every bet on the match")

	// A match with no bets yields an empty slice, not an error
	empty, err := db.Bets.GetByMatchID(ctx, createTestMatch(t, db, ctx).ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBetRepository_UpdatePointsByID(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	match := createTestMatch(t, db, ctx)

	var updates []models.BetPointsUpdate
	wantPoints := []int{4, 2, 0}
	for i, p := range wantPoints {
		userID := createTestUser(t, ctx, db, "batch")
		bet, err := db.Bets.UpsertByUserAndMatch(ctx, userID, match.ID, i, 0, time.Now())
		require.NoError(t, err)
		updates = append(updates, models.BetPointsUpdate{BetID: bet.ID, Points: p})
	}

	err := db.Bets.UpdatePointsByID(ctx, updates)
	require.NoError(t, err, "Should write the whole batch")

	bets, err := db.Bets.GetByMatchID(ctx, match.ID)
	require.NoError(t, err)
	require.Len(t, bets, 3)

	got := make(map[string]int32, len(bets))
	for _, b := range bets {
		require.True(t, b.PointsAwarded.Valid, "Every bet in the batch should be scored")
		got[b.ID] = b.PointsAwarded.Int32
	}
	for _, u := range updates {
		assert.Equal(t, int32(u.Points), got[u.BetID])
	}

	// Rescoring with the same batch is idempotent
	err = db.Bets.UpdatePointsByID(ctx, updates)
	require.NoError(t, err)

	// Empty batch is a no-op
	err = db.Bets.UpdatePointsByID(ctx, nil)
	assert.NoError(t, err)
}

func TestBetRepository_GetByUserAndMatch(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	userID := createTestUser(t, ctx, db, "single")
	match := createTestMatch(t, db, ctx)

	// No bet yet
	missing, err := db.Bets.GetByUserAndMatch(ctx, userID, match.ID)
	require.NoError(t, err)
	assert.Nil(t, missing, "Absent bet should be nil, not an error")

	created, err := db.Bets.UpsertByUserAndMatch(ctx, userID, match.ID, 1, 2, time.Now())
	require.NoError(t, err)

	retrieved, err := db.Bets.GetByUserAndMatch(ctx, userID, match.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, created.ID, retrieved.ID)
}

func TestBetRepository_Leaderboard(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	match := createTestMatch(t, db, ctx)

	// Three users: 4 points, 4 points, 1 point
	scores := []int{4, 4, 1}
	users := make(map[string]int, len(scores))
	for i, p := range scores {
		userID := createTestUser(t, ctx, db, "rank")
		bet, err := db.Bets.UpsertByUserAndMatch(ctx, userID, match.ID, i, 0, time.Now())
		require.NoError(t, err)
		require.NoError(t, db.Bets.UpdatePointsByID(ctx, []models.BetPointsUpdate{{BetID: bet.ID, Points: p}}))
		users[userID] = p
	}

	entries, total, err := db.Bets.Leaderboard(ctx, 100, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, 3)
	require.GreaterOrEqual(t, len(entries), 3)

	// Ranks never decrease down the page, and tied totals share a rank
	byUser := make(map[string]*models.LeaderboardEntry, len(entries))
	for i, e := range entries {
		if i > 0 {
			assert.GreaterOrEqual(t, e.Rank, entries[i-1].Rank, "Ranks should be ordered")
			assert.LessOrEqual(t, e.TotalPoints, entries[i-1].TotalPoints, "Points should not increase down the page")
		}
		byUser[e.UserID] = e
	}
	var fourPointRanks []int
	for userID, points := range users {
		entry, ok := byUser[userID]
		require.True(t, ok, "Every bettor should appear on the leaderboard")
		assert.Equal(t, points, entry.TotalPoints)
		assert.Equal(t, 1, entry.MatchesBet)
		if points == 4 {
			fourPointRanks = append(fourPointRanks, entry.Rank)
		}
	}
	require.Len(t, fourPointRanks, 2)
	assert.Equal(t, fourPointRanks[0], fourPointRanks[1], "Tied users must share a rank")
}
