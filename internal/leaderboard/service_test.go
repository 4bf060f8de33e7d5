package leaderboard

import (
	"context"
	"testing"
	"time"

	"betpool/backend/internal/cache"
	"betpool/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore serves a fixed leaderboard and counts queries
type fakeStore struct {
	entries []*models.LeaderboardEntry
	total   int
	queries int
}

func (f *fakeStore) Leaderboard(ctx context.Context, limit, offset int) ([]*models.LeaderboardEntry, int, error) {
	f.queries++
	end := offset + limit
	if offset > len(f.entries) {
		return nil, f.total, nil
	}
	if end > len(f.entries) {
		end = len(f.entries)
	}
	return f.entries[offset:end], f.total, nil
}

// fakeCache is an in-memory Cache
type fakeCache struct {
	values map[string]*Result
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]*Result)}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	v, ok := f.values[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	*dest.(*Result) = *v
	return nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.sets++
	result := value.(*Result)
	f.values[key] = result
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.values, key)
	return nil
}

func standings() []*models.LeaderboardEntry {
	return []*models.LeaderboardEntry{
		{Rank: 1, UserID: "u1", Nickname: "alice", TotalPoints: 12, MatchesBet: 5},
		{Rank: 2, UserID: "u2", Nickname: "bob", TotalPoints: 9, MatchesBet: 5},
		{Rank: 2, UserID: "u3", Nickname: "carol", TotalPoints: 9, MatchesBet: 4},
		{Rank: 3, UserID: "u4", Nickname: "dave", TotalPoints: 7, MatchesBet: 3},
	}
}

func TestGetLeaderboard(t *testing.T) {
	store := &fakeStore{entries: standings(), total: 4}
	svc := NewService(store, nil, time.Minute)

	result, err := svc.GetLeaderboard(context.Background(), 1, 25)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total)
	require.Len(t, result.Entries, 4)

	// Dense ranking: bob and carol share rank 2, dave gets 3
	assert.Equal(t, 2, result.Entries[1].Rank)
	assert.Equal(t, 2, result.Entries[2].Rank)
	assert.Equal(t, 3, result.Entries[3].Rank)
}

func TestGetLeaderboard_Pagination(t *testing.T) {
	store := &fakeStore{entries: standings(), total: 4}
	svc := NewService(store, nil, time.Minute)

	result, err := svc.GetLeaderboard(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "carol", result.Entries[0].Nickname)
}

func TestGetLeaderboard_CacheReadThrough(t *testing.T) {
	store := &fakeStore{entries: standings(), total: 4}
	c := newFakeCache()
	svc := NewService(store, c, time.Minute)

	first, err := svc.GetLeaderboard(context.Background(), 1, 25)
	require.NoError(t, err)
	assert.Equal(t, 1, store.queries)
	assert.Equal(t, 1, c.sets)

	second, err := svc.GetLeaderboard(context.Background(), 1, 25)
	require.NoError(t, err)
	assert.Equal(t, 1, store.queries, "second read must come from cache")
	assert.Equal(t, first.Total, second.Total)
	assert.Len(t, second.Entries, len(first.Entries))
}

// errCache fails every operation
type errCache struct{}

func (errCache) Get(ctx context.Context, key string, dest interface{}) error {
	return assert.AnError
}

func (errCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return assert.AnError
}

func (errCache) Delete(ctx context.Context, key string) error {
	return assert.AnError
}

func TestGetLeaderboard_CacheFailureDegradesToStore(t *testing.T) {
	store := &fakeStore{entries: standings(), total: 4}
	svc := NewService(store, errCache{}, time.Minute)

	result, err := svc.GetLeaderboard(context.Background(), 1, 25)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 1, store.queries)
}

func TestGetLeaderboard_PageDefaults(t *testing.T) {
	store := &fakeStore{entries: standings(), total: 4}
	svc := NewService(store, nil, time.Minute)

	result, err := svc.GetLeaderboard(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, result.Entries, 4)
}

func TestRefresh_ReplacesStaleFirstPage(t *testing.T) {
	store := &fakeStore{entries: standings(), total: 4}
	c := newFakeCache()
	svc := NewService(store, c, time.Minute)

	// Populate the cache, then change the underlying standings
	_, err := svc.GetLeaderboard(context.Background(), 1, 25)
	require.NoError(t, err)
	store.entries = standings()[:2]
	store.total = 2

	require.NoError(t, svc.Refresh(context.Background()))

	result, err := svc.GetLeaderboard(context.Background(), 1, 25)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total, "Refresh must replace the cached first page")
	assert.Equal(t, 2, store.queries, "Only the refresh should have hit the store again")
}

func TestRefresh_NoCacheIsNoOp(t *testing.T) {
	store := &fakeStore{entries: standings(), total: 4}
	svc := NewService(store, nil, time.Minute)

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Zero(t, store.queries)
}
