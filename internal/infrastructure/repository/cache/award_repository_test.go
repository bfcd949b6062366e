package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/club-roster/internal/docstore"
	"github.com/riskibarqy/club-roster/internal/domain/motm"
	"github.com/riskibarqy/club-roster/internal/infrastructure/repository/document"
	basecache "github.com/riskibarqy/club-roster/internal/platform/cache"
)

type countingAwards struct {
	motm.AwardRepository
	gets  int
	lists int
}

func (c *countingAwards) Get(ctx context.Context, gameDate string) (motm.Award, bool, error) {
	c.gets++
	return c.AwardRepository.Get(ctx, gameDate)
}

func (c *countingAwards) List(ctx context.Context) ([]motm.Award, error) {
	c.lists++
	return c.AwardRepository.List(ctx)
}

func newCachedAwards(t *testing.T) (*AwardRepository, *countingAwards) {
	t.Helper()
	store := docstore.NewMemory()
	t.Cleanup(store.Close)

	backing := &countingAwards{AwardRepository: document.NewAwardRepository(store, docstore.Namespace("club"))}
	repo := NewAwardRepository(backing, basecache.NewStore[motm.Award](time.Hour), basecache.NewStore[[]motm.Award](time.Hour))
	return repo, backing
}

func TestAwardRepository_CachesHitsOnly(t *testing.T) {
	ctx := context.Background()
	repo, backing := newCachedAwards(t)

	_, exists, err := repo.Get(ctx, "2026-10-16")
	require.NoError(t, err)
	assert.False(t, exists)
	_, _, err = repo.Get(ctx, "2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, 2, backing.gets, "misses must reach the store")

	_, created, err := repo.Create(ctx, motm.Award{GameDate: "2026-10-16", PlayerID: "p1", VoteCount: 3, AwardedAt: time.Now().UTC()})
	require.NoError(t, err)
	require.True(t, created)

	got, exists, err := repo.Get(ctx, "2026-10-16")
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, "p1", got.PlayerID)
	assert.Equal(t, 2, backing.gets, "award should be served from cache after create")
}

func TestAwardRepository_ListInvalidatedOnCreate(t *testing.T) {
	ctx := context.Background()
	repo, backing := newCachedAwards(t)

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	_, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, backing.lists)

	_, _, err = repo.Create(ctx, motm.Award{GameDate: "2026-10-09", PlayerID: "p2", VoteCount: 2, AwardedAt: time.Now().UTC()})
	require.NoError(t, err)

	items, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, backing.lists)

	// A second create for the same date changes nothing and keeps the list cached.
	stored, created, err := repo.Create(ctx, motm.Award{GameDate: "2026-10-09", PlayerID: "p3", VoteCount: 5, AwardedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "p2", stored.PlayerID)
	_, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, backing.lists)
}
