package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardCacheRoundTrip(t *testing.T) {
	cache := NewBoardCache(setupTestRedis(t), time.Minute)
	ctx := context.Background()

	board := &Board{
		Entries:          []Entry{{Author: "A", Count: 2, Rank: 1}},
		Ranks:            map[string]int{"A": 1},
		TotalDiscoveries: 2,
		TotalExplorers:   1,
		ComputedAt:       time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, cache.Set(ctx, board))

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, board.Entries, got.Entries)
	assert.Equal(t, board.TotalDiscoveries, got.TotalDiscoveries)
	assert.Equal(t, 1, got.RankOf("A"))
}

func TestBoardCacheMiss(t *testing.T) {
	cache := NewBoardCache(setupTestRedis(t), time.Minute)

	_, err := cache.Get(context.Background())
	assert.ErrorIs(t, err, ErrBoardNotCached)
}
