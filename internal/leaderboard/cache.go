package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const boardKey = "leaderboard:global"

var ErrBoardNotCached = errors.New("leaderboard not cached")

// BoardCache stores the computed leaderboard in Redis so read traffic does
// not trigger a full-collection scan on every request.
type BoardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBoardCache(client *redis.Client, ttl time.Duration) *BoardCache {
	return &BoardCache{client: client, ttl: ttl}
}

func (c *BoardCache) Set(ctx context.Context, board *Board) error {
	data, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}

	if err := c.client.Set(ctx, boardKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache board: %w", err)
	}

	return nil
}

func (c *BoardCache) Get(ctx context.Context) (*Board, error) {
	data, err := c.client.Get(ctx, boardKey).Result()
	if err == redis.Nil {
		return nil, ErrBoardNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached board: %w", err)
	}

	var board Board
	if err := json.Unmarshal([]byte(data), &board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached board: %w", err)
	}

	return &board, nil
}
