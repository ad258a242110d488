package tiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const tileKeyPrefix = "tile:" // tile:{body}:{z}:{x}:{y}

var ErrTileNotCached = errors.New("tile not cached")

// TileCache keeps upstream tiles in Redis. Planetary basemaps are static,
// so a long TTL is safe.
type TileCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTileCache(client *redis.Client, ttl time.Duration) *TileCache {
	return &TileCache{client: client, ttl: ttl}
}

func (c *TileCache) Get(ctx context.Context, body string, z, x, y int) ([]byte, error) {
	data, err := c.client.Get(ctx, tileKey(body, z, x, y)).Bytes()
	if err == redis.Nil {
		return nil, ErrTileNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached tile: %w", err)
	}
	return data, nil
}

func (c *TileCache) Set(ctx context.Context, body string, z, x, y int, data []byte) error {
	if err := c.client.Set(ctx, tileKey(body, z, x, y), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache tile: %w", err)
	}
	return nil
}

func tileKey(body string, z, x, y int) string {
	return fmt.Sprintf("%s%s:%d:%d:%d", tileKeyPrefix, body, z, x, y)
}
