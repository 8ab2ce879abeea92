package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/nolalabs/analytics/internal/common/config"
	"github.com/nolalabs/analytics/internal/common/logger"
)

// Client embeds the go-redis client so callers use its API directly.
type Client struct {
	*goredis.Client
}

// Connect creates a Redis client and verifies connectivity.
func Connect(cfg config.RedisConfig, log logger.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Infof("Connected to Redis at %s", cfg.Addr())
	return &Client{Client: rdb}, nil
}

// NewFromClient wraps an existing go-redis client (used by tests with miniredis).
func NewFromClient(rdb *goredis.Client) *Client {
	return &Client{Client: rdb}
}
