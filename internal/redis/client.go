package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

const (
	keyTracking        = "tracking:%s"          // public snapshot of one order
	keyTrackingReserve = "tracking_reserved:%s" // tracking id claimed by a pending insert
)

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetTracking loads a cached tracking snapshot into dest.
func (c *Client) GetTracking(ctx context.Context, trackingID string, dest interface{}) error {
	val, err := c.rdb.Get(ctx, fmt.Sprintf(keyTracking, trackingID)).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get tracking snapshot: %w", err)
	}
	return json.Unmarshal([]byte(val), dest)
}

func (c *Client) SetTracking(ctx context.Context, trackingID string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal tracking snapshot: %w", err)
	}
	return c.rdb.Set(ctx, fmt.Sprintf(keyTracking, trackingID), jsonData, ttl).Err()
}

func (c *Client) DeleteTracking(ctx context.Context, trackingID string) error {
	return c.rdb.Del(ctx, fmt.Sprintf(keyTracking, trackingID)).Err()
}

// ReserveTrackingID claims the id for ttl. It reports false when another
// writer already holds it.
func (c *Client) ReserveTrackingID(ctx context.Context, trackingID string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, fmt.Sprintf(keyTrackingReserve, trackingID), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve tracking id: %w", err)
	}
	return ok, nil
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
