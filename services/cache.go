package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"tripplanner/config"

	"github.com/redis/go-redis/v9"
)

// RedisLegCache keeps airline summaries in Redis for a fixed TTL.
type RedisLegCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLegCache(cfg config.RedisConfig) *RedisLegCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	return &RedisLegCache{client: rdb, ttl: cfg.TTL}
}

func (c *RedisLegCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisLegCache) Close() error {
	return c.client.Close()
}

func (c *RedisLegCache) GetAirlines(ctx context.Context, key string) ([]AirlineOption, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var airlines []AirlineOption
	if err := json.Unmarshal(raw, &airlines); err != nil {
		return nil, false, fmt.Errorf("decode cached airlines: %w", err)
	}
	if airlines == nil {
		airlines = []AirlineOption{}
	}
	return airlines, true, nil
}

func (c *RedisLegCache) SetAirlines(ctx context.Context, key string, airlines []AirlineOption) error {
	raw, err := json.Marshal(airlines)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}
