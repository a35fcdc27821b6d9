package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"regapi/internal/config"
	"regapi/internal/model"
)

const keyPrefix = "regapi:registration:"

// Redis stores registrations under regapi:registration:<id> using the record wire encoding.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to Redis and pings it with a short timeout.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisWithClient(client, time.Duration(cfg.TTLSec)*time.Second), nil
}

// NewRedisWithClient wraps an existing client. A ttl of zero keeps entries until evicted.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func key(id int) string {
	return keyPrefix + strconv.Itoa(id)
}

// Get returns ErrMiss for absent keys. An entry that no longer decodes is
// dropped and reported as a miss.
func (c *Redis) Get(ctx context.Context, id int) (*model.Registration, error) {
	data, err := c.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	reg, err := model.DecodeRegistration(data)
	if err != nil {
		_ = c.client.Del(ctx, key(id)).Err()
		return nil, ErrMiss
	}
	return &reg, nil
}

func (c *Redis) Set(ctx context.Context, reg *model.Registration) error {
	data, err := model.EncodeRegistration(*reg)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}
	if err := c.client.Set(ctx, key(reg.Id), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *Redis) Delete(ctx context.Context, id int) error {
	if err := c.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *Redis) Close() error {
	return c.client.Close()
}
