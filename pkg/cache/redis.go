package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/schedule-editor-bot/pkg/config"
)

const pingTimeout = 5 * time.Second

// Needed reports whether cfg keeps dialogue sessions or catalog listings in Redis.
func Needed(cfg *config.Config) bool {
	return cfg.Dialogue.SessionBackend == config.SessionBackendRedis || cfg.Catalog.CacheEnabled
}

// NewRedis connects to Redis and pings it once before handing the client out.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := Ping(client)(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// Ping returns a readiness check for client.
func Ping(client *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return errors.New("redis client not configured")
		}
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return client.Ping(ctx).Err()
	}
}
