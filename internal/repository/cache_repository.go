package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
	appErrors "github.com/noah-isme/schedule-editor-bot/pkg/errors"
)

const catalogCachePrefix = "catalog:"

// CatalogCacheRepository caches rendered catalog listings in Redis.
type CatalogCacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCatalogCacheRepository constructs a cache repository. A nil client disables caching.
func NewCatalogCacheRepository(client *redis.Client, logger *zap.Logger) *CatalogCacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogCacheRepository{client: client, logger: logger}
}

func catalogKey(catalog models.Catalog, scope string) string {
	if scope == "" {
		scope = "all"
	}
	return catalogCachePrefix + string(catalog) + ":" + scope
}

// Get loads a cached listing, returning ErrCacheMiss when absent.
func (r *CatalogCacheRepository) Get(ctx context.Context, catalog models.Catalog, scope string) ([]models.RecordSummary, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	key := catalogKey(catalog, scope)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var summaries []models.RecordSummary
	if err := json.Unmarshal(raw, &summaries); err != nil {
		return nil, fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return summaries, nil
}

// Set stores a listing with the given TTL.
func (r *CatalogCacheRepository) Set(ctx context.Context, catalog models.Catalog, scope string, summaries []models.RecordSummary, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	key := catalogKey(catalog, scope)
	payload, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Invalidate drops every cached listing of the catalog.
func (r *CatalogCacheRepository) Invalidate(ctx context.Context, catalog models.Catalog) error {
	if r.client == nil {
		return nil
	}

	pattern := catalogCachePrefix + string(catalog) + ":*"
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", key, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan pattern %s: %w", pattern, err)
	}
	r.logger.Debug("catalog cache invalidated", zap.String("catalog", string(catalog)))
	return nil
}
