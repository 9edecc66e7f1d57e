package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
	appErrors "github.com/noah-isme/schedule-editor-bot/pkg/errors"
)

// CatalogCacheRepository abstracts persistence for cached catalog listings.
type CatalogCacheRepository interface {
	Get(ctx context.Context, catalog models.Catalog, scope string) ([]models.RecordSummary, error)
	Set(ctx context.Context, catalog models.Catalog, scope string, summaries []models.RecordSummary, ttl time.Duration) error
	Invalidate(ctx context.Context, catalog models.Catalog) error
}

// CacheService orchestrates catalog cache operations and related metrics. Cache failures are
// logged and never surface to operators.
type CacheService struct {
	repo       CatalogCacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CatalogCacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get returns the cached listing and whether the cache was hit.
func (s *CacheService) Get(ctx context.Context, catalog models.Catalog, scope string) ([]models.RecordSummary, bool) {
	if !s.Enabled() {
		return nil, false
	}
	start := time.Now()
	summaries, err := s.repo.Get(ctx, catalog, scope)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("catalog", string(catalog)), zap.String("scope", scope), zap.Error(err))
		}
		return nil, false
	}
	return summaries, true
}

// Set stores a listing.
func (s *CacheService) Set(ctx context.Context, catalog models.Catalog, scope string, summaries []models.RecordSummary) {
	if !s.Enabled() {
		return
	}
	if err := s.repo.Set(ctx, catalog, scope, summaries, s.defaultTTL); err != nil {
		s.logger.Warn("cache set failed", zap.String("catalog", string(catalog)), zap.String("scope", scope), zap.Error(err))
	}
}

// Invalidate removes every cached listing of the catalog.
func (s *CacheService) Invalidate(ctx context.Context, catalog models.Catalog) {
	if !s.Enabled() {
		return
	}
	if err := s.repo.Invalidate(ctx, catalog); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("catalog", string(catalog)), zap.Error(err))
	}
}
