package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/auditforge/audit-intelligence/internal/domain/errors"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
	"github.com/auditforge/audit-intelligence/internal/infrastructure/config"
)

// recommendationPrefix keys comprehensive recommendations by audit id.
const recommendationPrefix = "ari:recommendation:"

const defaultTTL = 15 * time.Minute

// RecommendationCache caches comprehensive recommendations in Redis. It
// satisfies the orchestrator's cache interface; every failure surfaces as an
// error the caller treats as a miss.
type RecommendationCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewRecommendationCache connects to Redis and verifies the connection.
func NewRecommendationCache(cfg *config.RedisConfig, logger *zap.Logger) (*RecommendationCache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	logger.Info("recommendation cache initialized",
		zap.String("addr", cfg.URL),
		zap.Int("db", cfg.DB),
		zap.Duration("ttl", ttl))
	return &RecommendationCache{client: client, logger: logger, ttl: ttl}, nil
}

// NewRecommendationCacheWithClient wraps an existing client. Used by tests.
func NewRecommendationCacheWithClient(client *redis.Client, logger *zap.Logger, ttl time.Duration) *RecommendationCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RecommendationCache{client: client, logger: logger, ttl: ttl}
}

// Put stores one comprehensive recommendation under its audit id.
func (c *RecommendationCache) Put(ctx context.Context, rec *recommendation.Comprehensive) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding recommendation: %w", err)
	}
	key := recommendationPrefix + rec.AuditID.String()
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return errors.NewPersistenceError("caching recommendation").WithCause(err)
	}
	return nil
}

// Get returns the cached recommendation for an audit, or a not-found error.
func (c *RecommendationCache) Get(ctx context.Context, auditID uuid.UUID) (*recommendation.Comprehensive, error) {
	key := recommendationPrefix + auditID.String()
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NewNotFoundError("cached recommendation")
		}
		return nil, errors.NewPersistenceError("reading recommendation cache").WithCause(err)
	}
	var rec recommendation.Comprehensive
	if err := json.Unmarshal(payload, &rec); err != nil {
		// A corrupt entry behaves like a miss.
		c.logger.Warn("dropping corrupt cache entry", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, key)
		return nil, errors.NewNotFoundError("cached recommendation")
	}
	return &rec, nil
}

// Invalidate removes the cached recommendation for an audit.
func (c *RecommendationCache) Invalidate(ctx context.Context, auditID uuid.UUID) error {
	return c.client.Del(ctx, recommendationPrefix+auditID.String()).Err()
}

// Close releases the underlying client.
func (c *RecommendationCache) Close() error {
	return c.client.Close()
}
