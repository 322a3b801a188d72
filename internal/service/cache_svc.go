package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DetailCacheTTL matches the search result cache: five minutes of
// staleness is accepted, policy changes do not invalidate live entries.
const DetailCacheTTL = 5 * time.Minute

// CacheService is the Redis cache-aside layer for video detail lookups.
// A nil client degrades every operation to a no-op, so a deployment
// without Redis just runs uncached.
type CacheService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewCacheService connects to Redis. An empty URL, a malformed URL, or an
// unreachable server all yield a disabled (nil-client) cache rather than
// an error.
func NewCacheService(redisURL string, log zerolog.Logger) *CacheService {
	log = log.With().Str("component", "redis").Logger()
	if redisURL == "" {
		log.Info().Msg("no URL configured, caching disabled")
		return &CacheService{log: log}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("invalid URL, caching disabled")
		return &CacheService{log: log}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("connection failed, caching disabled")
		return &CacheService{log: log}
	}

	log.Info().Msg("connected, caching enabled")
	return &CacheService{rdb: rdb, log: log}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetDetail retrieves a cached detail payload. Returns nil when not cached
// or the cache is disabled.
func (c *CacheService) GetDetail(ctx context.Context, videoID string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, detailKey(videoID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetDetail stores a detail payload.
func (c *CacheService) SetDetail(ctx context.Context, videoID string, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, detailKey(videoID), b, DetailCacheTTL).Err()
}

// InvalidateDetail removes a video's cached detail.
func (c *CacheService) InvalidateDetail(ctx context.Context, videoID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, detailKey(videoID)).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func detailKey(videoID string) string {
	return "video:detail:" + videoID
}
