package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/pgx-risk-mcp-server/internal/domain"
)

const (
	defaultMaxItems  = 256
	defaultTTL       = 15 * time.Minute
	defaultKeyPrefix = "pgx:report:"
	redisOpTimeout   = 2 * time.Second
)

// Stats tracks cache performance
type Stats struct {
	MemoryHits   int64 `json:"memory_hits"`
	MemoryMisses int64 `json:"memory_misses"`
	RedisHits    int64 `json:"redis_hits"`
	RedisMisses  int64 `json:"redis_misses"`
	RedisErrors  int64 `json:"redis_errors"`
}

// ReportCache keeps finished analysis reports in a bounded in-process LRU, optionally
// backed by Redis. Redis failures are logged and counted, never returned; after repeated
// failures the circuit breaker stops calling Redis until its timeout elapses.
type ReportCache struct {
	enabled bool
	memory  *expirable.LRU[string, *domain.AnalysisReport]
	redis   *redis.Client
	breaker *gobreaker.CircuitBreaker
	prefix  string
	ttl     time.Duration
	logger  *logrus.Logger

	memoryHits   atomic.Int64
	memoryMisses atomic.Int64
	redisHits    atomic.Int64
	redisMisses  atomic.Int64
	redisErrors  atomic.Int64
}

var _ domain.ReportCache = (*ReportCache)(nil)

// New creates a report cache from configuration. An empty RedisURL keeps the cache
// in-process only.
func New(config domain.CacheConfig, logger *logrus.Logger) (*ReportCache, error) {
	if config.MaxItems <= 0 {
		config.MaxItems = defaultMaxItems
	}
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = defaultTTL
	}
	if config.RedisKeyPrefix == "" {
		config.RedisKeyPrefix = defaultKeyPrefix
	}
	if config.BreakerTimeout <= 0 {
		config.BreakerTimeout = 30 * time.Second
	}

	c := &ReportCache{
		enabled: config.Enabled,
		memory:  expirable.NewLRU[string, *domain.AnalysisReport](config.MaxItems, nil, config.DefaultTTL),
		prefix:  config.RedisKeyPrefix,
		ttl:     config.DefaultTTL,
		logger:  logger,
	}

	if !config.Enabled || config.RedisURL == "" {
		return c, nil
	}

	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.PoolTimeout > 0 {
		opts.PoolTimeout = config.PoolTimeout
	}
	if config.MaxRetries != 0 {
		opts.MaxRetries = config.MaxRetries
	}
	c.redis = redis.NewClient(opts)

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-report-cache",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := c.redis.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis unreachable, continuing with in-memory report cache")
	}

	return c, nil
}

// Key fingerprints an analysis request. Drugs must already be normalized; their order
// is part of the key because reports list drugs in request order.
func Key(referenceVersion, patientID, vcfContent string, drugs []domain.Drug) string {
	h := sha256.New()
	for _, part := range []string{referenceVersion, patientID, vcfContent} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	for _, d := range drugs {
		h.Write([]byte(d))
		h.Write([]byte{','})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a cached report. A Redis hit is promoted into memory.
func (c *ReportCache) Get(ctx context.Context, key string) (*domain.AnalysisReport, bool) {
	if !c.enabled {
		return nil, false
	}

	if report, ok := c.memory.Get(key); ok {
		c.memoryHits.Add(1)
		c.logger.WithFields(logrus.Fields{"key": key, "cache_tier": "memory"}).Debug("Report cache hit")
		return report, true
	}
	c.memoryMisses.Add(1)

	if c.redis == nil {
		return nil, false
	}

	data, err := c.execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
		defer cancel()
		b, err := c.redis.Get(ctx, c.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return b, err
	})
	if err != nil || data == nil {
		c.redisMisses.Add(1)
		return nil, false
	}

	var report domain.AnalysisReport
	if err := json.Unmarshal(data, &report); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Discarding corrupted cached report")
		c.redisMisses.Add(1)
		return nil, false
	}

	c.redisHits.Add(1)
	c.memory.Add(key, &report)
	c.logger.WithFields(logrus.Fields{"key": key, "cache_tier": "redis"}).Debug("Report cache hit")
	return &report, true
}

// Set stores a report in every configured tier.
func (c *ReportCache) Set(ctx context.Context, key string, report *domain.AnalysisReport) {
	if !c.enabled || report == nil {
		return
	}
	c.memory.Add(key, report)

	if c.redis == nil {
		return
	}

	payload, err := json.Marshal(report)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to encode report for Redis")
		return
	}
	_, _ = c.execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
		defer cancel()
		return nil, c.redis.Set(ctx, c.prefix+key, payload, c.ttl).Err()
	})
}

func (c *ReportCache) execute(fn func() (interface{}, error)) ([]byte, error) {
	result, err := c.breaker.Execute(fn)
	if err != nil {
		c.redisErrors.Add(1)
		if !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.WithError(err).Warn("Redis report cache operation failed")
		}
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return result.([]byte), nil
}

// Len returns the number of reports held in memory.
func (c *ReportCache) Len() int {
	return c.memory.Len()
}

// Stats returns a snapshot of hit and miss counters.
func (c *ReportCache) Stats() Stats {
	return Stats{
		MemoryHits:   c.memoryHits.Load(),
		MemoryMisses: c.memoryMisses.Load(),
		RedisHits:    c.redisHits.Load(),
		RedisMisses:  c.redisMisses.Load(),
		RedisErrors:  c.redisErrors.Load(),
	}
}

// Close releases the Redis connection pool.
func (c *ReportCache) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}
