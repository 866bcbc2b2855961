package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coverage-planner-service/internal/platform/obs"
	"coverage-planner-service/internal/solver"

	"github.com/redis/go-redis/v9"
)

const reportKeyPrefix = "coverage:report:"

// RedisReportCache is a Redis-backed cache for solved reports, keyed by
// instance fingerprint. Solves are deterministic, so entries never go
// stale; the TTL only bounds memory on long-running deployments.
type RedisReportCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisReportCache(client *redis.Client, ttl time.Duration) *RedisReportCache {
	return &RedisReportCache{Client: client, TTL: ttl}
}

// Look up a cached report for the given fingerprint.
func (c *RedisReportCache) Get(ctx context.Context, key string) (_ *solver.Report, _ bool, err error) {
	defer obs.Time(ctx, "report.cache.Get")(&err)

	if c.Client == nil {
		return nil, false, errors.New("report cache: client is nil")
	}
	if key == "" {
		return nil, false, errors.New("report cache: key must not be empty")
	}

	payload, err := c.Client.Get(ctx, reportKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get report cache: fetch %q: %w", key, err)
	}

	var report solver.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("get report cache: decode %q: %w", key, err)
	}

	return &report, true, nil
}

// Store a report under the given fingerprint.
func (c *RedisReportCache) Put(ctx context.Context, key string, report *solver.Report) (err error) {
	defer obs.Time(ctx, "report.cache.Put")(&err)

	if c.Client == nil {
		return errors.New("report cache: client is nil")
	}
	if key == "" {
		return errors.New("report cache: key must not be empty")
	}
	if report == nil {
		return errors.New("report cache: report must be non-nil")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("put report cache: encode %q: %w", key, err)
	}

	if err := c.Client.Set(ctx, reportKeyPrefix+key, payload, c.TTL).Err(); err != nil {
		return fmt.Errorf("put report cache: store %q: %w", key, err)
	}

	return nil
}
