package rate

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	// load lua script
	_ "embed"

	"github.com/agenthands/healthrisk/internal/config"
	"github.com/go-logr/logr"
	"github.com/redis/go-redis/v9"
)

// store is the interface that must be implemented by a rate limit store.
type store interface {
	// Take takes a specified number of tokens from the given key if available.
	Take(ctx context.Context, key string, cost int) (*Result, error)
}

// Result is the result of a Take call.
type Result struct {
	// Allowed is true if the token is available.
	Allowed bool
	// Limit is the maximum number of tokens.
	Limit int
	// Remaining is the number of remaining token.
	Remaining int
	// RetryAfter is the duration until the token is available.
	RetryAfter time.Duration
	// ResetAfter is the duration until the rate limit completely resets.
	ResetAfter time.Duration
}

//go:embed gcra_ratelimit.lua
var luaScript string

func newRedisStore(c config.RateLimitConfig, logger logr.Logger) store {
	log := logger.WithName("redis")
	log.Info("Initializing redis store...", "interval(sec)", c.IntervalSec(), "burst", c.Burst)
	return &redisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     c.Redis.Address,
			Username: c.Redis.Username,
			Password: c.Redis.Password,
			DB:       c.Redis.Database,
		}),
		script:      redis.NewScript(luaScript),
		intervalSec: c.IntervalSec(),
		burst:       c.Burst,
		burstOffset: c.BurstOffset(),
		logger:      log,
	}
}

// redisStore is a rate limit store backed by Redis, shared by all replicas.
type redisStore struct {
	client redis.Scripter
	script *redis.Script

	intervalSec float64
	burst       int
	burstOffset float64

	logger logr.Logger
}

// Take takes a specified number of tokens from the given key if available.
func (s *redisStore) Take(ctx context.Context, key string, cost int) (*Result, error) {
	res, err := s.script.Run(ctx, s.client,
		[]string{"rate:" + key},            // key
		s.intervalSec, cost, s.burstOffset, // args
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to run script: %w", err)
	}
	if len(res) != 4 {
		return nil, fmt.Errorf("unexpected script result: %v", res)
	}

	allowedStr, _ := res[0].(string)
	allowed, err := strconv.ParseBool(allowedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse allowed: %w", err)
	}
	remaining, _ := res[1].(int64)
	retryAfterStr, _ := res[2].(string)
	retryAfterSec, err := strconv.ParseFloat(retryAfterStr, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse retryAfter: %w", err)
	}
	resetAfterStr, _ := res[3].(string)
	resetAfterSec, err := strconv.ParseFloat(resetAfterStr, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse resetAfter: %w", err)
	}

	r := &Result{
		Allowed:    allowed,
		Limit:      s.burst,
		Remaining:  int(remaining),
		RetryAfter: seconds(retryAfterSec),
		ResetAfter: seconds(resetAfterSec),
	}
	s.logger.V(6).Info("RateLimit", "key", key, "allowed", allowed, "remaining", r.Remaining, "retryAfter", r.RetryAfter, "resetAfter", r.ResetAfter)
	return r, nil
}

func newMemoryStore(c config.RateLimitConfig, logger logr.Logger) *memoryStore {
	log := logger.WithName("memory")
	log.Info("Initializing memory store...", "interval(sec)", c.IntervalSec(), "burst", c.Burst)
	interval := seconds(c.IntervalSec())
	return &memoryStore{
		data:        map[string]time.Time{},
		now:         time.Now,
		interval:    interval,
		burst:       c.Burst,
		burstOffset: interval * time.Duration(c.Burst),
		logger:      log,
	}
}

// memoryStore is a rate limit store backed by memory. It keeps the
// theoretical arrival time of each key.
type memoryStore struct {
	data  map[string]time.Time
	mu    sync.Mutex
	now   func() time.Time
	takes int

	interval    time.Duration
	burst       int
	burstOffset time.Duration

	logger logr.Logger
}

// sweepEvery is how many takes pass between removals of fully reset keys.
const sweepEvery = 1024

// Take takes a specified number of tokens from the given key if available.
func (s *memoryStore) Take(ctx context.Context, key string, cost int) (*Result, error) {
	r := s.take(key, cost)
	s.logger.V(6).Info("RateLimit", "key", key, "allowed", r.Allowed, "remaining", r.Remaining, "retryAfter", r.RetryAfter, "resetAfter", r.ResetAfter)
	return r, nil
}

func (s *memoryStore) take(key string, cost int) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	s.takes++
	if s.takes%sweepEvery == 0 {
		for k, tat := range s.data {
			if !tat.After(now) {
				delete(s.data, k)
			}
		}
	}

	tat, exists := s.data[key]
	if !exists || tat.Before(now) {
		tat = now
	}

	newTat := tat.Add(s.interval * time.Duration(cost))
	allowAt := newTat.Add(-s.burstOffset)
	diff := now.Sub(allowAt)
	r := &Result{
		Limit:      s.burst,
		ResetAfter: newTat.Sub(now).Truncate(time.Second) + time.Second,
	}

	if diff < 0 {
		r.RetryAfter = -diff
		return r
	}

	s.data[key] = newTat
	r.Allowed = true
	r.Remaining = int(diff / s.interval)
	return r
}

// noopStore is a rate limit store that always allows the request.
type noopStore struct{}

// Take takes a specified number of tokens from the given key if available.
func (s *noopStore) Take(ctx context.Context, key string, cost int) (*Result, error) {
	return &Result{
		Allowed:    true,
		Limit:      -1,
		Remaining:  -1,
		RetryAfter: -1,
		ResetAfter: -1,
	}, nil
}

func seconds(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
