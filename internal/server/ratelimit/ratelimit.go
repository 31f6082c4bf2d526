// Package ratelimit provides per-client, per-endpoint rate limiting: token
// buckets in memory, or fixed windows in Redis when one is attached.
package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonathan/career-admin/internal/logging"
)

// TokenBucket allows a burst of requests and refills at a steady rate.
type TokenBucket struct {
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

func newTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill)
	tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed.Seconds()*tb.refillRate)
	tb.lastRefill = now
}

// take consumes a token if one is available and reports the bucket state afterwards
func (tb *TokenBucket) take() (allowed bool, remaining int, resetTime time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.refill(now)

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		allowed = true
	}

	remaining = int(tb.tokens)
	resetTime = now
	if tb.tokens < float64(tb.capacity) {
		secondsUntilFull := (float64(tb.capacity) - tb.tokens) / tb.refillRate
		resetTime = now.Add(time.Duration(secondsUntilFull * float64(time.Second)))
	}
	return allowed, remaining, resetTime
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Store is a shared counter backend. Take counts one request against key
// and returns the count within the current window and when the window ends.
type Store interface {
	Take(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

// Limiter manages rate limiting for multiple clients.
type Limiter struct {
	config *Config
	store  Store // nil keeps everything in memory
	logger *slog.Logger

	buckets    map[string]*TokenBucket
	lastAccess map[string]time.Time
	mu         sync.Mutex

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// Option customizes a Limiter
type Option func(*Limiter)

// WithStore counts requests in a shared store. The in-memory buckets remain
// as the fallback when the store errors.
func WithStore(s Store) Option {
	return func(l *Limiter) { l.store = s }
}

// WithLogger sets the logger used for store failures and rejections
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) { l.logger = logger }
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config, opts ...Option) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    600,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}

	l := &Limiter{
		config:     config,
		buckets:    make(map[string]*TokenBucket),
		lastAccess: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.OrDiscard(l.logger)

	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanup()
	}

	return l
}

// Allow checks if a request from the given client is allowed for the endpoint.
func (l *Limiter) Allow(ctx context.Context, clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	ep := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	key := clientID + ":" + method + ":" + endpoint
	if ep == nil {
		ep = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	} else {
		// Prefix entries share one budget across the paths they cover
		key = clientID + ":" + method + ":" + ep.Path
	}
	if ep.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	if l.store != nil {
		info, err := l.allowStore(ctx, key, ep)
		if err == nil {
			return info.Allowed, info
		}
		l.logger.Warn("rate limit store unavailable, using in-memory limiter", "error", err)
	}

	info := l.allowMemory(key, ep)
	return info.Allowed, info
}

func (l *Limiter) allowStore(ctx context.Context, key string, ep *EndpointConfig) (Info, error) {
	count, resetAt, err := l.store.Take(ctx, l.config.RedisKeyPrefix+key, ep.Window)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		Allowed:   count <= ep.Limit,
		Limit:     ep.Limit,
		Remaining: max(ep.Limit-count, 0),
		ResetTime: resetAt,
	}
	if !info.Allowed {
		info.RetryAfter = max(time.Until(resetAt), time.Second)
	}
	return info, nil
}

func (l *Limiter) allowMemory(key string, ep *EndpointConfig) Info {
	bucket := l.getBucket(key, ep)
	allowed, remaining, resetTime := bucket.take()

	info := Info{
		Allowed:   allowed,
		Limit:     ep.Limit,
		Remaining: remaining,
		ResetTime: resetTime,
	}
	if !allowed {
		// One token arrives after 1/refillRate seconds
		info.RetryAfter = time.Duration(float64(time.Second) / bucket.refillRate)
	}
	return info
}

// getBucket gets or creates the token bucket for key.
func (l *Limiter) getBucket(key string, ep *EndpointConfig) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastAccess[key] = time.Now()
	if bucket, ok := l.buckets[key]; ok {
		return bucket
	}

	capacity := ep.Burst
	if capacity <= 0 {
		capacity = ep.Limit
	}
	bucket := newTokenBucket(capacity, float64(ep.Limit)/ep.Window.Seconds())
	l.buckets[key] = bucket
	return bucket
}

func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupBuckets(time.Now().Add(-time.Hour))
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupBuckets drops buckets not used since cutoff.
func (l *Limiter) cleanupBuckets(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, last := range l.lastAccess {
		if last.Before(cutoff) {
			delete(l.buckets, key)
			delete(l.lastAccess, key)
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
