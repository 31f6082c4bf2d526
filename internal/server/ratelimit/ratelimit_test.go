package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestTokenBucket_Take(t *testing.T) {
	bucket := newTokenBucket(10, 1.0) // 10 tokens, 1 token per second

	for i := 0; i < 10; i++ {
		if allowed, _, _ := bucket.take(); !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	allowed, remaining, resetTime := bucket.take()
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", remaining)
	}
	if !resetTime.After(time.Now()) {
		t.Error("Reset time should be in the future")
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	bucket := newTokenBucket(10, 1.0)
	for i := 0; i < 10; i++ {
		bucket.take()
	}

	// Simulate one second passing
	bucket.mu.Lock()
	bucket.lastRefill = bucket.lastRefill.Add(-1100 * time.Millisecond)
	bucket.mu.Unlock()

	if allowed, _, _ := bucket.take(); !allowed {
		t.Error("Expected request to be allowed after refill")
	}
	if allowed, _, _ := bucket.take(); allowed {
		t.Error("Expected request to be denied after consuming refilled token")
	}
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow(context.Background(), "127.0.0.1", "/skills", "GET")
		if !allowed {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
		if info.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", info.Limit)
		}
	}

	allowed, info := limiter.Allow(context.Background(), "127.0.0.1", "/skills", "GET")
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if info.RetryAfter <= 0 {
		t.Error("Expected a positive RetryAfter when denied")
	}

	// Other clients have their own budget
	if allowed, _ := limiter.Allow(context.Background(), "10.0.0.2", "/skills", "GET"); !allowed {
		t.Error("Expected a different client to be allowed")
	}
}

func TestLimiter_WhitelistBlacklist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.9": true},
	})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		if allowed, _ := limiter.Allow(context.Background(), "10.0.0.1", "/skills", "GET"); !allowed {
			t.Error("Expected whitelisted client to be allowed")
		}
	}
	if allowed, _ := limiter.Allow(context.Background(), "10.0.0.9", "/skills", "GET"); allowed {
		t.Error("Expected blacklisted client to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		if allowed, _ := limiter.Allow(context.Background(), "127.0.0.1", "/drafts/resume", "POST"); !allowed {
			t.Fatal("Expected all requests to be allowed when disabled")
		}
	}
}

func TestLimiter_PrefixEndpointsShareBudget(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/drafts/", Method: "POST", Limit: 2, Window: time.Hour, Burst: 2},
		},
	})
	defer limiter.Stop()

	ctx := context.Background()
	limiter.Allow(ctx, "c", "/drafts/resume", "POST")
	limiter.Allow(ctx, "c", "/drafts/cover_letter", "POST")
	if allowed, _ := limiter.Allow(ctx, "c", "/drafts/question_answer/revise", "POST"); allowed {
		t.Error("Expected drafts of every kind to share one budget")
	}

	// GET falls through to the default limit
	if allowed, _ := limiter.Allow(ctx, "c", "/drafts/resume", "GET"); !allowed {
		t.Error("Expected GET to use the default limit")
	}
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		if allowed, _ := limiter.Allow(context.Background(), "c", "/health", "GET"); !allowed {
			t.Fatal("Expected /health to be unlimited")
		}
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 50, DefaultWindow: time.Hour})
	defer limiter.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow(context.Background(), "c", "/skills", "GET"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("Expected exactly 50 allowed requests, got %d", allowed)
	}
}

func TestLimiter_CleanupBuckets(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		limiter.Allow(context.Background(), fmt.Sprintf("client-%d", i), "/skills", "GET")
	}

	limiter.cleanupBuckets(time.Now().Add(time.Minute))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if len(limiter.buckets) != 0 {
		t.Errorf("Expected all buckets removed, %d remain", len(limiter.buckets))
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(nil)
	limiter.Stop()
	limiter.Stop()
}

// countingStore is an in-process Store with a fixed window
type countingStore struct {
	mu     sync.Mutex
	counts map[string]int
	keys   []string
	err    error
}

func (s *countingStore) Take(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, time.Time{}, s.err
	}
	if s.counts == nil {
		s.counts = map[string]int{}
	}
	s.counts[key]++
	s.keys = append(s.keys, key)
	return s.counts[key], time.Now().Add(window), nil
}

func TestLimiter_WithStore(t *testing.T) {
	store := &countingStore{}
	limiter := NewLimiter(&Config{
		Enabled:        true,
		DefaultLimit:   2,
		DefaultWindow:  time.Minute,
		RedisKeyPrefix: "test:",
	}, WithStore(store))
	defer limiter.Stop()

	ctx := context.Background()
	limiter.Allow(ctx, "c", "/skills", "GET")
	_, info := limiter.Allow(ctx, "c", "/skills", "GET")
	if info.Remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", info.Remaining)
	}

	allowed, info := limiter.Allow(ctx, "c", "/skills", "GET")
	if allowed {
		t.Error("Expected third request to be denied by the store")
	}
	if info.RetryAfter < time.Second {
		t.Errorf("Expected RetryAfter of at least a second, got %v", info.RetryAfter)
	}
	if store.keys[0] != "test:c:GET:/skills" {
		t.Errorf("Unexpected store key %q", store.keys[0])
	}
}

func TestLimiter_StoreFailureFallsBackToMemory(t *testing.T) {
	store := &countingStore{err: errors.New("connection refused")}
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute}, WithStore(store))
	defer limiter.Stop()

	if allowed, _ := limiter.Allow(context.Background(), "c", "/skills", "GET"); !allowed {
		t.Error("Expected first request to be allowed by the in-memory fallback")
	}
	if allowed, _ := limiter.Allow(context.Background(), "c", "/skills", "GET"); allowed {
		t.Error("Expected the in-memory fallback to enforce the limit")
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path, method string
		wantPath     string
	}{
		{"/assistant/chat", "POST", "/assistant/chat"},
		{"/drafts/resume", "POST", "/drafts/"},
		{"/experiences", "POST", "/experiences"},
		{"/experiences/123", "PUT", "/experiences/"},
		{"/experiences/123", "GET", ""},
		{"/auth/login", "POST", "/auth/login"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			switch {
			case tt.wantPath == "" && got != nil:
				t.Errorf("Expected no match, got %q", got.Path)
			case tt.wantPath != "" && (got == nil || got.Path != tt.wantPath):
				t.Errorf("Expected match %q, got %+v", tt.wantPath, got)
			}
		})
	}

	if got := MatchEndpoint("/health", "GET", configs); got == nil || got.Limit != 0 {
		t.Error("Expected /health to match the unlimited config")
	}
}

func TestParseIPList(t *testing.T) {
	got := parseIPList(" 10.0.0.1, ,10.0.0.2")
	if len(got) != 2 || !got["10.0.0.1"] || !got["10.0.0.2"] {
		t.Errorf("Unexpected parse result %v", got)
	}
	if len(parseIPList("")) != 0 {
		t.Error("Expected empty set for empty list")
	}
}
