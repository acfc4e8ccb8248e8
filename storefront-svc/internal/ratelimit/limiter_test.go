package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"street-bites/config"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type brokenStore struct{}

func (brokenStore) Increment(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("connection refused")
}
func (brokenStore) Get(context.Context, string) (int64, time.Duration, error) {
	return 0, 0, errors.New("connection refused")
}
func (brokenStore) Reset(context.Context, string) error { return errors.New("connection refused") }

func TestLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStoreWithClock(clock.Now)
	limiter := NewLimiter("orders", config.Policy{Limit: 10, Window: 15 * time.Minute}, store)

	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.Allow(ctx, "1.2.3.4"), "request %d", i+1)
	}

	err := limiter.Allow(ctx, "1.2.3.4")
	var rlErr *Error
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "orders", rlErr.Policy)
	assert.Equal(t, 15*time.Minute, rlErr.RetryAfter)

	assert.NoError(t, limiter.Allow(ctx, "5.6.7.8"), "other clients keep their own quota")

	clock.Advance(15 * time.Minute)
	assert.NoError(t, limiter.Allow(ctx, "1.2.3.4"), "quota resets with the window")
}

func TestLimiter_PoliciesDoNotShareCounters(t *testing.T) {
	ctx := context.Background()
	set := NewSet(config.RateLimits{
		General: config.Policy{Limit: 100, Window: time.Minute},
		Orders:  config.Policy{Limit: 1, Window: time.Minute},
		Login:   config.Policy{Limit: 1, Window: time.Minute},
		Upload:  config.Policy{Limit: 1, Window: time.Minute},
	}, NewMemoryStore())

	require.NoError(t, set.Orders.Allow(ctx, "c"))
	assert.Error(t, set.Orders.Allow(ctx, "c"))
	assert.NoError(t, set.Upload.Allow(ctx, "c"))
	assert.NoError(t, set.General.Allow(ctx, "c"))
}

func TestLimiter_FailedLoginsOnly(t *testing.T) {
	ctx := context.Background()
	limiter := NewLimiter("login", config.Policy{Limit: 5, Window: 15 * time.Minute}, NewMemoryStore())

	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Check(ctx, "ip"))
		limiter.Hit(ctx, "ip")
	}
	assert.Error(t, limiter.Check(ctx, "ip"))

	limiter.Reset(ctx, "ip")
	assert.NoError(t, limiter.Check(ctx, "ip"))
}

func TestLimiter_FailsOpen(t *testing.T) {
	ctx := context.Background()
	limiter := NewLimiter("general", config.Policy{Limit: 1, Window: time.Minute}, brokenStore{})

	for i := 0; i < 3; i++ {
		assert.NoError(t, limiter.Allow(ctx, "ip"))
		assert.NoError(t, limiter.Check(ctx, "ip"))
	}
	limiter.Hit(ctx, "ip")
	limiter.Reset(ctx, "ip")
}

func TestMemoryStore_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = store.Increment(ctx, "k", time.Minute)
		}()
	}
	wg.Wait()

	count, ttl, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(50), count)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestMemoryStore_SweepsExpired(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(0, 0)}
	store := NewMemoryStoreWithClock(clock.Now)

	_, _, _ = store.Increment(ctx, "a", time.Second)
	clock.Advance(2 * time.Minute)
	_, _, _ = store.Increment(ctx, "b", time.Second)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.NotContains(t, store.counters, "a")
	assert.Contains(t, store.counters, "b")
}
