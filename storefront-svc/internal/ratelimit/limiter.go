// Package ratelimit enforces fixed-window request quotas keyed by client.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"street-bites/config"
)

// CounterStore holds per-key hit counters that expire with their window.
// Implementations must be safe for concurrent use; a shared store makes the
// quota hold across every server instance.
type CounterStore interface {
	// Increment adds one hit and returns the new count and the time left in
	// the window. The window starts on the first hit.
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Get(ctx context.Context, key string) (int64, time.Duration, error)
	Reset(ctx context.Context, key string) error
}

// Error is returned when a client has used up its quota.
type Error struct {
	Policy     string
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry in %s", e.Policy, e.RetryAfter.Round(time.Second))
}

type Limiter struct {
	Policy string
	Limit  int64
	Window time.Duration
	store  CounterStore
}

func NewLimiter(policy string, p config.Policy, store CounterStore) *Limiter {
	return &Limiter{Policy: policy, Limit: int64(p.Limit), Window: p.Window, store: store}
}

func (l *Limiter) key(clientID string) string {
	return l.Policy + ":" + clientID
}

// Allow records a hit and rejects it once the client is over quota.
// Counter store failures let the request through.
func (l *Limiter) Allow(ctx context.Context, clientID string) error {
	count, ttl, err := l.store.Increment(ctx, l.key(clientID), l.Window)
	if err != nil {
		log.Printf("[ratelimit] %s: counter store failed, allowing: %v", l.Policy, err)
		return nil
	}
	if count > l.Limit {
		return &Error{Policy: l.Policy, RetryAfter: ttl}
	}
	return nil
}

// Check reports whether the client is already over quota without recording
// a hit. Used where only failures count, such as login attempts.
func (l *Limiter) Check(ctx context.Context, clientID string) error {
	count, ttl, err := l.store.Get(ctx, l.key(clientID))
	if err != nil {
		log.Printf("[ratelimit] %s: counter store failed, allowing: %v", l.Policy, err)
		return nil
	}
	if count >= l.Limit {
		return &Error{Policy: l.Policy, RetryAfter: ttl}
	}
	return nil
}

// Hit records a hit without judging it.
func (l *Limiter) Hit(ctx context.Context, clientID string) {
	if _, _, err := l.store.Increment(ctx, l.key(clientID), l.Window); err != nil {
		log.Printf("[ratelimit] %s: failed to record hit: %v", l.Policy, err)
	}
}

func (l *Limiter) Reset(ctx context.Context, clientID string) {
	if err := l.store.Reset(ctx, l.key(clientID)); err != nil {
		log.Printf("[ratelimit] %s: failed to reset: %v", l.Policy, err)
	}
}

// Set bundles the limiters the storefront applies.
type Set struct {
	General *Limiter
	Orders  *Limiter
	Login   *Limiter
	Upload  *Limiter
}

func NewSet(limits config.RateLimits, store CounterStore) *Set {
	return &Set{
		General: NewLimiter("general", limits.General, store),
		Orders:  NewLimiter("orders", limits.Orders, store),
		Login:   NewLimiter("login", limits.Login, store),
		Upload:  NewLimiter("upload", limits.Upload, store),
	}
}
