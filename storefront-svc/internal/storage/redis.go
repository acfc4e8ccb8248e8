package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"street-bites/pkg/domain"
	"street-bites/pkg/tally"
	"street-bites/storefront-svc/internal/ratelimit"
	"street-bites/storefront-svc/internal/service"
)

const rateLimitPrefix = "ratelimit:"

// RedisCounterStore shares rate-limit windows between storefront instances.
type RedisCounterStore struct {
	Client *redis.Client
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{Client: client}
}

// Increment bumps the counter and starts its window on first use. The
// expiry is only set when the key has none, so the window stays fixed.
func (s *RedisCounterStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	key = rateLimitPrefix + key
	pipe := s.Client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	return incr.Val(), remaining(ttl.Val(), window), nil
}

func (s *RedisCounterStore) Get(ctx context.Context, key string) (int64, time.Duration, error) {
	key = rateLimitPrefix + key
	count, err := s.Client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	ttl, err := s.Client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	return count, remaining(ttl, 0), nil
}

func (s *RedisCounterStore) Reset(ctx context.Context, key string) error {
	return s.Client.Del(ctx, rateLimitPrefix+key).Err()
}

// remaining maps the PTTL sentinels (-1 no expiry, -2 missing) to fallback.
func remaining(ttl, fallback time.Duration) time.Duration {
	if ttl < 0 {
		return fallback
	}
	return ttl
}

// RedisTallyReader reads the daily counters tally-svc maintains.
type RedisTallyReader struct {
	Client *redis.Client
}

func NewRedisTallyReader(client *redis.Client) *RedisTallyReader {
	return &RedisTallyReader{Client: client}
}

func (r *RedisTallyReader) DailyTally(ctx context.Context, day string, topN int) (*domain.DailyTally, error) {
	result := &domain.DailyTally{
		Date:     day,
		TopItems: []domain.ItemCount{},
		Statuses: map[string]int64{},
	}

	top, err := r.Client.ZRevRangeWithScores(ctx, tally.ItemsKey(day), 0, int64(topN-1)).Result()
	if err != nil {
		return nil, err
	}
	for _, z := range top {
		name, _ := z.Member.(string)
		result.TopItems = append(result.TopItems, domain.ItemCount{Name: name, Quantity: int64(z.Score)})
	}

	revenue, err := r.Client.Get(ctx, tally.RevenueKey(day)).Float64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	result.Revenue = revenue

	statuses, err := r.Client.HGetAll(ctx, tally.StatusKey(day)).Result()
	if err != nil {
		return nil, err
	}
	for status, raw := range statuses {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		result.Statuses[status] = n
	}
	return result, nil
}

var (
	_ ratelimit.CounterStore = (*RedisCounterStore)(nil)
	_ service.TallyReader    = (*RedisTallyReader)(nil)
)

// NopTallyReader answers with empty tallies when no Redis is configured.
type NopTallyReader struct{}

func (NopTallyReader) DailyTally(_ context.Context, day string, _ int) (*domain.DailyTally, error) {
	return &domain.DailyTally{Date: day, TopItems: []domain.ItemCount{}, Statuses: map[string]int64{}}, nil
}

var _ service.TallyReader = NopTallyReader{}
