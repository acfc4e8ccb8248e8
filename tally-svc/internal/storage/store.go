package storage

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"street-bites/pkg/domain"
	"street-bites/pkg/tally"
	"street-bites/tally-svc/internal/service"
)

type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) MarkSeen(ctx context.Context, eventID string) (bool, error) {
	return s.rdb.SetNX(ctx, tally.SeenKey(eventID), 1, tally.Retention).Result()
}

func (s *Store) Forget(ctx context.Context, eventID string) error {
	return s.rdb.Del(ctx, tally.SeenKey(eventID)).Err()
}

// RecordOrder counts a new order: item quantities by name, revenue, and one
// more pending order.
func (s *Store) RecordOrder(ctx context.Context, day string, items []domain.OrderItem, total float64) error {
	itemsKey := tally.ItemsKey(day)
	revenueKey := tally.RevenueKey(day)
	statusKey := tally.StatusKey(day)

	pipe := s.rdb.TxPipeline()
	for _, item := range items {
		if item.Quantity <= 0 || item.Name == "" {
			continue
		}
		pipe.ZIncrBy(ctx, itemsKey, float64(item.Quantity), item.Name)
	}
	amount, _ := decimal.NewFromFloat(total).Round(2).Float64()
	pipe.IncrByFloat(ctx, revenueKey, amount)
	pipe.HIncrBy(ctx, statusKey, string(domain.StatusPending), 1)
	for _, key := range []string{itemsKey, revenueKey, statusKey} {
		pipe.Expire(ctx, key, tally.Retention)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) RecordStatus(ctx context.Context, day string, status domain.OrderStatus) error {
	key := tally.StatusKey(day)
	pipe := s.rdb.TxPipeline()
	pipe.HIncrBy(ctx, key, string(status), 1)
	pipe.Expire(ctx, key, tally.Retention)
	_, err := pipe.Exec(ctx)
	return err
}

var _ service.TallyStore = (*Store)(nil)
