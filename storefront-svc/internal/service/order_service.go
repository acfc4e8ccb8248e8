package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"street-bites/pkg/domain"
	"street-bites/storefront-svc/internal/metrics"
	"street-bites/storefront-svc/internal/ratelimit"
	"street-bites/storefront-svc/internal/validation"
)

type OrderService struct {
	repo      OrderRepository
	limiter   *ratelimit.Limiter
	publisher EventPublisher
	qr        QRGenerator
	ids       OrderIDs
	now       func() time.Time
}

func NewOrderService(repo OrderRepository, limiter *ratelimit.Limiter, publisher EventPublisher, qr QRGenerator) *OrderService {
	return &OrderService{
		repo:      repo,
		limiter:   limiter,
		publisher: publisher,
		qr:        qr,
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// Place admits a checkout: quota first, then field bounds, then text
// scrubbing. The submitted total is stored as is.
func (s *OrderService) Place(ctx context.Context, clientID string, req domain.PlaceOrderRequest) (*domain.Order, error) {
	if s.limiter != nil {
		if err := s.limiter.Allow(ctx, clientID); err != nil {
			metrics.RateLimited.WithLabelValues(s.limiter.Policy).Inc()
			return nil, err
		}
	}

	req, err := validation.Order(req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &domain.Order{
		ID:           s.ids.Next(now),
		CustomerName: req.CustomerName,
		Items:        make([]domain.OrderItem, 0, len(req.Items)),
		Total:        *req.Total,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		Notes:        req.Notes,
		DeviceID:     req.DeviceID,
	}
	for _, line := range req.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:       line.ID,
			Name:     line.Name,
			Price:    *line.Price,
			Quantity: *line.Quantity,
		})
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		log.Printf("[orders] create %s failed: %v", order.ID, err)
		return nil, fmt.Errorf("create order: %w", err)
	}
	metrics.OrdersPlaced.Inc()
	log.Printf("[orders] placed %s (%s) total=%.2f lines=%d", order.ID, order.FormattedOrderID, order.Total, len(order.Items))

	s.publish(ctx, domain.OrderEvent{
		Type:    domain.EventOrderCreated,
		OrderID: order.ID,
		Status:  order.Status,
		Items:   order.Items,
		Total:   order.Total,
	})
	return order, nil
}

// ListActive returns orders the kitchen has not completed, newest first.
// A non-empty deviceID narrows the list to that device's orders.
func (s *OrderService) ListActive(ctx context.Context, deviceID string) ([]domain.Order, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if !o.Active() {
			continue
		}
		if deviceID != "" && o.DeviceID != deviceID {
			continue
		}
		active = append(active, o)
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	return active, nil
}

func (s *OrderService) SetStatus(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	current := order.Status
	if err := domain.ValidateTransition(current, next); err != nil {
		return nil, err
	}

	ok, err := s.repo.UpdateOrderStatus(ctx, id, current, next)
	if err != nil {
		log.Printf("[orders] update %s %s->%s failed: %v", id, current, next, err)
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if !ok {
		return nil, ErrStatusConflict
	}

	order.Status = next
	metrics.OrderTransitions.WithLabelValues(string(current), string(next)).Inc()
	log.Printf("[orders] %s %s -> %s", id, current, next)

	s.publish(ctx, domain.OrderEvent{
		Type:           domain.EventOrderStatusChanged,
		OrderID:        id,
		Status:         next,
		PreviousStatus: current,
		Total:          order.Total,
	})
	return order, nil
}

// Purge deletes orders older than days. Zero days deletes every order.
func (s *OrderService) Purge(ctx context.Context, days int) (int64, error) {
	if days < 0 {
		return 0, validation.Invalid("days", "must be at least 0")
	}

	var cutoff time.Time
	if days > 0 {
		cutoff = s.now().AddDate(0, 0, -days)
	}

	deleted, err := s.repo.DeleteOrdersOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("[orders] purge older than %d days failed: %v", days, err)
		return 0, fmt.Errorf("purge orders: %w", err)
	}
	metrics.OrdersPurged.Add(float64(deleted))
	log.Printf("[orders] purged %d orders older than %d days", deleted, days)

	s.publish(ctx, domain.OrderEvent{Type: domain.EventOrdersPurged, Purged: deleted})
	return deleted, nil
}

func (s *OrderService) PickupQR(ctx context.Context, id string) ([]byte, error) {
	if s.qr == nil {
		return nil, errors.New("qr generator not configured")
	}
	if _, err := s.repo.GetOrder(ctx, id); err != nil {
		return nil, err
	}
	return s.qr.Generate(id)
}

// publish failures are logged and never fail the caller.
func (s *OrderService) publish(ctx context.Context, event domain.OrderEvent) {
	if s.publisher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		metrics.EventPublishFailures.Inc()
		log.Printf("[orders] publish %s for %q failed: %v", event.Type, event.OrderID, err)
	}
}

var _ OrderServiceInterface = (*OrderService)(nil)
