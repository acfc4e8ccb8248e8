package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"street-bites/pkg/domain"
	"street-bites/storefront-svc/internal/metrics"
	"street-bites/storefront-svc/internal/service"
)

type degradedKey struct{}

// WithDegradedFlag attaches a flag that catalog reads set when they were
// served from the snapshot instead of the store.
func WithDegradedFlag(ctx context.Context) context.Context {
	return context.WithValue(ctx, degradedKey{}, new(atomic.Bool))
}

func Degraded(ctx context.Context) bool {
	flag, ok := ctx.Value(degradedKey{}).(*atomic.Bool)
	return ok && flag.Load()
}

func markDegraded(ctx context.Context, collection string) {
	metrics.DegradedReads.WithLabelValues(collection).Inc()
	if flag, ok := ctx.Value(degradedKey{}).(*atomic.Bool); ok {
		flag.Store(true)
	}
}

// FallbackRepository serves catalog reads from a snapshot while the primary
// store is failing. Orders and login requests never fall back, and every
// failed write surfaces as domain.ErrStoreUnavailable.
type FallbackRepository struct {
	primary     service.Store
	snapshot    domain.Catalog
	seedOnEmpty bool

	seedMu sync.Mutex
	seeded bool
}

func NewFallbackRepository(primary service.Store, snapshot domain.Catalog, seedOnEmpty bool) *FallbackRepository {
	return &FallbackRepository{primary: primary, snapshot: snapshot, seedOnEmpty: seedOnEmpty}
}

func unavailable(op string, err error) error {
	if err == nil || errors.Is(err, domain.ErrNotFound) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

func (r *FallbackRepository) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	items, err := r.primary.ListMenuItems(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		log.Printf("[storage] menu read failed, serving snapshot: %v", err)
		markDegraded(ctx, menuCollection)
		return append([]domain.MenuItem(nil), r.snapshot.Menu...), nil
	}
	if len(items) == 0 && r.seedOnEmpty && r.claimSeed() {
		log.Printf("[storage] menu is empty, seeding %d items from snapshot", len(r.snapshot.Menu))
		if err := r.primary.SeedCatalog(ctx, r.snapshot); err != nil {
			log.Printf("[storage] seed on empty failed: %v", err)
			r.releaseSeed()
			return items, nil
		}
		return r.primary.ListMenuItems(ctx)
	}
	return items, nil
}

func (r *FallbackRepository) claimSeed() bool {
	r.seedMu.Lock()
	defer r.seedMu.Unlock()
	if r.seeded {
		return false
	}
	r.seeded = true
	return true
}

func (r *FallbackRepository) releaseSeed() {
	r.seedMu.Lock()
	r.seeded = false
	r.seedMu.Unlock()
}

func (r *FallbackRepository) UpsertMenuItem(ctx context.Context, item domain.MenuItem) error {
	return unavailable("upsert menu item", r.primary.UpsertMenuItem(ctx, item))
}

func (r *FallbackRepository) DeleteMenuItem(ctx context.Context, id string) (int64, error) {
	n, err := r.primary.DeleteMenuItem(ctx, id)
	return n, unavailable("delete menu item", err)
}

func (r *FallbackRepository) DeleteMenuItemsByCategory(ctx context.Context, category string) (int64, error) {
	n, err := r.primary.DeleteMenuItemsByCategory(ctx, category)
	return n, unavailable("delete category", err)
}

func (r *FallbackRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := r.primary.ListOrders(ctx)
	return orders, unavailable("list orders", err)
}

func (r *FallbackRepository) ListOrdersSince(ctx context.Context, since time.Time) ([]domain.Order, error) {
	orders, err := r.primary.ListOrdersSince(ctx, since)
	return orders, unavailable("list orders", err)
}

func (r *FallbackRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := r.primary.GetOrder(ctx, id)
	return order, unavailable("get order", err)
}

func (r *FallbackRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	return unavailable("create order", r.primary.CreateOrder(ctx, order))
}

func (r *FallbackRepository) UpdateOrderStatus(ctx context.Context, id string, current, next domain.OrderStatus) (bool, error) {
	ok, err := r.primary.UpdateOrderStatus(ctx, id, current, next)
	return ok, unavailable("update order status", err)
}

func (r *FallbackRepository) DeleteOrdersOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := r.primary.DeleteOrdersOlderThan(ctx, cutoff)
	return n, unavailable("purge orders", err)
}

func (r *FallbackRepository) GetLocation(ctx context.Context) (*domain.LocationData, error) {
	loc, err := r.primary.GetLocation(ctx)
	switch {
	case err == nil:
		return loc, nil
	case errors.Is(err, domain.ErrNotFound):
		seed := r.snapshot.Location
		if err := r.primary.SaveLocation(ctx, seed); err != nil {
			log.Printf("[storage] seed location failed: %v", err)
		}
		return &seed, nil
	case errors.Is(err, context.Canceled):
		return nil, err
	default:
		log.Printf("[storage] location read failed, serving snapshot: %v", err)
		markDegraded(ctx, settingsCollection)
		seed := r.snapshot.Location
		return &seed, nil
	}
}

func (r *FallbackRepository) SaveLocation(ctx context.Context, loc domain.LocationData) error {
	return unavailable("save location", r.primary.SaveLocation(ctx, loc))
}

func (r *FallbackRepository) ListOffers(ctx context.Context) ([]domain.SpecialOffer, error) {
	offers, err := r.primary.ListOffers(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		log.Printf("[storage] offers read failed, serving snapshot: %v", err)
		markDegraded(ctx, offersCollection)
		return append([]domain.SpecialOffer(nil), r.snapshot.Offers...), nil
	}
	return offers, nil
}

func (r *FallbackRepository) UpsertOffer(ctx context.Context, offer domain.SpecialOffer) error {
	return unavailable("upsert offer", r.primary.UpsertOffer(ctx, offer))
}

func (r *FallbackRepository) DeleteOffer(ctx context.Context, id string) (int64, error) {
	n, err := r.primary.DeleteOffer(ctx, id)
	return n, unavailable("delete offer", err)
}

func (r *FallbackRepository) CreateLoginRequest(ctx context.Context, req *domain.LoginRequest) error {
	return unavailable("create login request", r.primary.CreateLoginRequest(ctx, req))
}

func (r *FallbackRepository) GetLoginRequest(ctx context.Context, id string) (*domain.LoginRequest, error) {
	req, err := r.primary.GetLoginRequest(ctx, id)
	return req, unavailable("get login request", err)
}

func (r *FallbackRepository) SetLoginRequestStatus(ctx context.Context, id string, current, next domain.LoginStatus) (bool, error) {
	ok, err := r.primary.SetLoginRequestStatus(ctx, id, current, next)
	return ok, unavailable("set login request status", err)
}

func (r *FallbackRepository) IncrementLoginAttempts(ctx context.Context, id string) (int, error) {
	n, err := r.primary.IncrementLoginAttempts(ctx, id)
	return n, unavailable("record login attempt", err)
}

func (r *FallbackRepository) SeedCatalog(ctx context.Context, catalog domain.Catalog) error {
	return unavailable("seed catalog", r.primary.SeedCatalog(ctx, catalog))
}

var (
	_ service.Store = (*FallbackRepository)(nil)
	_ service.Store = (*PostgresRepository)(nil)
	_ service.Store = (*MongoRepository)(nil)
)
