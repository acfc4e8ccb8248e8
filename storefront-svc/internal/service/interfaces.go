package service

import (
	"context"
	"io"
	"time"

	"street-bites/pkg/domain"
)

type MenuRepository interface {
	ListMenuItems(ctx context.Context) ([]domain.MenuItem, error)
	UpsertMenuItem(ctx context.Context, item domain.MenuItem) error
	DeleteMenuItem(ctx context.Context, id string) (int64, error)
	DeleteMenuItemsByCategory(ctx context.Context, category string) (int64, error)
}

type OrderRepository interface {
	// ListOrders returns every stored order, newest first.
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListOrdersSince(ctx context.Context, since time.Time) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	// CreateOrder stores the order and fills in its daily order number.
	CreateOrder(ctx context.Context, order *domain.Order) error
	// UpdateOrderStatus moves the order to next only if it is still in
	// current. It reports false when the order was changed concurrently.
	UpdateOrderStatus(ctx context.Context, id string, current, next domain.OrderStatus) (bool, error)
	// DeleteOrdersOlderThan removes orders created before cutoff; a zero
	// cutoff removes them all.
	DeleteOrdersOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type LocationRepository interface {
	GetLocation(ctx context.Context) (*domain.LocationData, error)
	SaveLocation(ctx context.Context, loc domain.LocationData) error
}

type OfferRepository interface {
	ListOffers(ctx context.Context) ([]domain.SpecialOffer, error)
	UpsertOffer(ctx context.Context, offer domain.SpecialOffer) error
	DeleteOffer(ctx context.Context, id string) (int64, error)
}

type LoginRequestRepository interface {
	CreateLoginRequest(ctx context.Context, req *domain.LoginRequest) error
	GetLoginRequest(ctx context.Context, id string) (*domain.LoginRequest, error)
	SetLoginRequestStatus(ctx context.Context, id string, current, next domain.LoginStatus) (bool, error)
	IncrementLoginAttempts(ctx context.Context, id string) (int, error)
}

// CatalogSeeder replaces the menu, location and offers in one write.
type CatalogSeeder interface {
	SeedCatalog(ctx context.Context, catalog domain.Catalog) error
}

// Store is the full persistence gateway.
type Store interface {
	MenuRepository
	OrderRepository
	LocationRepository
	OfferRepository
	LoginRequestRepository
	CatalogSeeder
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}

type TallyReader interface {
	DailyTally(ctx context.Context, day string, topN int) (*domain.DailyTally, error)
}

// ApprovalNotifier delivers the approve/reject links and one-time code of
// a pending admin login to the owner.
type ApprovalNotifier interface {
	NotifyLoginRequest(ctx context.Context, req domain.LoginRequest, approveURL, rejectURL string) error
}

type OrderServiceInterface interface {
	Place(ctx context.Context, clientID string, req domain.PlaceOrderRequest) (*domain.Order, error)
	ListActive(ctx context.Context, deviceID string) ([]domain.Order, error)
	SetStatus(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error)
	Purge(ctx context.Context, days int) (int64, error)
	PickupQR(ctx context.Context, id string) ([]byte, error)
}

type CatalogServiceInterface interface {
	Menu(ctx context.Context) ([]domain.MenuItem, error)
	UpsertMenuItem(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) error
	DeleteCategory(ctx context.Context, category string) (int64, error)
	Offers(ctx context.Context, activeOnly bool) ([]domain.SpecialOffer, error)
	UpsertOffer(ctx context.Context, offer domain.SpecialOffer) (*domain.SpecialOffer, error)
	DeleteOffer(ctx context.Context, id string) error
	Location(ctx context.Context) (*domain.LocationData, error)
	SaveLocation(ctx context.Context, loc domain.LocationData) (*domain.LocationData, error)
	Seed(ctx context.Context) error
}

type ReportServiceInterface interface {
	RecentOrders(ctx context.Context) ([]domain.Order, error)
	Weekly(ctx context.Context) (*Report, error)
	WriteCSV(w io.Writer, report *Report) error
}

type AuthServiceInterface interface {
	Login(ctx context.Context, clientID, password string) (*LoginResult, error)
	Approve(ctx context.Context, id, token string) error
	Reject(ctx context.Context, id, token string) error
	Verify(ctx context.Context, id, code string) (*Session, error)
	Status(ctx context.Context, id string) (domain.LoginStatus, *Session, error)
	Authenticate(token string) error
}

type StatsServiceInterface interface {
	Day(ctx context.Context, date string) (*domain.DailyTally, error)
}
