package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"street-bites/pkg/domain"
	"street-bites/storefront-svc/internal/validation"
)

// CatalogService manages what the truck sells and where it is parked.
// Admin edits are last-write-wins.
type CatalogService struct {
	menu     MenuRepository
	offers   OfferRepository
	location LocationRepository
	seeder   CatalogSeeder
	seed     domain.Catalog
}

func NewCatalogService(menu MenuRepository, offers OfferRepository, location LocationRepository, seeder CatalogSeeder, seed domain.Catalog) *CatalogService {
	return &CatalogService{
		menu:     menu,
		offers:   offers,
		location: location,
		seeder:   seeder,
		seed:     seed,
	}
}

func (s *CatalogService) Menu(ctx context.Context) ([]domain.MenuItem, error) {
	return s.menu.ListMenuItems(ctx)
}

func (s *CatalogService) UpsertMenuItem(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	item, err := validation.MenuItem(item)
	if err != nil {
		return nil, err
	}
	if err := s.menu.UpsertMenuItem(ctx, item); err != nil {
		log.Printf("[catalog] upsert menu item %s failed: %v", item.ID, err)
		return nil, fmt.Errorf("save menu item: %w", err)
	}
	return &item, nil
}

func (s *CatalogService) DeleteMenuItem(ctx context.Context, id string) error {
	deleted, err := s.menu.DeleteMenuItem(ctx, id)
	if err != nil {
		log.Printf("[catalog] delete menu item %s failed: %v", id, err)
		return fmt.Errorf("delete menu item: %w", err)
	}
	if deleted == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteCategory removes every item in the category in a single write.
func (s *CatalogService) DeleteCategory(ctx context.Context, category string) (int64, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return 0, validation.Invalid("category", "is required")
	}
	deleted, err := s.menu.DeleteMenuItemsByCategory(ctx, category)
	if err != nil {
		log.Printf("[catalog] delete category %q failed: %v", category, err)
		return 0, fmt.Errorf("delete category: %w", err)
	}
	log.Printf("[catalog] deleted %d items in category %q", deleted, category)
	return deleted, nil
}

func (s *CatalogService) Offers(ctx context.Context, activeOnly bool) ([]domain.SpecialOffer, error) {
	offers, err := s.offers.ListOffers(ctx)
	if err != nil {
		return nil, err
	}
	if !activeOnly {
		return offers, nil
	}
	active := make([]domain.SpecialOffer, 0, len(offers))
	for _, o := range offers {
		if o.Active {
			active = append(active, o)
		}
	}
	return active, nil
}

func (s *CatalogService) UpsertOffer(ctx context.Context, offer domain.SpecialOffer) (*domain.SpecialOffer, error) {
	offer, err := validation.Offer(offer)
	if err != nil {
		return nil, err
	}
	if err := s.offers.UpsertOffer(ctx, offer); err != nil {
		log.Printf("[catalog] upsert offer %s failed: %v", offer.ID, err)
		return nil, fmt.Errorf("save offer: %w", err)
	}
	return &offer, nil
}

func (s *CatalogService) DeleteOffer(ctx context.Context, id string) error {
	deleted, err := s.offers.DeleteOffer(ctx, id)
	if err != nil {
		log.Printf("[catalog] delete offer %s failed: %v", id, err)
		return fmt.Errorf("delete offer: %w", err)
	}
	if deleted == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *CatalogService) Location(ctx context.Context) (*domain.LocationData, error) {
	loc, err := s.location.GetLocation(ctx)
	if err != nil {
		return nil, err
	}
	if loc.IsOnline == nil {
		online := true
		loc.IsOnline = &online
	}
	return loc, nil
}

func (s *CatalogService) SaveLocation(ctx context.Context, loc domain.LocationData) (*domain.LocationData, error) {
	loc, err := validation.Location(loc)
	if err != nil {
		return nil, err
	}
	if err := s.location.SaveLocation(ctx, loc); err != nil {
		log.Printf("[catalog] save location failed: %v", err)
		return nil, fmt.Errorf("save location: %w", err)
	}
	return &loc, nil
}

// Seed overwrites the menu, location and offers with the bundled catalog.
func (s *CatalogService) Seed(ctx context.Context) error {
	if err := s.seeder.SeedCatalog(ctx, s.seed); err != nil {
		log.Printf("[catalog] seed failed: %v", err)
		return fmt.Errorf("seed catalog: %w", err)
	}
	log.Printf("[catalog] seeded %d menu items and %d offers", len(s.seed.Menu), len(s.seed.Offers))
	return nil
}

var _ CatalogServiceInterface = (*CatalogService)(nil)
