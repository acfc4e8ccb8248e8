package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"street-bites/pkg/domain"
)

const locationKey = "location"

// PostgresRepository keeps each record as a JSONB document next to the
// columns it is filtered on. Columns win over the document on read.
type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS menu_items (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			doc JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		"CREATE INDEX IF NOT EXISTS menu_items_category_idx ON menu_items (category)",
		`CREATE TABLE IF NOT EXISTS offers (
			id TEXT PRIMARY KEY,
			doc JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			doc JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			device_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			doc JSONB NOT NULL
		)`,
		"CREATE INDEX IF NOT EXISTS orders_created_at_idx ON orders (created_at DESC)",
		"CREATE INDEX IF NOT EXISTS orders_status_idx ON orders (status)",
		`CREATE TABLE IF NOT EXISTS order_counters (
			day DATE PRIMARY KEY,
			seq INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS login_requests (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			expires_at TIMESTAMPTZ NOT NULL,
			doc JSONB NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
		}
	}
	return nil
}

func (r *PostgresRepository) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT doc FROM menu_items ORDER BY category, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.MenuItem{}
	for rows.Next() {
		var item domain.MenuItem
		if err := scanDoc(rows, &item); err != nil {
			log.Printf("[postgres] skip menu item: %v", err)
			continue
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) UpsertMenuItem(ctx context.Context, item domain.MenuItem) error {
	doc, err := json.Marshal(item)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO menu_items (id, category, doc, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET category = EXCLUDED.category, doc = EXCLUDED.doc, updated_at = now()`,
		item.ID, item.Category, doc)
	return err
}

func (r *PostgresRepository) DeleteMenuItem(ctx context.Context, id string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM menu_items WHERE id = $1", id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresRepository) DeleteMenuItemsByCategory(ctx context.Context, category string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM menu_items WHERE category = $1", category)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return r.queryOrders(ctx, "SELECT doc, status FROM orders ORDER BY created_at DESC, id DESC")
}

func (r *PostgresRepository) ListOrdersSince(ctx context.Context, since time.Time) ([]domain.Order, error) {
	return r.queryOrders(ctx, "SELECT doc, status FROM orders WHERE created_at >= $1 ORDER BY created_at DESC, id DESC", since)
}

func (r *PostgresRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var order domain.Order
		var status string
		var doc []byte
		if err := rows.Scan(&doc, &status); err != nil {
			log.Printf("[postgres] skip order row: %v", err)
			continue
		}
		if err := json.Unmarshal(doc, &order); err != nil {
			log.Printf("[postgres] skip order doc: %v", err)
			continue
		}
		order.Status = domain.OrderStatus(status)
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var doc []byte
	var status string
	err := r.DB.QueryRowContext(ctx, "SELECT doc, status FROM orders WHERE id = $1", id).Scan(&doc, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var order domain.Order
	if err := json.Unmarshal(doc, &order); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", id, err)
	}
	order.Status = domain.OrderStatus(status)
	return &order, nil
}

// CreateOrder bumps the day's counter and inserts the order in one
// transaction, so order numbers never repeat within a day.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var seq int
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO order_counters (day, seq) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET seq = order_counters.seq + 1
		RETURNING seq`, order.CreatedAt.Format("2006-01-02")).Scan(&seq); err != nil {
		return err
	}
	order.OrderNumber = seq
	order.FormattedOrderID = domain.FormatOrderNumber(order.CreatedAt, seq)

	doc, err := json.Marshal(order)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO orders (id, status, device_id, created_at, doc)
		VALUES ($1, $2, $3, $4, $5)`,
		order.ID, string(order.Status), order.DeviceID, order.CreatedAt, doc); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, id string, current, next domain.OrderStatus) (bool, error) {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2 AND status = $3",
		string(next), id, string(current))
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n == 1, err
}

func (r *PostgresRepository) DeleteOrdersOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var (
		result sql.Result
		err    error
	)
	if cutoff.IsZero() {
		result, err = r.DB.ExecContext(ctx, "DELETE FROM orders")
	} else {
		result, err = r.DB.ExecContext(ctx, "DELETE FROM orders WHERE created_at < $1", cutoff)
	}
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresRepository) GetLocation(ctx context.Context) (*domain.LocationData, error) {
	var doc []byte
	err := r.DB.QueryRowContext(ctx, "SELECT doc FROM settings WHERE key = $1", locationKey).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var loc domain.LocationData
	if err := json.Unmarshal(doc, &loc); err != nil {
		return nil, fmt.Errorf("decode location: %w", err)
	}
	return &loc, nil
}

func (r *PostgresRepository) SaveLocation(ctx context.Context, loc domain.LocationData) error {
	return saveLocation(ctx, r.DB, loc)
}

func (r *PostgresRepository) ListOffers(ctx context.Context) ([]domain.SpecialOffer, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT doc FROM offers ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := []domain.SpecialOffer{}
	for rows.Next() {
		var offer domain.SpecialOffer
		if err := scanDoc(rows, &offer); err != nil {
			log.Printf("[postgres] skip offer: %v", err)
			continue
		}
		offers = append(offers, offer)
	}
	return offers, rows.Err()
}

func (r *PostgresRepository) UpsertOffer(ctx context.Context, offer domain.SpecialOffer) error {
	return upsertOffer(ctx, r.DB, offer)
}

func (r *PostgresRepository) DeleteOffer(ctx context.Context, id string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM offers WHERE id = $1", id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresRepository) CreateLoginRequest(ctx context.Context, req *domain.LoginRequest) error {
	doc, err := json.Marshal(req)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO login_requests (id, status, attempts, expires_at, doc)
		VALUES ($1, $2, $3, $4, $5)`,
		req.ID, string(req.Status), req.Attempts, req.ExpiresAt, doc)
	return err
}

func (r *PostgresRepository) GetLoginRequest(ctx context.Context, id string) (*domain.LoginRequest, error) {
	var doc []byte
	var status string
	var attempts int
	err := r.DB.QueryRowContext(ctx,
		"SELECT doc, status, attempts FROM login_requests WHERE id = $1", id).
		Scan(&doc, &status, &attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var req domain.LoginRequest
	if err := json.Unmarshal(doc, &req); err != nil {
		return nil, fmt.Errorf("decode login request %s: %w", id, err)
	}
	req.Status = domain.LoginStatus(status)
	req.Attempts = attempts
	return &req, nil
}

func (r *PostgresRepository) SetLoginRequestStatus(ctx context.Context, id string, current, next domain.LoginStatus) (bool, error) {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE login_requests SET status = $1 WHERE id = $2 AND status = $3",
		string(next), id, string(current))
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n == 1, err
}

func (r *PostgresRepository) IncrementLoginAttempts(ctx context.Context, id string) (int, error) {
	var attempts int
	err := r.DB.QueryRowContext(ctx,
		"UPDATE login_requests SET attempts = attempts + 1 WHERE id = $1 RETURNING attempts", id).
		Scan(&attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	return attempts, err
}

// SeedCatalog replaces the menu and offers and sets the location in a
// single transaction.
func (r *PostgresRepository) SeedCatalog(ctx context.Context, catalog domain.Catalog) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM menu_items"); err != nil {
		return err
	}
	for _, item := range catalog.Menu {
		doc, err := json.Marshal(item)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO menu_items (id, category, doc, updated_at) VALUES ($1, $2, $3, now())",
			item.ID, item.Category, doc); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM offers"); err != nil {
		return err
	}
	for _, offer := range catalog.Offers {
		if err := upsertOffer(ctx, tx, offer); err != nil {
			return err
		}
	}

	if err := saveLocation(ctx, tx, catalog.Location); err != nil {
		return err
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func upsertOffer(ctx context.Context, db execer, offer domain.SpecialOffer) error {
	doc, err := json.Marshal(offer)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO offers (id, doc, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		offer.ID, doc)
	return err
}

func saveLocation(ctx context.Context, db execer, loc domain.LocationData) error {
	doc, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO settings (key, doc, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		locationKey, doc)
	return err
}

func scanDoc(rows *sql.Rows, v interface{}) error {
	var doc []byte
	if err := rows.Scan(&doc); err != nil {
		return err
	}
	return json.Unmarshal(doc, v)
}
