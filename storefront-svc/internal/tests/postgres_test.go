package tests

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"street-bites/pkg/domain"
	"street-bites/storefront-svc/internal/storage"
)

func newPostgres(t *testing.T) (*storage.PostgresRepository, sqlmock.Sqlmock) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return storage.NewPostgresRepository(db), sqlMock
}

func jsonDoc(t *testing.T, v interface{}) []byte {
	doc, err := json.Marshal(v)
	require.NoError(t, err)
	return doc
}

func TestPostgres_EnsureSchema(t *testing.T) {
	repo, sqlMock := newPostgres(t)
	for i := 0; i < 9; i++ {
		sqlMock.ExpectExec("CREATE (TABLE|INDEX) IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPostgres_ListMenuItems_SkipsBadRows(t *testing.T) {
	repo, sqlMock := newPostgres(t)
	rows := sqlmock.NewRows([]string{"doc"}).
		AddRow(jsonDoc(t, domain.MenuItem{ID: "s1", Name: "Street Burger", Category: "Mains"})).
		AddRow([]byte(`{not json`)).
		AddRow(jsonDoc(t, domain.MenuItem{ID: "d1", Name: "Lemonade", Category: "Drinks"}))
	sqlMock.ExpectQuery(regexp.QuoteMeta("SELECT doc FROM menu_items ORDER BY category, id")).WillReturnRows(rows)

	items, err := repo.ListMenuItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "s1", items[0].ID)
	assert.Equal(t, "d1", items[1].ID)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPostgres_ListMenuItems_Empty(t *testing.T) {
	repo, sqlMock := newPostgres(t)
	sqlMock.ExpectQuery("SELECT doc FROM menu_items").WillReturnRows(sqlmock.NewRows([]string{"doc"}))

	items, err := repo.ListMenuItems(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestPostgres_GetOrder(t *testing.T) {
	tests := []struct {
		name          string
		prepareMocks  func(m sqlmock.Sqlmock)
		wantStatus    domain.OrderStatus
		expectedError error
	}{
		{
			name: "status column wins",
			prepareMocks: func(m sqlmock.Sqlmock) {
				doc := jsonDoc(t, domain.Order{ID: "42", CustomerName: "Dana", Status: domain.StatusPending})
				m.ExpectQuery(regexp.QuoteMeta("SELECT doc, status FROM orders WHERE id = $1")).
					WithArgs("42").
					WillReturnRows(sqlmock.NewRows([]string{"doc", "status"}).AddRow(doc, "ready"))
			},
			wantStatus: domain.StatusReady,
		},
		{
			name: "missing",
			prepareMocks: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT doc, status FROM orders").WithArgs("42").WillReturnError(sql.ErrNoRows)
			},
			expectedError: domain.ErrNotFound,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo, sqlMock := newPostgres(t)
			testCase.prepareMocks(sqlMock)

			order, err := repo.GetOrder(context.Background(), "42")
			if testCase.expectedError != nil {
				assert.ErrorIs(t, err, testCase.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.wantStatus, order.Status)
			assert.Equal(t, "Dana", order.CustomerName)
		})
	}
}

func TestPostgres_CreateOrder(t *testing.T) {
	repo, sqlMock := newPostgres(t)
	order := &domain.Order{
		ID:        "1792089000000",
		Status:    domain.StatusPending,
		CreatedAt: fixedNow,
		DeviceID:  "device-1",
	}

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(regexp.QuoteMeta("INSERT INTO order_counters (day, seq) VALUES ($1, 1)")).
		WithArgs("2026-10-15").
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(7))
	sqlMock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders (id, status, device_id, created_at, doc)")).
		WithArgs("1792089000000", "pending", "device-1", fixedNow, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectCommit()

	require.NoError(t, repo.CreateOrder(context.Background(), order))
	assert.Equal(t, 7, order.OrderNumber)
	assert.Equal(t, "ORD_20261015_007", order.FormattedOrderID)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPostgres_CreateOrder_InsertFailsRollsBack(t *testing.T) {
	repo, sqlMock := newPostgres(t)

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery("INSERT INTO order_counters").
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(1))
	sqlMock.ExpectExec("INSERT INTO orders").WillReturnError(errors.New("disk full"))
	sqlMock.ExpectRollback()

	err := repo.CreateOrder(context.Background(), &domain.Order{ID: "1", CreatedAt: fixedNow})
	assert.Error(t, err)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPostgres_UpdateOrderStatus(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "moved", affected: 1, want: true},
		{name: "changed underneath", affected: 0, want: false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo, sqlMock := newPostgres(t)
			sqlMock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = $1 WHERE id = $2 AND status = $3")).
				WithArgs("ready", "42", "pending").
				WillReturnResult(sqlmock.NewResult(0, testCase.affected))

			ok, err := repo.UpdateOrderStatus(context.Background(), "42", domain.StatusPending, domain.StatusReady)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, ok)
		})
	}
}

func TestPostgres_DeleteOrdersOlderThan(t *testing.T) {
	t.Run("cutoff", func(t *testing.T) {
		repo, sqlMock := newPostgres(t)
		cutoff := fixedNow.AddDate(0, 0, -7)
		sqlMock.ExpectExec(regexp.QuoteMeta("DELETE FROM orders WHERE created_at < $1")).
			WithArgs(cutoff).
			WillReturnResult(sqlmock.NewResult(0, 5))

		n, err := repo.DeleteOrdersOlderThan(context.Background(), cutoff)
		require.NoError(t, err)
		assert.Equal(t, int64(5), n)
	})

	t.Run("everything", func(t *testing.T) {
		repo, sqlMock := newPostgres(t)
		sqlMock.ExpectExec(regexp.QuoteMeta("DELETE FROM orders")).
			WillReturnResult(sqlmock.NewResult(0, 12))

		n, err := repo.DeleteOrdersOlderThan(context.Background(), time.Time{})
		require.NoError(t, err)
		assert.Equal(t, int64(12), n)
	})
}

func TestPostgres_GetLocation_Missing(t *testing.T) {
	repo, sqlMock := newPostgres(t)
	sqlMock.ExpectQuery(regexp.QuoteMeta("SELECT doc FROM settings WHERE key = $1")).
		WithArgs("location").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetLocation(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres_GetLoginRequest(t *testing.T) {
	repo, sqlMock := newPostgres(t)
	doc := jsonDoc(t, domain.LoginRequest{ID: "req-1", Code: "123456", Status: domain.LoginPending})
	sqlMock.ExpectQuery(regexp.QuoteMeta("SELECT doc, status, attempts FROM login_requests WHERE id = $1")).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows([]string{"doc", "status", "attempts"}).AddRow(doc, "approved", 2))

	req, err := repo.GetLoginRequest(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, domain.LoginApproved, req.Status)
	assert.Equal(t, 2, req.Attempts)
	assert.Equal(t, "123456", req.Code)
}

func TestPostgres_IncrementLoginAttempts(t *testing.T) {
	repo, sqlMock := newPostgres(t)
	sqlMock.ExpectQuery(regexp.QuoteMeta("UPDATE login_requests SET attempts = attempts + 1 WHERE id = $1 RETURNING attempts")).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows([]string{"attempts"}).AddRow(3))

	n, err := repo.IncrementLoginAttempts(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPostgres_SeedCatalog(t *testing.T) {
	repo, sqlMock := newPostgres(t)
	catalog := domain.Catalog{
		Menu: []domain.MenuItem{
			{ID: "s1", Category: "Mains"},
			{ID: "d1", Category: "Drinks"},
		},
		Offers:   []domain.SpecialOffer{{ID: "o1", Active: true}},
		Location: domain.LocationData{Name: "Harbor"},
	}

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(regexp.QuoteMeta("DELETE FROM menu_items")).WillReturnResult(sqlmock.NewResult(0, 4))
	sqlMock.ExpectExec(regexp.QuoteMeta("INSERT INTO menu_items")).WithArgs("s1", "Mains", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectExec(regexp.QuoteMeta("INSERT INTO menu_items")).WithArgs("d1", "Drinks", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectExec(regexp.QuoteMeta("DELETE FROM offers")).WillReturnResult(sqlmock.NewResult(0, 0))
	sqlMock.ExpectExec(regexp.QuoteMeta("INSERT INTO offers")).WithArgs("o1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectExec(regexp.QuoteMeta("INSERT INTO settings")).WithArgs("location", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectCommit()

	require.NoError(t, repo.SeedCatalog(context.Background(), catalog))
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
