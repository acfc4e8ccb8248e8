package board

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"street-bites/pkg/domain"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func TestRender_OldestFirstAndSkipsCompleted(t *testing.T) {
	orders := []domain.Order{
		{
			ID:               "b",
			FormattedOrderID: "ORD_20261015_002",
			CustomerName:     "Bo",
			Items:            []domain.OrderItem{{Name: "Tacos", Quantity: 2}},
			Total:            22,
			Status:           domain.StatusReady,
			CreatedAt:        now.Add(-5 * time.Minute),
		},
		{
			ID:               "a",
			FormattedOrderID: "ORD_20261015_001",
			CustomerName:     "Ana",
			Items:            []domain.OrderItem{{Name: "Burger", Quantity: 1}},
			Total:            16,
			Status:           domain.StatusPending,
			CreatedAt:        now.Add(-75 * time.Minute),
			Notes:            "no onion",
		},
		{
			ID:               "c",
			FormattedOrderID: "ORD_20261015_003",
			CustomerName:     "Cy",
			Status:           domain.StatusCompleted,
			CreatedAt:        now.Add(-90 * time.Minute),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, orders, now))
	out := buf.String()

	first := strings.Index(out, "ORD_20261015_001")
	second := strings.Index(out, "ORD_20261015_002")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second)
	assert.NotContains(t, out, "ORD_20261015_003")

	assert.Contains(t, out, "2x Tacos")
	assert.Contains(t, out, "[no onion]")
	assert.Contains(t, out, "READY")
	assert.Contains(t, out, "22.00")
	assert.Contains(t, out, "1h15m")
	assert.Contains(t, out, "5m")
}

func TestWaiting(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 20 * time.Second, want: "just now"},
		{in: 90 * time.Second, want: "2m"},
		{in: 59 * time.Minute, want: "59m"},
		{in: 2*time.Hour + 3*time.Minute, want: "2h03m"},
	}
	for _, testCase := range tests {
		assert.Equal(t, testCase.want, waiting(testCase.in), testCase.in.String())
	}
}

func TestRenderOffers(t *testing.T) {
	discount := 20.0
	tests := []struct {
		name   string
		offers []domain.SpecialOffer
		want   []string
	}{
		{name: "none running", want: []string{"No offers running right now."}},
		{
			name: "listed with discount and items",
			offers: []domain.SpecialOffer{
				{ID: "o1", Title: "Combo", Description: "Burger and fries", ItemIDs: []string{"s1", "f1"}, DiscountPercentage: &discount},
				{ID: "o2", Title: "Happy hour", Description: "Drinks", ItemIDs: []string{"d1"}},
			},
			want: []string{"o1  Combo: Burger and fries (20% off s1, f1)", "o2  Happy hour: Drinks (0% off d1)"},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderOffers(&buf, testCase.offers))
			assert.Equal(t, testCase.want, strings.Split(strings.TrimSpace(buf.String()), "\n"))
		})
	}
}
