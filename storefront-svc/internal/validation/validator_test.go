package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"street-bites/pkg/domain"
)

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }

func validOrder() domain.PlaceOrderRequest {
	return domain.PlaceOrderRequest{
		CustomerName: "Asha",
		Items: []domain.PlaceOrderLine{
			{ID: "s4", Name: "Nashville Burger", Price: ptrFloat(16), Quantity: ptrInt(2)},
		},
		Total:    ptrFloat(24),
		DeviceID: "device-1",
	}
}

func TestOrder(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*domain.PlaceOrderRequest)
		wantField string
		wantMsg   string
	}{
		{name: "valid", mutate: func(*domain.PlaceOrderRequest) {}},
		{
			name:      "missing name",
			mutate:    func(r *domain.PlaceOrderRequest) { r.CustomerName = "" },
			wantField: "customerName",
			wantMsg:   "is required",
		},
		{
			name:      "name over 100 runes",
			mutate:    func(r *domain.PlaceOrderRequest) { r.CustomerName = strings.Repeat("é", 101) },
			wantField: "customerName",
			wantMsg:   "must be at most 100 characters",
		},
		{
			name:      "no items",
			mutate:    func(r *domain.PlaceOrderRequest) { r.Items = []domain.PlaceOrderLine{} },
			wantField: "items",
		},
		{
			name: "too many items",
			mutate: func(r *domain.PlaceOrderRequest) {
				for len(r.Items) < 51 {
					r.Items = append(r.Items, r.Items[0])
				}
			},
			wantField: "items",
			wantMsg:   "must contain at most 50 entries",
		},
		{
			name:      "quantity over 100",
			mutate:    func(r *domain.PlaceOrderRequest) { r.Items[0].Quantity = ptrInt(101) },
			wantField: "items[0].quantity",
			wantMsg:   "must be at most 100",
		},
		{
			name:      "zero quantity",
			mutate:    func(r *domain.PlaceOrderRequest) { r.Items[0].Quantity = ptrInt(0) },
			wantField: "items[0].quantity",
			wantMsg:   "must be at least 1",
		},
		{
			name:      "missing price",
			mutate:    func(r *domain.PlaceOrderRequest) { r.Items[0].Price = nil },
			wantField: "items[0].price",
			wantMsg:   "is required",
		},
		{
			name:      "negative price",
			mutate:    func(r *domain.PlaceOrderRequest) { r.Items[0].Price = ptrFloat(-1) },
			wantField: "items[0].price",
		},
		{
			name:      "total over a million",
			mutate:    func(r *domain.PlaceOrderRequest) { r.Total = ptrFloat(1_000_000.01) },
			wantField: "total",
		},
		{
			name:      "missing total",
			mutate:    func(r *domain.PlaceOrderRequest) { r.Total = nil },
			wantField: "total",
		},
		{
			name:      "notes over 500",
			mutate:    func(r *domain.PlaceOrderRequest) { r.Notes = strings.Repeat("a", 501) },
			wantField: "notes",
		},
		{
			name:      "name that is only markup",
			mutate:    func(r *domain.PlaceOrderRequest) { r.CustomerName = "<>" },
			wantField: "customerName",
			wantMsg:   "is required",
		},
		{
			name:      "item name that is only markup",
			mutate:    func(r *domain.PlaceOrderRequest) { r.Items[0].Name = " <> " },
			wantField: "items[0].name",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			req := validOrder()
			testCase.mutate(&req)

			_, err := Order(req)
			if testCase.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *Error
			require.True(t, errors.As(err, &verr), "expected *Error, got %v", err)
			assert.Equal(t, testCase.wantField, verr.Field)
			if testCase.wantMsg != "" {
				assert.Equal(t, testCase.wantMsg, verr.Reason)
			}
		})
	}
}

func TestOrder_SanitizesFreeText(t *testing.T) {
	req := validOrder()
	req.CustomerName = "  <b>Asha</b> "
	req.Notes = `extra sauce <img src=x onerror=alert(1)> javascript:void(0)`
	req.Items[0].Name = "Burger<script>"

	got, err := Order(req)
	require.NoError(t, err)

	assert.Equal(t, "bAsha/b", got.CustomerName)
	assert.NotContains(t, got.Notes, "<")
	assert.NotContains(t, strings.ToLower(got.Notes), "onerror=")
	assert.NotContains(t, strings.ToLower(got.Notes), "javascript:")
	assert.Equal(t, "Burgerscript", got.Items[0].Name)
	assert.Equal(t, "Burger<script>", req.Items[0].Name, "input lines are not mutated")
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Loaded Fries", want: "Loaded Fries"},
		{name: "trims", input: "  hi  ", want: "hi"},
		{name: "angle brackets", input: "<script>x</script>", want: "scriptx/script"},
		{name: "scheme any case", input: "JavaScript:alert(1)", want: "alert(1)"},
		{name: "event handler", input: "a onClick=go()", want: "a go()"},
		{name: "caps length", input: strings.Repeat("ß", 1200), want: strings.Repeat("ß", 1000)},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, Sanitize(testCase.input))
		})
	}
}

func TestMenuItem(t *testing.T) {
	item := domain.MenuItem{ID: "s1", Name: "Chicken Strips", Description: "Crispy", Price: 10, Category: "savoury"}

	got, err := MenuItem(item)
	require.NoError(t, err)
	assert.Equal(t, item, got)

	item.Price = 100001
	_, err = MenuItem(item)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)
}

func TestOffer(t *testing.T) {
	offer := domain.SpecialOffer{ID: "o1", Title: "Burger Tuesday", Description: "25% off", ItemIDs: []string{"s4"}, DiscountPercentage: ptrFloat(25)}
	_, err := Offer(offer)
	require.NoError(t, err)

	offer.DiscountPercentage = ptrFloat(101)
	_, err = Offer(offer)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "discountPercentage", verr.Field)

	offer.DiscountPercentage = nil
	offer.ItemIDs = make([]string, 51)
	for i := range offer.ItemIDs {
		offer.ItemIDs[i] = "x"
	}
	_, err = Offer(offer)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "itemIds", verr.Field)
}

func TestLocation(t *testing.T) {
	loc := domain.LocationData{Name: "Street Bites", Address: "Market Sq", Coordinates: domain.Coordinates{Lat: 51.5, Lng: -0.12}}
	_, err := Location(loc)
	require.NoError(t, err)

	loc.Coordinates.Lat = 91
	_, err = Location(loc)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "coordinates.lat", verr.Field)
}

func TestUpload(t *testing.T) {
	now := time.UnixMilli(1760000000000)

	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int64
		want        string
		wantErr     bool
	}{
		{name: "png", filename: "burger.png", contentType: "image/png", size: 1024, want: "1760000000000-burger.png"},
		{name: "jpeg alias", filename: "Fries Photo.JPG", contentType: "image/jpeg", size: 10, want: "1760000000000-Fries_Photo.JPG"},
		{name: "path stripped", filename: "../../etc/cake.webp", contentType: "image/webp", size: 10, want: "1760000000000-cake.webp"},
		{name: "too large", filename: "a.png", contentType: "image/png", size: MaxUploadBytes + 1, wantErr: true},
		{name: "empty", filename: "a.png", contentType: "image/png", size: 0, wantErr: true},
		{name: "svg rejected", filename: "a.svg", contentType: "image/svg+xml", size: 10, wantErr: true},
		{name: "extension mismatch", filename: "a.gif", contentType: "image/png", size: 10, wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := Upload(testCase.filename, testCase.contentType, testCase.size, now)
			if testCase.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestSafeFilename_Caps(t *testing.T) {
	assert.Len(t, SafeFilename(strings.Repeat("a", 150)+".png"), 100)
}
