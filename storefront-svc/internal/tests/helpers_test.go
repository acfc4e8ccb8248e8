package tests

import (
	"time"

	"street-bites/pkg/domain"
)

var fixedNow = time.Date(2026, 10, 15, 18, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func validOrderRequest() domain.PlaceOrderRequest {
	return domain.PlaceOrderRequest{
		CustomerName: "Dana",
		Items: []domain.PlaceOrderLine{
			{ID: "s1", Name: "Street Burger", Price: floatPtr(8.5), Quantity: intPtr(2)},
			{ID: "d1", Name: "Lemonade", Price: floatPtr(3), Quantity: intPtr(1)},
		},
		Total:    floatPtr(20),
		Notes:    "no onions",
		DeviceID: "device-1",
	}
}
