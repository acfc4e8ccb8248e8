package domain

import (
	"fmt"
	"time"
)

type MenuItem struct {
	ID          string  `json:"id" bson:"id" validate:"required,max=50"`
	Name        string  `json:"name" bson:"name" validate:"required,max=100"`
	Description string  `json:"description" bson:"description" validate:"required,max=500"`
	Price       float64 `json:"price" bson:"price" validate:"gte=0,lte=100000"`
	Category    string  `json:"category" bson:"category" validate:"required,max=50"`
	Image       string  `json:"image" bson:"image" validate:"max=2048"`
	Available   bool    `json:"available" bson:"available"`
}

type SpecialOffer struct {
	ID                 string   `json:"id" bson:"id" validate:"required,max=50"`
	Active             bool     `json:"active" bson:"active"`
	Title              string   `json:"title" bson:"title" validate:"required,max=100"`
	Description        string   `json:"description" bson:"description" validate:"required,max=500"`
	ItemIDs            []string `json:"itemIds" bson:"itemIds" validate:"max=50,dive,required,max=50"`
	DiscountPercentage *float64 `json:"discountPercentage,omitempty" bson:"discountPercentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	Price              *float64 `json:"price,omitempty" bson:"price,omitempty" validate:"omitempty,gte=0"`
	Image              string   `json:"image,omitempty" bson:"image,omitempty" validate:"max=2048"`
}

// Discount returns the percentage off, zero when the offer carries none.
func (o SpecialOffer) Discount() float64 {
	if o.DiscountPercentage == nil {
		return 0
	}
	return *o.DiscountPercentage
}

func (o SpecialOffer) Covers(itemID string) bool {
	for _, id := range o.ItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" bson:"lng" validate:"gte=-180,lte=180"`
}

type LocationData struct {
	Name           string      `json:"name" bson:"name" validate:"required,max=100"`
	Address        string      `json:"address" bson:"address" validate:"required,max=200"`
	OpenTime       string      `json:"openTime" bson:"openTime" validate:"max=50"`
	CloseTime      string      `json:"closeTime" bson:"closeTime" validate:"max=50"`
	IsOnline       *bool       `json:"isOnline,omitempty" bson:"isOnline,omitempty"`
	Coordinates    Coordinates `json:"coordinates" bson:"coordinates"`
	NextOnlineTime string      `json:"nextOnlineTime,omitempty" bson:"nextOnlineTime,omitempty" validate:"max=100"`
	Phone          string      `json:"phone,omitempty" bson:"phone,omitempty" validate:"max=30"`
	Instagram      string      `json:"instagram,omitempty" bson:"instagram,omitempty" validate:"max=100"`
}

// Online treats a missing flag as online.
func (l LocationData) Online() bool {
	return l.IsOnline == nil || *l.IsOnline
}

type OrderItem struct {
	ID       string  `json:"id" bson:"id"`
	Name     string  `json:"name" bson:"name"`
	Price    float64 `json:"price" bson:"price"`
	Quantity int     `json:"quantity" bson:"quantity"`
}

type Order struct {
	ID               string      `json:"id" bson:"id"`
	CustomerName     string      `json:"customerName" bson:"customerName"`
	Items            []OrderItem `json:"items" bson:"items"`
	Total            float64     `json:"total" bson:"total"`
	Status           OrderStatus `json:"status" bson:"status"`
	CreatedAt        time.Time   `json:"createdAt" bson:"createdAt"`
	Notes            string      `json:"notes,omitempty" bson:"notes,omitempty"`
	DeviceID         string      `json:"deviceId,omitempty" bson:"deviceId,omitempty"`
	FormattedOrderID string      `json:"formattedOrderId,omitempty" bson:"formattedOrderId,omitempty"`
	OrderNumber      int         `json:"orderNumber,omitempty" bson:"orderNumber,omitempty"`
}

// Active orders are everything the kitchen has not closed out.
func (o Order) Active() bool {
	return o.Status != StatusCompleted
}

// FormatOrderNumber renders the per-day sequence as ORD_YYYYMMDD_NNN.
func FormatOrderNumber(day time.Time, seq int) string {
	return fmt.Sprintf("ORD_%s_%03d", day.Format("20060102"), seq)
}

// PlaceOrderRequest is the checkout payload. Pointer fields distinguish a
// missing value from a zero one.
type PlaceOrderRequest struct {
	CustomerName string           `json:"customerName" validate:"required,max=100"`
	Items        []PlaceOrderLine `json:"items" validate:"required,min=1,max=50,dive"`
	Total        *float64         `json:"total" validate:"required,gte=0,lte=1000000"`
	Notes        string           `json:"notes,omitempty" validate:"max=500"`
	DeviceID     string           `json:"deviceId,omitempty" validate:"max=100"`
}

type PlaceOrderLine struct {
	ID       string   `json:"id" validate:"required,max=50"`
	Name     string   `json:"name" validate:"required,max=100"`
	Price    *float64 `json:"price" validate:"required,gte=0,lte=100000"`
	Quantity *int     `json:"quantity" validate:"required,min=1,max=100"`
}

// Catalog is everything a fresh storefront is seeded with.
type Catalog struct {
	Menu     []MenuItem     `json:"menu"`
	Location LocationData   `json:"location"`
	Offers   []SpecialOffer `json:"offers"`
}

type ItemCount struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// DailyTally is the running sales summary for one calendar day.
type DailyTally struct {
	Date     string           `json:"date"`
	TopItems []ItemCount      `json:"topItems"`
	Revenue  float64          `json:"revenue"`
	Statuses map[string]int64 `json:"statuses"`
}
