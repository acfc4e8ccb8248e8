package domain

import "time"

const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
	EventOrdersPurged       = "orders_purged"
)

// OrderEvent is the message published on the order events topic.
type OrderEvent struct {
	ID             string      `json:"id"`
	Type           string      `json:"type"`
	OrderID        string      `json:"order_id,omitempty"`
	Status         OrderStatus `json:"status,omitempty"`
	PreviousStatus OrderStatus `json:"previous_status,omitempty"`
	Items          []OrderItem `json:"items,omitempty"`
	Total          float64     `json:"total,omitempty"`
	Purged         int64       `json:"purged,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}
