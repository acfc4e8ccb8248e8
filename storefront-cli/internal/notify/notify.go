// Package notify turns polled order lists into one-time alerts for the
// device that placed them.
package notify

import (
	"sync"

	"street-bites/pkg/domain"
)

type Alert struct {
	OrderID      string
	Label        string
	CustomerName string
	Status       domain.OrderStatus
}

// DeviceNotifier remembers which (order, status) pairs it has already
// surfaced. Orders without a device id never match.
type DeviceNotifier struct {
	deviceID string

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewDeviceNotifier(deviceID string) *DeviceNotifier {
	return &DeviceNotifier{deviceID: deviceID, seen: make(map[string]struct{})}
}

// Observe returns the alerts that are new in this batch of orders.
func (n *DeviceNotifier) Observe(orders []domain.Order) []Alert {
	n.mu.Lock()
	defer n.mu.Unlock()

	var alerts []Alert
	for _, o := range orders {
		if n.deviceID == "" || o.DeviceID != n.deviceID || !o.Status.Notifiable() {
			continue
		}
		key := o.ID + "|" + string(o.Status)
		if _, done := n.seen[key]; done {
			continue
		}
		n.seen[key] = struct{}{}

		label := o.FormattedOrderID
		if label == "" {
			label = o.ID
		}
		alerts = append(alerts, Alert{
			OrderID:      o.ID,
			Label:        label,
			CustomerName: o.CustomerName,
			Status:       o.Status,
		})
	}
	return alerts
}
