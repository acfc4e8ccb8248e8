package notify

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"street-bites/pkg/domain"
)

func order(id, device string, status domain.OrderStatus) domain.Order {
	return domain.Order{ID: id, DeviceID: device, Status: status, CustomerName: "Ana", FormattedOrderID: "ORD_20261015_00" + id}
}

func TestDeviceNotifier_Observe(t *testing.T) {
	tests := []struct {
		name    string
		device  string
		batches [][]domain.Order
		want    []int
	}{
		{
			name:   "ready surfaces once",
			device: "dev-1",
			batches: [][]domain.Order{
				{order("1", "dev-1", domain.StatusPending)},
				{order("1", "dev-1", domain.StatusReady)},
				{order("1", "dev-1", domain.StatusReady)},
			},
			want: []int{0, 1, 0},
		},
		{
			name:   "cancelled after ready is a new alert",
			device: "dev-1",
			batches: [][]domain.Order{
				{order("1", "dev-1", domain.StatusReady)},
				{order("1", "dev-1", domain.StatusCancelled)},
			},
			want: []int{1, 1},
		},
		{
			name:   "other devices are ignored",
			device: "dev-1",
			batches: [][]domain.Order{
				{order("1", "dev-2", domain.StatusReady), order("2", "", domain.StatusReady)},
			},
			want: []int{0},
		},
		{
			name:   "no device id matches nothing",
			device: "",
			batches: [][]domain.Order{
				{order("1", "", domain.StatusReady)},
			},
			want: []int{0},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			n := NewDeviceNotifier(testCase.device)
			for i, batch := range testCase.batches {
				assert.Len(t, n.Observe(batch), testCase.want[i], "batch %d", i)
			}
		})
	}
}

func TestDeviceNotifier_AlertFields(t *testing.T) {
	n := NewDeviceNotifier("dev-1")

	alerts := n.Observe([]domain.Order{
		{ID: "a1", DeviceID: "dev-1", Status: domain.StatusReady, CustomerName: "Ana"},
		order("2", "dev-1", domain.StatusReady),
	})

	if assert.Len(t, alerts, 2) {
		assert.Equal(t, Alert{OrderID: "a1", Label: "a1", CustomerName: "Ana", Status: domain.StatusReady}, alerts[0])
		assert.Equal(t, "ORD_20261015_002", alerts[1].Label)
	}
}

func TestDeviceNotifier_ConcurrentObserve(t *testing.T) {
	n := NewDeviceNotifier("dev-1")
	batch := []domain.Order{order("1", "dev-1", domain.StatusReady)}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := len(n.Observe(batch))
			mu.Lock()
			total += got
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, total)
}
