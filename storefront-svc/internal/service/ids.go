package service

import (
	"strconv"
	"sync"
	"time"
)

// OrderIDs hands out millisecond timestamps as order ids. Two calls in the
// same millisecond get consecutive values, so ids stay unique and sort in
// creation order within one process.
type OrderIDs struct {
	mu   sync.Mutex
	last int64
}

func (g *OrderIDs) Next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := now.UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return strconv.FormatInt(id, 10)
}
