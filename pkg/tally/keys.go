// Package tally names the Redis keys holding daily sales counters. The
// tally consumer writes them and the storefront reads them.
package tally

import "time"

const (
	DayLayout = "2006-01-02"
	// Retention is how long daily counters and dedupe markers are kept.
	Retention = 8 * 24 * time.Hour
)

func Day(t time.Time) string {
	return t.Format(DayLayout)
}

// ItemsKey is a sorted set of item name to quantity sold.
func ItemsKey(day string) string {
	return "tally:items:" + day
}

func RevenueKey(day string) string {
	return "tally:revenue:" + day
}

// StatusKey is a hash of order status to number of orders that reached it.
func StatusKey(day string) string {
	return "tally:status:" + day
}

func SeenKey(eventID string) string {
	return "tally:seen:" + eventID
}
