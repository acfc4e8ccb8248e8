package tally

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	day := Day(time.Date(2026, 10, 15, 23, 59, 0, 0, time.UTC))

	assert.Equal(t, "2026-10-15", day)
	assert.Equal(t, "tally:items:2026-10-15", ItemsKey(day))
	assert.Equal(t, "tally:revenue:2026-10-15", RevenueKey(day))
	assert.Equal(t, "tally:status:2026-10-15", StatusKey(day))
	assert.Equal(t, "tally:seen:evt-1", SeenKey("evt-1"))
}
