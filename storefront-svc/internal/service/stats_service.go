package service

import (
	"context"
	"time"

	"street-bites/pkg/domain"
	"street-bites/pkg/tally"
	"street-bites/storefront-svc/internal/validation"
)

const topItemsLimit = 10

// StatsService reads the daily sales counters kept by tally-svc.
type StatsService struct {
	reader TallyReader
	zone   *time.Location
	now    func() time.Time
}

func NewStatsService(reader TallyReader, zone *time.Location) *StatsService {
	if zone == nil {
		zone = time.Local
	}
	return &StatsService{reader: reader, zone: zone, now: time.Now}
}

func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

// Day returns the tally for date (YYYY-MM-DD); an empty date means today.
func (s *StatsService) Day(ctx context.Context, date string) (*domain.DailyTally, error) {
	if date == "" {
		date = tally.Day(s.now().In(s.zone))
	} else if _, err := time.Parse(tally.DayLayout, date); err != nil {
		return nil, validation.Invalid("date", "must be formatted YYYY-MM-DD")
	}
	return s.reader.DailyTally(ctx, date, topItemsLimit)
}

var _ StatsServiceInterface = (*StatsService)(nil)
