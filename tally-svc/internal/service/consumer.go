package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"street-bites/pkg/domain"
	"street-bites/pkg/tally"
)

const retryDelay = 2 * time.Second

type Consumer struct {
	Reader MessageReader
	Store  TallyStore
	Zone   *time.Location
}

func NewConsumer(reader MessageReader, store TallyStore, zone *time.Location) *Consumer {
	if zone == nil {
		zone = time.Local
	}
	return &Consumer{Reader: reader, Store: store, Zone: zone}
}

// Start consumes order events until ctx is done. A message is committed
// once it has been tallied or found unusable; store failures leave it
// uncommitted so it is delivered again.
func (c *Consumer) Start(ctx context.Context) error {
	log.Println("[tally] consuming order events")
	for {
		message, err := c.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("[tally] fetch failed: %v", err)
			if !sleep(ctx, retryDelay) {
				return nil
			}
			continue
		}

		var event domain.OrderEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Printf("[tally] skip malformed message at offset %d: %v", message.Offset, err)
		} else if err := c.Apply(ctx, event); err != nil {
			log.Printf("[tally] apply %s %s failed: %v", event.Type, event.ID, err)
			if !sleep(ctx, retryDelay) {
				return nil
			}
			continue
		}

		if err := c.Reader.CommitMessages(ctx, message); err != nil && ctx.Err() == nil {
			log.Printf("[tally] commit offset %d failed: %v", message.Offset, err)
		}
	}
}

// Apply folds one event into the day's counters, at most once per event id.
func (c *Consumer) Apply(ctx context.Context, event domain.OrderEvent) error {
	if event.Type != domain.EventOrderCreated && event.Type != domain.EventOrderStatusChanged {
		return nil
	}

	if event.ID != "" {
		fresh, err := c.Store.MarkSeen(ctx, event.ID)
		if err != nil {
			return fmt.Errorf("mark seen: %w", err)
		}
		if !fresh {
			log.Printf("[tally] duplicate event %s ignored", event.ID)
			return nil
		}
	}

	day := tally.Day(event.Timestamp.In(c.Zone))
	var err error
	switch event.Type {
	case domain.EventOrderCreated:
		err = c.Store.RecordOrder(ctx, day, event.Items, event.Total)
	case domain.EventOrderStatusChanged:
		err = c.Store.RecordStatus(ctx, day, event.Status)
	}
	if err != nil {
		if event.ID != "" {
			if ferr := c.Store.Forget(ctx, event.ID); ferr != nil {
				err = errors.Join(err, ferr)
			}
		}
		return err
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

var _ ConsumerInterface = (*Consumer)(nil)
