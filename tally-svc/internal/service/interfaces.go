package service

import (
	"context"

	"github.com/segmentio/kafka-go"

	"street-bites/pkg/domain"
)

// MessageReader is the part of *kafka.Reader the consumer drives.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type TallyStore interface {
	// MarkSeen records the event id and reports false when it was already
	// recorded.
	MarkSeen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
	RecordOrder(ctx context.Context, day string, items []domain.OrderItem, total float64) error
	RecordStatus(ctx context.Context, day string, status domain.OrderStatus) error
}

type ConsumerInterface interface {
	Start(ctx context.Context) error
	Apply(ctx context.Context, event domain.OrderEvent) error
}
