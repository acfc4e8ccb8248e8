package tests

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"street-bites/pkg/domain"
	"street-bites/tally-svc/internal/mocks"
	"street-bites/tally-svc/internal/service"
)

var eventTime = time.Date(2026, 10, 15, 18, 30, 0, 0, time.UTC)

func createdEvent() domain.OrderEvent {
	return domain.OrderEvent{
		ID:      "evt-1",
		Type:    domain.EventOrderCreated,
		OrderID: "1792089000000",
		Items: []domain.OrderItem{
			{ID: "s1", Name: "Street Burger", Quantity: 2},
		},
		Total:     17,
		Timestamp: eventTime,
	}
}

func TestConsumer_Apply(t *testing.T) {
	tests := []struct {
		name           string
		event          domain.OrderEvent
		setupMockStore func(*mocks.TallyStore)
		wantErr        bool
	}{
		{
			name:  "order created",
			event: createdEvent(),
			setupMockStore: func(m *mocks.TallyStore) {
				m.On("MarkSeen", mock.Anything, "evt-1").Return(true, nil).Once()
				m.On("RecordOrder", mock.Anything, "2026-10-15", createdEvent().Items, 17.0).Return(nil).Once()
			},
		},
		{
			name: "status changed",
			event: domain.OrderEvent{
				ID: "evt-2", Type: domain.EventOrderStatusChanged, OrderID: "1792089000000",
				Status: domain.StatusReady, PreviousStatus: domain.StatusPending, Timestamp: eventTime,
			},
			setupMockStore: func(m *mocks.TallyStore) {
				m.On("MarkSeen", mock.Anything, "evt-2").Return(true, nil).Once()
				m.On("RecordStatus", mock.Anything, "2026-10-15", domain.StatusReady).Return(nil).Once()
			},
		},
		{
			name:  "redelivered event",
			event: createdEvent(),
			setupMockStore: func(m *mocks.TallyStore) {
				m.On("MarkSeen", mock.Anything, "evt-1").Return(false, nil).Once()
			},
		},
		{
			name:  "failed write releases the marker",
			event: createdEvent(),
			setupMockStore: func(m *mocks.TallyStore) {
				m.On("MarkSeen", mock.Anything, "evt-1").Return(true, nil).Once()
				m.On("RecordOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()
				m.On("Forget", mock.Anything, "evt-1").Return(nil).Once()
			},
			wantErr: true,
		},
		{
			name:  "marker store down",
			event: createdEvent(),
			setupMockStore: func(m *mocks.TallyStore) {
				m.On("MarkSeen", mock.Anything, "evt-1").Return(false, errors.New("redis down")).Once()
			},
			wantErr: true,
		},
		{
			name:           "purge events are not tallied",
			event:          domain.OrderEvent{ID: "evt-3", Type: domain.EventOrdersPurged, Purged: 4, Timestamp: eventTime},
			setupMockStore: func(*mocks.TallyStore) {},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			mockStore := mocks.NewTallyStore(t)
			testCase.setupMockStore(mockStore)

			consumer := service.NewConsumer(nil, mockStore, time.UTC)
			err := consumer.Apply(context.Background(), testCase.event)
			if testCase.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConsumer_Apply_DayInZone(t *testing.T) {
	mockStore := mocks.NewTallyStore(t)
	tokyo := time.FixedZone("JST", 9*3600)
	event := createdEvent()
	event.Timestamp = time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)

	mockStore.On("MarkSeen", mock.Anything, "evt-1").Return(true, nil).Once()
	mockStore.On("RecordOrder", mock.Anything, "2026-10-16", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, service.NewConsumer(nil, mockStore, tokyo).Apply(context.Background(), event))
}

func TestConsumer_Start_CommitsAndStops(t *testing.T) {
	mockReader := mocks.NewMessageReader(t)
	mockStore := mocks.NewTallyStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payload, err := json.Marshal(createdEvent())
	require.NoError(t, err)
	good := kafka.Message{Offset: 1, Value: payload}
	junk := kafka.Message{Offset: 2, Value: []byte("not json")}

	mockReader.On("FetchMessage", mock.Anything).Return(good, nil).Once()
	mockReader.On("FetchMessage", mock.Anything).Return(junk, nil).Once()
	mockReader.On("FetchMessage", mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(kafka.Message{}, context.Canceled).Once()
	mockReader.On("CommitMessages", mock.Anything, good).Return(nil).Once()
	mockReader.On("CommitMessages", mock.Anything, junk).Return(nil).Once()

	mockStore.On("MarkSeen", mock.Anything, "evt-1").Return(true, nil).Once()
	mockStore.On("RecordOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	consumer := service.NewConsumer(mockReader, mockStore, time.UTC)
	assert.NoError(t, consumer.Start(ctx))
}

func TestConsumer_Start_LeavesFailedMessageUncommitted(t *testing.T) {
	mockReader := mocks.NewMessageReader(t)
	mockStore := mocks.NewTallyStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payload, err := json.Marshal(createdEvent())
	require.NoError(t, err)

	mockReader.On("FetchMessage", mock.Anything).Return(kafka.Message{Value: payload}, nil).Once()
	mockStore.On("MarkSeen", mock.Anything, "evt-1").
		Run(func(mock.Arguments) { cancel() }).
		Return(false, errors.New("redis down")).Once()

	consumer := service.NewConsumer(mockReader, mockStore, time.UTC)
	assert.NoError(t, consumer.Start(ctx))
	mockReader.AssertNotCalled(t, "CommitMessages", mock.Anything, mock.Anything)
}
