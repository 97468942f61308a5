package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"tabletap/report-svc/internal/domain"
	"tabletap/report-svc/internal/mocks"
	"tabletap/report-svc/internal/service"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const confirmedEvent = `{"type":"order_confirmed","order_id":"o-1","restaurant_id":"rest-1","final_total":"22.5","item_count":3,"timestamp":"2026-03-10T12:00:00Z"}`

func byOrderID(id string) interface{} {
	return mock.MatchedBy(func(event domain.OrderEvent) bool { return event.OrderID == id })
}

func TestConsumer_ProcessMessage(t *testing.T) {
	tests := []struct {
		name           string
		value          string
		setupMockStore func(*mocks.SaleRecorder)
		wantErr        bool
	}{
		{
			name:  "counted",
			value: confirmedEvent,
			setupMockStore: func(m *mocks.SaleRecorder) {
				m.On("RecordSale", mock.Anything, byOrderID("o-1")).Return(true, nil).Once()
			},
		},
		{
			name:  "duplicate",
			value: confirmedEvent,
			setupMockStore: func(m *mocks.SaleRecorder) {
				m.On("RecordSale", mock.Anything, byOrderID("o-1")).Return(false, nil).Once()
			},
		},
		{
			name:  "store_error",
			value: confirmedEvent,
			setupMockStore: func(m *mocks.SaleRecorder) {
				m.On("RecordSale", mock.Anything, byOrderID("o-1")).Return(false, errors.New("redis down")).Once()
			},
			wantErr: true,
		},
		{
			name:           "created_event_ignored",
			value:          `{"type":"order_created","order_id":"o-1","restaurant_id":"rest-1"}`,
			setupMockStore: func(m *mocks.SaleRecorder) {},
		},
		{
			name:           "undecodable",
			value:          `{not json`,
			setupMockStore: func(m *mocks.SaleRecorder) {},
		},
		{
			name:           "missing_restaurant",
			value:          `{"type":"order_confirmed","order_id":"o-1"}`,
			setupMockStore: func(m *mocks.SaleRecorder) {},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			mockStore := mocks.NewSaleRecorder(t)
			testCase.setupMockStore(mockStore)

			consumer := &service.Consumer{Store: mockStore, Logger: zerolog.Nop()}
			err := consumer.ProcessMessage(context.Background(), []byte(testCase.value))

			if testCase.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConsumer_StartRetriesThenCommits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	message := kafka.Message{Offset: 41, Value: []byte(confirmedEvent)}

	reader := mocks.NewMessageReader(t)
	reader.On("FetchMessage", mock.Anything).Return(message, nil).Once()
	reader.On("FetchMessage", mock.Anything).Return(func(context.Context) (kafka.Message, error) {
		cancel()
		return kafka.Message{}, context.Canceled
	}).Once()
	reader.On("CommitMessages", mock.Anything, message).Return(nil).Once()

	store := mocks.NewSaleRecorder(t)
	store.On("RecordSale", mock.Anything, byOrderID("o-1")).Return(false, errors.New("redis down")).Once()
	store.On("RecordSale", mock.Anything, byOrderID("o-1")).Return(true, nil).Once()

	consumer := service.NewConsumer(reader, store, zerolog.Nop())
	consumer.Backoff = time.Millisecond

	done := make(chan error, 1)
	go func() { done <- consumer.Start(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestConsumer_StopsWhileRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	reader := mocks.NewMessageReader(t)
	reader.On("FetchMessage", mock.Anything).Return(kafka.Message{Value: []byte(confirmedEvent)}, nil).Once()

	store := mocks.NewSaleRecorder(t)
	store.On("RecordSale", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		cancel()
	}).Return(false, errors.New("redis down")).Once()

	consumer := service.NewConsumer(reader, store, zerolog.Nop())
	assert.NoError(t, consumer.Start(ctx))
	reader.AssertNotCalled(t, "CommitMessages", mock.Anything, mock.Anything)
}
