package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"log/slog"

	"github.com/impairment-ledger/internal/config"
	"github.com/impairment-ledger/internal/domain/outbox"
	"github.com/impairment-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func TestPoller_ProcessPendingMessages(t *testing.T) {
	logger := slog.Default()

	cfg := &config.OutboxConfig{
		PollingInterval:  time.Second,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}

	message1, _ := newOutboxMessage(t, 1)
	message2, _ := newOutboxMessage(t, 2)
	lastAttempt, _ := newOutboxMessage(t, 3)
	lastAttempt.Attempts = 2

	tests := []struct {
		name          string
		setupMocks    func(repo *MockOutboxRepo, publisher *MockEventPublisher)
		expectedError string
	}{
		{
			name: "successful processing of pending messages",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockEventPublisher) {
				repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{message1, message2}, nil).Once()
				publisher.On("Publish", mock.Anything, message1).Return(nil).Once()
				publisher.On("Publish", mock.Anything, message2).Return(nil).Once()
			},
		},
		{
			name: "error getting pending messages",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockEventPublisher) {
				repo.On("GetPending", mock.Anything, 10).Return(nil, errors.New("db error")).Once()
			},
			expectedError: "failed to get pending outbox messages",
		},
		{
			name: "no pending messages",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockEventPublisher) {
				repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{}, nil).Once()
			},
		},
		{
			name: "error publishing one message",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockEventPublisher) {
				repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{message1, message2}, nil).Once()
				publisher.On("Publish", mock.Anything, message1).Return(errors.New("publish error")).Once()
				repo.On("IncrementAttempts", mock.Anything, int64(1)).Return(nil).Once()
				publisher.On("Publish", mock.Anything, message2).Return(nil).Once()
			},
		},
		{
			name: "max retry attempts reached",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockEventPublisher) {
				repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{lastAttempt}, nil).Once()
				publisher.On("Publish", mock.Anything, lastAttempt).Return(errors.New("publish error")).Once()
				repo.On("IncrementAttempts", mock.Anything, int64(3)).Return(nil).Once()
				repo.On("UpdateStatus", mock.Anything, int64(3), shared.OutboxStatusFailedToPublish).Return(nil).Once()
			},
		},
		{
			name: "unpublishable message is not retried",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockEventPublisher) {
				repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{message1}, nil).Once()
				publisher.On("Publish", mock.Anything, message1).Return(fmt.Errorf("outbox 1: %w", ErrUnpublishable)).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockOutboxRepo{}
			publisher := &MockEventPublisher{}
			tt.setupMocks(repo, publisher)

			poller := NewPoller(cfg, repo, publisher, logger)
			err := poller.processPendingMessages(context.Background())

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
			publisher.AssertExpectations(t)
			if tt.name == "unpublishable message is not retried" {
				repo.AssertNotCalled(t, "IncrementAttempts", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestPoller_StartStopsOnCancel(t *testing.T) {
	repo := &MockOutboxRepo{}
	publisher := &MockEventPublisher{}
	polled := make(chan struct{}, 1)
	repo.On("GetPending", mock.Anything, 5).
		Run(func(args mock.Arguments) {
			select {
			case polled <- struct{}{}:
			default:
			}
		}).
		Return([]*outbox.Message{}, nil)

	cfg := &config.OutboxConfig{PollingInterval: 5 * time.Millisecond, BatchSize: 5, MaxRetryAttempts: 3}
	poller := NewPoller(cfg, repo, publisher, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Start(ctx)
		close(done)
	}()

	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("poller never polled the outbox")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
}
