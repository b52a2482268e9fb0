package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"log/slog"

	"github.com/impairment-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProjectionService mocks the ProjectionService interface
type MockProjectionService struct {
	mock.Mock
}

func (m *MockProjectionService) Project(ctx context.Context, event *shared.ImpairmentPostedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestWorkerPoolProjectionService_Project(t *testing.T) {
	mockBaseService := &MockProjectionService{}
	logger := slog.Default()

	event := newPostedEvent()
	sameEvent := mock.MatchedBy(func(e *shared.ImpairmentPostedEvent) bool {
		return e.EventID == event.EventID
	})

	workerPoolService, err := NewWorkerPoolProjectionService(mockBaseService, WorkerPoolConfig{Size: 2}, logger)
	require.NoError(t, err)
	defer workerPoolService.Shutdown()

	tests := []struct {
		name          string
		setupMocks    func()
		expectedError error
	}{
		{
			name: "successful projection",
			setupMocks: func() {
				mockBaseService.On("Project", mock.Anything, sameEvent).Return(nil).Once()
			},
		},
		{
			name: "projection error",
			setupMocks: func() {
				mockBaseService.On("Project", mock.Anything, sameEvent).Return(errors.New("projection error")).Once()
			},
			expectedError: errors.New("projection error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMocks()

			err := workerPoolService.Project(context.Background(), event)

			if tt.expectedError != nil {
				assert.EqualError(t, err, tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}
			mockBaseService.AssertExpectations(t)
		})
	}
}

func TestWorkerPoolProjectionService_Concurrency(t *testing.T) {
	mockBaseService := &MockProjectionService{}
	logger := slog.Default()

	workerPoolService, err := NewWorkerPoolProjectionService(mockBaseService, WorkerPoolConfig{Size: 3}, logger)
	require.NoError(t, err)
	defer workerPoolService.Shutdown()

	assert.Equal(t, 3, workerPoolService.Capacity())

	mockBaseService.On("Project", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { time.Sleep(20 * time.Millisecond) }).
		Return(nil)

	var wg sync.WaitGroup
	errs := make(chan error, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- workerPoolService.Project(context.Background(), newPostedEvent())
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	mockBaseService.AssertNumberOfCalls(t, "Project", 6)
}

func TestWorkerPoolProjectionService_CanceledWhileWaiting(t *testing.T) {
	mockBaseService := &MockProjectionService{}
	logger := slog.Default()

	workerPoolService, err := NewWorkerPoolProjectionService(mockBaseService, WorkerPoolConfig{Size: 1}, logger)
	require.NoError(t, err)
	defer workerPoolService.Shutdown()

	release := make(chan struct{})
	mockBaseService.On("Project", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { <-release }).
		Return(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = workerPoolService.Project(ctx, newPostedEvent())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
}
