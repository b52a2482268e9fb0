package components

import (
	"log/slog"

	"github.com/impairment-ledger/internal/config"
	"github.com/impairment-ledger/internal/domain/history"
	"github.com/impairment-ledger/internal/domain/outbox"
	"github.com/impairment-ledger/internal/platform/messaging/producers"
	"github.com/impairment-ledger/internal/posting_relay/outbox_poller"
	"github.com/impairment-ledger/internal/posting_relay/service"
)

// CreateProjectionService creates the history projection, pooled when the pool can be built.
func CreateProjectionService(
	historyRepo history.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) service.ProjectionService {
	baseService := service.NewProjectionService(historyRepo, logger.With("component", "projection"))

	workerPoolService, err := service.NewWorkerPoolProjectionService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool projection service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}

// CreatePoller creates the outbox poller publishing through producer
func CreatePoller(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
	cfg *config.Config,
) *outbox_poller.Poller {
	publisher := outbox_poller.NewEventPublisher(outboxRepo, producer, logger.With("component", "event_publisher"))
	return outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, publisher, logger.With("component", "outbox_poller"))
}
