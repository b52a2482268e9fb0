package components

import (
	"log/slog"

	"github.com/impairment-ledger/internal/domain/account"
	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/impairment-ledger/internal/domain/ledger"
	"github.com/impairment-ledger/internal/domain/outbox"
	"github.com/impairment-ledger/internal/domain/subledger"
	"github.com/impairment-ledger/internal/impairment/service"
	"github.com/impairment-ledger/internal/platform/persistence"
)

// Repositories groups the stores the engine reads and writes
type Repositories struct {
	Accounts     account.Repository
	Ledger       ledger.Repository
	Calculations impairment.CalculationRepository
	Settings     impairment.SettingsRepository
	Locks        impairment.PeriodLockRepository
	Subledger    subledger.Repository
	Outbox       outbox.Repository
}

// Engine bundles the engine's services for the API layer
type Engine struct {
	Posting  service.PostingService
	Previews service.PreviewBuilder
	Settings service.SettingsStore
	Locks    service.PeriodLockManager
}

// CreatePostingService creates a new PostingService with all its dependencies.
// A nil locker falls back to the database lock alone.
func CreatePostingService(
	db persistence.TxBeginner,
	repos Repositories,
	locker service.Locker,
	logger *slog.Logger,
) service.PostingService {
	if locker == nil {
		locker = persistence.NoopLocker{}
	}

	guard := NewPostingGuard(repos.Calculations, repos.Locks, logger)
	resolver := NewAccountResolver(repos.Accounts, logger)
	journals := NewJournalWriter(repos.Ledger, logger)
	recorder := NewCalculationRecorder(repos.Calculations, logger)
	outboxManager := NewOutboxManager(repos.Outbox, logger)

	return service.NewPostingService(
		db,
		locker,
		guard,
		resolver,
		journals,
		recorder,
		outboxManager,
		logger.With("component", "posting_service"),
	)
}

// CreateEngine wires every engine service over the given repositories
func CreateEngine(
	db persistence.TxBeginner,
	repos Repositories,
	locker service.Locker,
	logger *slog.Logger,
) *Engine {
	settings := NewSettingsStore(repos.Settings, logger)

	return &Engine{
		Posting:  CreatePostingService(db, repos, locker, logger),
		Previews: NewPreviewBuilder(repos.Subledger, settings, logger),
		Settings: settings,
		Locks:    NewPeriodLockManager(repos.Locks, logger),
	}
}
