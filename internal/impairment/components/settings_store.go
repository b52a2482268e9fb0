package components

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/impairment-ledger/internal/impairment/service"
)

type SettingsStoreImpl struct {
	settingsRepo impairment.SettingsRepository
	logger       *slog.Logger
}

func NewSettingsStore(settingsRepo impairment.SettingsRepository, logger *slog.Logger) service.SettingsStore {
	return &SettingsStoreImpl{
		settingsRepo: settingsRepo,
		logger:       logger,
	}
}

// Get returns the tenant's settings, inserting the defaults on first read
func (s *SettingsStoreImpl) Get(ctx context.Context, tenantID uuid.UUID) (*impairment.Settings, error) {
	settings, err := s.settingsRepo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	defaults := impairment.DefaultSettings(tenantID)
	if err := s.settingsRepo.CreateIfAbsent(ctx, defaults); err != nil {
		return nil, err
	}
	s.logger.Info("Default impairment settings created", "tenant_id", tenantID.String())

	// A concurrent first read may have inserted its row first
	settings, err = s.settingsRepo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return defaults, nil
	}
	return settings, nil
}

// Update validates and stores new rates. They apply to future previews only.
func (s *SettingsStoreImpl) Update(ctx context.Context, settings *impairment.Settings) (*impairment.Settings, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	settings.UpdatedAt = time.Now()

	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	s.logger.Info("Impairment settings updated",
		"tenant_id", settings.TenantID.String(),
		"ecl_0_30", settings.Rate0To30.String(),
		"ecl_31_60", settings.Rate31To60.String(),
		"ecl_61_90", settings.Rate61To90.String(),
		"ecl_90_plus", settings.Rate90Plus.String(),
	)
	return settings, nil
}
