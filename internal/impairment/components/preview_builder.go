package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/impairment-ledger/internal/domain/subledger"
	"github.com/impairment-ledger/internal/impairment/service"
)

type PreviewBuilderImpl struct {
	subledgerRepo subledger.Repository
	settings      service.SettingsStore
	logger        *slog.Logger
}

func NewPreviewBuilder(subledgerRepo subledger.Repository, settings service.SettingsStore, logger *slog.Logger) service.PreviewBuilder {
	return &PreviewBuilderImpl{
		subledgerRepo: subledgerRepo,
		settings:      settings,
		logger:        logger,
	}
}

// Build loads the records the calculator needs and runs it. Nothing is written
// apart from the lazily created default settings.
func (b *PreviewBuilderImpl) Build(ctx context.Context, key impairment.Key, estimates impairment.Estimates) (impairment.Preview, error) {
	if err := estimates.Validate(); err != nil {
		return nil, err
	}

	var preview impairment.Preview
	switch key.CalcType {
	case impairment.CalcTypeReceivables:
		settings, err := b.settings.Get(ctx, key.TenantID)
		if err != nil {
			return nil, err
		}
		invoices, err := b.subledgerRepo.ListOpenInvoices(ctx, key.TenantID)
		if err != nil {
			return nil, err
		}
		preview = impairment.CalculateReceivables(key.PeriodEnd, invoices, settings)

	case impairment.CalcTypeAssets:
		assets, err := b.subledgerRepo.ListActiveAssets(ctx, key.TenantID)
		if err != nil {
			return nil, err
		}
		preview = impairment.CalculateAssets(assets, estimates.Recoverables)

	case impairment.CalcTypeInventory:
		items, err := b.subledgerRepo.ListProductStock(ctx, key.TenantID)
		if err != nil {
			return nil, err
		}
		preview = impairment.CalculateInventory(items, estimates.NRV)

	default:
		return nil, impairment.ErrValidation{Field: "calc_type", Reason: fmt.Sprintf("unknown calculation type %q", key.CalcType)}
	}

	b.logger.Debug("Preview built",
		"key", key.String(),
		"items", preview.ItemCount(),
		"total", preview.Total().String(),
	)
	return preview, nil
}
