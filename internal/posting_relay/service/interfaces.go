package service

import (
	"context"

	"github.com/impairment-ledger/internal/domain/shared"
)

// ProjectionService projects posted impairment events into the posting history.
// Projecting an event that is already in the history succeeds without a write.
type ProjectionService interface {
	Project(ctx context.Context, event *shared.ImpairmentPostedEvent) error
}
