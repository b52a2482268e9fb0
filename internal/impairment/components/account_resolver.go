package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/account"
	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/impairment-ledger/internal/impairment/service"
	"github.com/jackc/pgx/v5"
)

type AccountResolverImpl struct {
	accountRepo account.Repository
	logger      *slog.Logger
}

func NewAccountResolver(accountRepo account.Repository, logger *slog.Logger) service.AccountResolver {
	return &AccountResolverImpl{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// ResolveOrCreate looks the account up by conventional code, then by name,
// and creates it with the desired code and name when neither matches.
func (r *AccountResolverImpl) ResolveOrCreate(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, spec impairment.AccountSpec) (*account.Account, error) {
	logger := r.logger.With("tenant_id", tenantID.String(), "code", spec.Code)
	accountRepoTx := r.accountRepo.WithTx(tx)

	acc, err := accountRepoTx.FindByCodes(ctx, tenantID, spec.Type, spec.CandidateCodes)
	if err != nil {
		return nil, resolutionError(spec, err)
	}
	if acc != nil {
		logger.Debug("Account matched by code", "account_id", acc.ID.String(), "matched_code", acc.Code)
		return acc, nil
	}

	acc, err = accountRepoTx.FindByNameKeywords(ctx, tenantID, spec.Type, spec.NameKeywords)
	if err != nil {
		return nil, resolutionError(spec, err)
	}
	if acc != nil {
		logger.Debug("Account matched by name", "account_id", acc.ID.String(), "matched_name", acc.Name)
		return acc, nil
	}

	candidate, err := account.NewAccount(tenantID, spec.Code, spec.Name, spec.Type, spec.NormalBalance)
	if err != nil {
		return nil, resolutionError(spec, err)
	}

	created, err := accountRepoTx.CreateIfAbsent(ctx, candidate)
	if err != nil {
		return nil, resolutionError(spec, err)
	}
	if created {
		logger.Info("Account created", "account_id", candidate.ID.String(), "name", candidate.Name)
		return candidate, nil
	}

	// The code exists but did not match above: created concurrently, inactive, or of another type
	existing, err := accountRepoTx.GetByCode(ctx, tenantID, spec.Code)
	if err != nil {
		return nil, resolutionError(spec, err)
	}
	if !existing.Usable(spec.Type) {
		logger.Warn("Account code taken by an unusable account", "account_id", existing.ID.String(), "type", string(existing.Type), "active", existing.IsActive)
		return nil, resolutionError(spec, fmt.Errorf("code %s is held by an unusable %s account", spec.Code, existing.Type))
	}

	return existing, nil
}

// ResolvePair resolves the debit and credit accounts of a posting
func (r *AccountResolverImpl) ResolvePair(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, pair impairment.AccountPair) (*account.Account, *account.Account, error) {
	debit, err := r.ResolveOrCreate(ctx, tx, tenantID, pair.Debit)
	if err != nil {
		return nil, nil, err
	}
	credit, err := r.ResolveOrCreate(ctx, tx, tenantID, pair.Credit)
	if err != nil {
		return nil, nil, err
	}
	if debit.ID == credit.ID {
		return nil, nil, resolutionError(pair.Credit, errors.New("resolved to the debit account"))
	}
	return debit, credit, nil
}

func resolutionError(spec impairment.AccountSpec, err error) error {
	return impairment.ErrAccountResolution{Code: spec.Code, Name: spec.Name, Err: err}
}
