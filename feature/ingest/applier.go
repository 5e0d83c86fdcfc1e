package ingest

import (
	"context"

	"shopsync/core/retry"
	"shopsync/core/shopify"
	"shopsync/feature/ingest/models"

	"go.uber.org/zap"
)

// Applier applies single externally-pushed records (webhooks) through the
// same transform and upsert contract the reconciliation engine uses, so a
// record arriving via either path produces identical stored state. Both
// paths are idempotent under redelivery.
type Applier struct {
	repo   *Repository
	exec   *retry.Executor
	logger *zap.Logger
}

// NewApplier creates an event applier.
func NewApplier(repo *Repository, exec *retry.Executor, log *zap.Logger) *Applier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Applier{repo: repo, exec: exec, logger: log}
}

// ApplyOrder upserts one pushed order, resolving its embedded customer
// reference against the store's known customers. An unknown reference
// yields a guest order, never a failure; a later full sync relinks it.
func (a *Applier) ApplyOrder(ctx context.Context, store *models.Store, raw shopify.Order) (*models.Order, error) {
	var customerID *string
	if ext := customerExternalID(raw); ext != "" {
		resolved, err := a.repo.ResolveCustomerID(ctx, store.ID, ext)
		if err != nil {
			return nil, err
		}
		customerID = resolved
	}

	record, err := OrderFromAPI(raw, store.ID, customerID)
	if err != nil {
		return nil, err
	}

	label := "upsert order " + record.ExternalID
	if err := a.exec.Execute(ctx, label, func() error {
		return a.repo.UpsertOrder(ctx, record)
	}); err != nil {
		return nil, err
	}

	a.logger.Debug("applied order event",
		zap.String("shop", store.ShopDomain),
		zap.String("external_id", record.ExternalID),
		zap.Bool("linked", customerID != nil),
	)
	return record, nil
}

// ApplyCustomer upserts one pushed customer.
func (a *Applier) ApplyCustomer(ctx context.Context, store *models.Store, raw shopify.Customer) (*models.Customer, error) {
	record := CustomerFromAPI(raw, store.ID)

	label := "upsert customer " + record.ExternalID
	if err := a.exec.Execute(ctx, label, func() error {
		return a.repo.UpsertCustomer(ctx, record)
	}); err != nil {
		return nil, err
	}

	a.logger.Debug("applied customer event",
		zap.String("shop", store.ShopDomain),
		zap.String("external_id", record.ExternalID),
	)
	return record, nil
}
