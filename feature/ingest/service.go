package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shopsync/core/archive"
	"shopsync/core/logger"
	"shopsync/core/shopify"
	"shopsync/feature/ingest/models"

	"go.uber.org/zap"
)

// Service is the entry point for both ingestion paths. It gates sync
// requests on store ownership, enforces one run per store, and dispatches
// the engine either waited or detached.
type Service struct {
	repo     *Repository
	engine   *Engine
	applier  *Applier
	registry *runRegistry
	archiver *archive.Archiver
	logger   *zap.Logger
	timeout  time.Duration
}

// NewService wires the ingestion service. archiver may be nil.
func NewService(repo *Repository, engine *Engine, applier *Applier, archiver *archive.Archiver, log *zap.Logger, cfg Config) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Service{
		repo:     repo,
		engine:   engine,
		applier:  applier,
		registry: newRunRegistry(),
		archiver: archiver,
		logger:   log,
		timeout:  timeout,
	}
}

// Migrate creates or updates the feature's tables.
func (s *Service) Migrate() error {
	return s.repo.Migrate()
}

// RequestSync verifies the requester owns the store, then runs a
// reconciliation. With wait=true the caller blocks for the terminal status;
// otherwise the run is detached and the returned status is the accepted
// running record, with failures visible only via Status and the logs.
func (s *Service) RequestSync(ctx context.Context, storeID, requesterID string, wait bool) (*RunStatus, error) {
	store, err := s.repo.StoreForOwner(ctx, storeID, requesterID)
	if err != nil {
		return nil, err
	}

	accepted, err := s.registry.begin(store.ID)
	if err != nil {
		return nil, err
	}

	if wait {
		s.run(ctx, store)
		return s.registry.status(store.ID), nil
	}

	// Detached: the run outlives the request, so it gets its own context
	// bounded only by the run ceiling.
	go s.run(context.Background(), store)
	return accepted, nil
}

// Status returns the store's last/current run record, gated on ownership.
func (s *Service) Status(ctx context.Context, storeID, requesterID string) (*RunStatus, error) {
	store, err := s.repo.StoreForOwner(ctx, storeID, requesterID)
	if err != nil {
		return nil, err
	}
	return s.registry.status(store.ID), nil
}

// SyncShop runs a waited reconciliation for the shop domain, bypassing the
// ownership gate. This is the CLI entry point; the operator owns the box.
func (s *Service) SyncShop(ctx context.Context, shopDomain string) (*RunStatus, error) {
	store, err := s.repo.StoreByDomain(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	if _, err := s.registry.begin(store.ID); err != nil {
		return nil, err
	}

	s.run(ctx, store)

	status := s.registry.status(store.ID)
	if status.State == RunStateFailed {
		return status, fmt.Errorf("sync failed: %s", status.Error)
	}
	return status, nil
}

// run executes the engine under the run ceiling and records the terminal
// state. Partial progress on timeout stays valid because upserts are
// idempotent.
func (s *Service) run(ctx context.Context, store *models.Store) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report, err := s.engine.Sync(runCtx, store)
	s.registry.finish(store.ID, report, err)

	if err != nil {
		logger.WithShop(s.logger, store.ShopDomain).Error("sync run failed", zap.Error(err))
	}

	if payload, marshalErr := json.Marshal(report); marshalErr == nil {
		s.archiver.Store(context.WithoutCancel(runCtx), store.ShopDomain, "sync-report", payload)
	}
}

// HandleOrderEvent applies an order webhook delivery. The body is the bare
// order resource pushed by the platform.
func (s *Service) HandleOrderEvent(ctx context.Context, shopDomain string, payload []byte) (*models.Order, error) {
	store, err := s.repo.StoreByDomain(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	var raw shopify.Order
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	s.archiver.Store(ctx, shopDomain, "orders-create", payload)
	return s.applier.ApplyOrder(ctx, store, raw)
}

// HandleCustomerEvent applies a customer webhook delivery.
func (s *Service) HandleCustomerEvent(ctx context.Context, shopDomain string, payload []byte) (*models.Customer, error) {
	store, err := s.repo.StoreByDomain(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	var raw shopify.Customer
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	s.archiver.Store(ctx, shopDomain, "customers-create", payload)
	return s.applier.ApplyCustomer(ctx, store, raw)
}
