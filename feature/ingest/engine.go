package ingest

import (
	"context"
	"fmt"
	"time"

	"shopsync/core/batch"
	"shopsync/core/logger"
	"shopsync/core/retry"
	"shopsync/core/shopify"
	"shopsync/feature/ingest/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Report outcome values.
const (
	// ReportSuccess means every fetched record was applied.
	ReportSuccess = "success"
	// ReportPartial means the run finished but skipped some records
	// (best-effort mode only).
	ReportPartial = "partial"
	// ReportFailed means the run aborted before applying everything.
	ReportFailed = "failed"
)

// Report summarizes one reconciliation run.
type Report struct {
	CustomersFetched int      `json:"customers_fetched"`
	OrdersFetched    int      `json:"orders_fetched"`
	Status           string   `json:"status"`
	Failures         []string `json:"failures,omitempty"`
	Error            string   `json:"error,omitempty"`
	Duration         string   `json:"duration,omitempty"`
}

// Engine orchestrates fetch -> transform -> link -> upsert for one store.
type Engine struct {
	client    *shopify.Client
	repo      *Repository
	exec      *retry.Executor
	logger    *zap.Logger
	batchOpts batch.Options
}

// NewEngine creates a reconciliation engine.
func NewEngine(client *shopify.Client, repo *Repository, exec *retry.Executor, log *zap.Logger, cfg Config) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		client: client,
		repo:   repo,
		exec:   exec,
		logger: log,
		batchOpts: batch.Options{
			BatchSize:   cfg.BatchSize,
			Concurrency: cfg.Concurrency,
			BestEffort:  cfg.BestEffort,
		},
	}
}

// Sync reconciles the store's customers and orders from the upstream API.
//
// The two collections are fetched concurrently, but customers are fully
// upserted before any order is, because order rows link against customer
// local ids. An upstream fetch failure aborts the run; whatever was already
// upserted stays (the upserts are idempotent, so a retry converges).
func (e *Engine) Sync(ctx context.Context, store *models.Store) (*Report, error) {
	l := logger.WithShop(e.logger, store.ShopDomain)
	started := time.Now()
	report := &Report{Status: ReportFailed}

	l.Info("starting reconciliation sync")

	var customers []shopify.Customer
	var orders []shopify.Order

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = e.client.FetchCustomers(gctx, store.ShopDomain, store.AccessToken)
		if err != nil {
			return fmt.Errorf("customer fetch failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		orders, err = e.client.FetchOrders(gctx, store.ShopDomain, store.AccessToken)
		if err != nil {
			return fmt.Errorf("order fetch failed: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		report.Error = err.Error()
		l.Error("reconciliation aborted during fetch", zap.Error(err))
		return report, err
	}

	report.CustomersFetched = len(customers)
	report.OrdersFetched = len(orders)
	l.Info("fetched upstream collections",
		zap.Int("customers", len(customers)),
		zap.Int("orders", len(orders)),
	)

	// Customers first; orders link against their local ids.
	customerResult, err := batch.Apply(ctx, customers, func(ctx context.Context, raw shopify.Customer) error {
		record := CustomerFromAPI(raw, store.ID)
		label := "upsert customer " + record.ExternalID
		return e.exec.Execute(ctx, label, func() error {
			return e.repo.UpsertCustomer(ctx, record)
		})
	}, e.batchOpts)
	collectFailures(report, customerResult)
	if err != nil {
		report.Error = err.Error()
		l.Error("customer upsert batch aborted", zap.Error(err))
		return report, fmt.Errorf("customer upsert failed: %w", err)
	}

	// Resolve effective customer identities, including rows from earlier
	// runs that this one did not touch.
	idMap, err := e.repo.CustomerIDMap(ctx, store.ID)
	if err != nil {
		report.Error = err.Error()
		return report, fmt.Errorf("customer id map failed: %w", err)
	}

	orderResult, err := batch.Apply(ctx, orders, func(ctx context.Context, raw shopify.Order) error {
		var customerID *string
		if ext := customerExternalID(raw); ext != "" {
			if localID, ok := idMap[ext]; ok {
				customerID = &localID
			}
			// Unknown reference: keep the order as a guest order.
		}

		record, err := OrderFromAPI(raw, store.ID, customerID)
		if err != nil {
			return err
		}
		label := "upsert order " + record.ExternalID
		return e.exec.Execute(ctx, label, func() error {
			return e.repo.UpsertOrder(ctx, record)
		})
	}, e.batchOpts)
	collectFailures(report, orderResult)
	if err != nil {
		report.Error = err.Error()
		l.Error("order upsert batch aborted", zap.Error(err))
		return report, fmt.Errorf("order upsert failed: %w", err)
	}

	if len(report.Failures) > 0 {
		report.Status = ReportPartial
	} else {
		report.Status = ReportSuccess
	}
	report.Duration = time.Since(started).Round(time.Millisecond).String()

	l.Info("reconciliation sync finished",
		zap.String("status", report.Status),
		zap.Int("customers", report.CustomersFetched),
		zap.Int("orders", report.OrdersFetched),
		zap.Int("skipped", len(report.Failures)),
		zap.String("duration", report.Duration),
	)
	return report, nil
}

func collectFailures(report *Report, result *batch.Result) {
	if result == nil {
		return
	}
	for _, f := range result.Failures {
		report.Failures = append(report.Failures, f.String())
	}
}
