package ingest

import (
	"time"

	"shopsync/core/archive"
	"shopsync/core/retry"
	"shopsync/core/shopify"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature wires the ingestion feature. archiver may be nil when payload
// archiving is not configured.
func NewFeature(db *gorm.DB, client *shopify.Client, archiver *archive.Archiver, log *zap.Logger, cfg Config) *Feature {
	repo := NewRepository(db)
	exec := retry.NewExecutor(cfg.MaxRetries, time.Duration(cfg.RetryBaseMS)*time.Millisecond, log)
	engine := NewEngine(client, repo, exec, log, cfg)
	applier := NewApplier(repo, exec, log)
	svc := NewService(repo, engine, applier, archiver, log, cfg)
	h := NewHandler(svc, log)
	return &Feature{service: svc, handler: h}
}

// Service exposes the feature's service for the CLI commands.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "ingest"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load migrates the feature's tables and registers its routes.
func (f *Feature) Load(app fiber.Router) error {
	if err := f.service.repo.Migrate(); err != nil {
		return err
	}
	f.handler.RegisterRoutes(app)
	return nil
}
