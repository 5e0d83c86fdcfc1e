package ingest

import (
	"errors"

	"shopsync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequesterHeader carries the identity of the dashboard user triggering a
// sync. Session handling itself lives upstream of this service.
const RequesterHeader = "X-User-ID"

// ShopDomainHeader is set by the platform on every webhook delivery.
const ShopDomainHeader = "X-Shopify-Shop-Domain"

// Handler exposes the ingestion feature over HTTP.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, logger: log}
}

// RegisterRoutes registers the feature's routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	stores := app.Group("/stores")
	stores.Post("/:id/sync", h.HandleTriggerSync)
	stores.Get("/:id/sync", h.HandleSyncStatus)

	webhooks := app.Group("/webhooks")
	webhooks.Post("/orders/create", h.HandleOrderCreated)
	webhooks.Post("/customers/create", h.HandleCustomerCreated)
}

// HandleTriggerSync starts a reconciliation sync for a store.
// @Summary Trigger store sync
// @Description Start a reconciliation sync. Blocks for the report when wait=1, otherwise returns 202 immediately.
// @Tags sync
// @Produce json
// @Param id path string true "Store ID"
// @Param wait query bool false "Block for the terminal report"
// @Success 200 {object} RunStatus "Terminal status (wait mode)"
// @Success 202 {object} RunStatus "Accepted status (async mode)"
// @Router /stores/{id}/sync [post]
func (h *Handler) HandleTriggerSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	storeID := c.Params("id")
	requester := c.Get(RequesterHeader)
	wait := c.QueryBool("wait")

	if requester == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "missing requester identity",
		})
	}

	status, err := h.service.RequestSync(c.Context(), storeID, requester, wait)
	if err != nil {
		return h.renderError(c, l, err)
	}

	if wait {
		return c.JSON(status)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "sync accepted",
		"status":  status,
	})
}

// HandleSyncStatus reports the last/current sync run for a store.
// @Summary Get sync status
// @Tags sync
// @Produce json
// @Param id path string true "Store ID"
// @Success 200 {object} RunStatus
// @Router /stores/{id}/sync [get]
func (h *Handler) HandleSyncStatus(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	storeID := c.Params("id")
	requester := c.Get(RequesterHeader)

	if requester == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "missing requester identity",
		})
	}

	status, err := h.service.Status(c.Context(), storeID, requester)
	if err != nil {
		return h.renderError(c, l, err)
	}
	return c.JSON(status)
}

// HandleOrderCreated ingests an order-created webhook delivery.
// @Summary Order created webhook
// @Description Apply a single pushed order. Idempotent under redelivery.
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /webhooks/orders/create [post]
func (h *Handler) HandleOrderCreated(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	shopDomain := c.Get(ShopDomainHeader)
	if shopDomain == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing shop domain header",
		})
	}

	order, err := h.service.HandleOrderEvent(c.Context(), shopDomain, c.Body())
	if err != nil {
		return h.renderError(c, l, err)
	}

	return c.JSON(fiber.Map{"status": "applied", "order_id": order.ExternalID})
}

// HandleCustomerCreated ingests a customer-created webhook delivery.
// @Summary Customer created webhook
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /webhooks/customers/create [post]
func (h *Handler) HandleCustomerCreated(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	shopDomain := c.Get(ShopDomainHeader)
	if shopDomain == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing shop domain header",
		})
	}

	customer, err := h.service.HandleCustomerEvent(c.Context(), shopDomain, c.Body())
	if err != nil {
		return h.renderError(c, l, err)
	}

	return c.JSON(fiber.Map{"status": "applied", "customer_id": customer.ExternalID})
}

// renderError maps domain errors onto HTTP statuses. Unexpected failures
// surface a generic message plus the proximate cause text.
func (h *Handler) renderError(c *fiber.Ctx, l *zap.Logger, err error) error {
	switch {
	case errors.Is(err, ErrStoreNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrAccessDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrSyncInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrMalformedPayload):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "sync failed: " + err.Error(),
		})
	}
}
