package ingest

import (
	"fmt"
	"strconv"

	"shopsync/core/shopify"
	"shopsync/feature/ingest/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerFromAPI maps a raw upstream customer onto the local schema.
// The fresh local id is only used when the upsert inserts; an existing row
// keeps its id.
func CustomerFromAPI(raw shopify.Customer, storeID string) *models.Customer {
	return &models.Customer{
		ID:         uuid.NewString(),
		ExternalID: strconv.FormatInt(raw.ID, 10),
		StoreID:    storeID,
		FirstName:  raw.FirstName,
		LastName:   raw.LastName,
		Email:      raw.Email,
	}
}

// OrderFromAPI maps a raw upstream order onto the local schema. customerID
// is the already-resolved local customer id, nil for guest orders or
// unresolved references.
func OrderFromAPI(raw shopify.Order, storeID string, customerID *string) (*models.Order, error) {
	total := decimal.Zero
	if raw.TotalPrice != "" {
		parsed, err := decimal.NewFromString(raw.TotalPrice)
		if err != nil {
			return nil, fmt.Errorf("order %d has malformed total %q: %w", raw.ID, raw.TotalPrice, err)
		}
		total = parsed
	}

	return &models.Order{
		ID:                uuid.NewString(),
		ExternalID:        strconv.FormatInt(raw.ID, 10),
		StoreID:           storeID,
		Name:              raw.Name,
		TotalPrice:        total,
		Currency:          raw.Currency,
		FinancialStatus:   raw.FinancialStatus,
		FulfillmentStatus: raw.FulfillmentStatus,
		ProcessedAt:       raw.ProcessedAt,
		CustomerID:        customerID,
	}, nil
}

// customerExternalID extracts the external customer id embedded in an
// order, or "" when the order has no customer reference.
func customerExternalID(raw shopify.Order) string {
	if raw.Customer == nil {
		return ""
	}
	return strconv.FormatInt(raw.Customer.ID, 10)
}
