// Package models defines the persisted entities of the ingestion feature.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Store is a connected shop, the tenant of the system. Every customer and
// order row belongs to exactly one store and is never shared across stores.
type Store struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ShopDomain  string    `gorm:"size:255;uniqueIndex" json:"shop_domain"`
	AccessToken string    `gorm:"size:255" json:"-"`
	OwnerID     string    `gorm:"size:36;index" json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Customer is a locally-keyed copy of an upstream customer record.
// (ExternalID, StoreID) is unique and serves as the upsert key; display
// fields are nullable because the platform allows them to be absent.
type Customer struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ExternalID string    `gorm:"size:64;not null;uniqueIndex:idx_customers_external_store" json:"external_id"`
	StoreID    string    `gorm:"size:36;not null;uniqueIndex:idx_customers_external_store;index" json:"store_id"`
	FirstName  *string   `gorm:"size:255" json:"first_name"`
	LastName   *string   `gorm:"size:255" json:"last_name"`
	Email      *string   `gorm:"size:255" json:"email"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Order is a locally-keyed copy of an upstream order record.
// CustomerID is nil for guest orders and for orders whose customer is not
// known locally; when set it always references a customer of the same
// store, guaranteed by resolving through the per-store id map.
type Order struct {
	ID                string          `gorm:"primaryKey;size:36" json:"id"`
	ExternalID        string          `gorm:"size:64;not null;uniqueIndex:idx_orders_external_store" json:"external_id"`
	StoreID           string          `gorm:"size:36;not null;uniqueIndex:idx_orders_external_store;index" json:"store_id"`
	Name              string          `gorm:"size:64" json:"name"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_price"`
	Currency          string          `gorm:"size:8" json:"currency"`
	FinancialStatus   string          `gorm:"size:32" json:"financial_status"`
	FulfillmentStatus *string         `gorm:"size:32" json:"fulfillment_status"`
	ProcessedAt       *time.Time      `json:"processed_at"`
	CustomerID        *string         `gorm:"size:36;index" json:"customer_id"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
