package shopify

import "time"

// Customer is the raw customer record as returned by the API.
// Display fields are pointers because the platform allows all of them to be
// absent (e.g. POS customers without an email).
type Customer struct {
	ID        int64   `json:"id"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// OrderCustomer is the customer reference embedded in an order payload.
type OrderCustomer struct {
	ID int64 `json:"id"`
}

// Order is the raw order record as returned by the API.
// ProcessedAt is nil for orders the platform has not processed yet and
// Customer is nil for guest checkouts.
type Order struct {
	ID                int64          `json:"id"`
	Name              string         `json:"name"`
	TotalPrice        string         `json:"total_price"`
	Currency          string         `json:"currency"`
	FinancialStatus   string         `json:"financial_status"`
	FulfillmentStatus *string        `json:"fulfillment_status"`
	ProcessedAt       *time.Time     `json:"processed_at"`
	Customer          *OrderCustomer `json:"customer"`
}
