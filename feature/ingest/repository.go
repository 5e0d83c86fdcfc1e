package ingest

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"shopsync/core/retry"
	"shopsync/feature/ingest/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository owns all database access for the ingestion feature. It is the
// single place where store failures are classified as transient or
// permanent; callers never inspect driver errors themselves.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository on the given connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the feature's tables.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&models.Store{}, &models.Customer{}, &models.Order{})
}

// StoreByID fetches a store by its local identifier.
func (r *Repository) StoreByID(ctx context.Context, id string) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return &store, nil
}

// StoreByDomain fetches a store by its shop domain. Webhook deliveries
// identify the tenant this way.
func (r *Repository) StoreByDomain(ctx context.Context, shopDomain string) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).First(&store, "shop_domain = ?", shopDomain).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return &store, nil
}

// StoreForOwner fetches a store and verifies the requester owns it.
func (r *Repository) StoreForOwner(ctx context.Context, storeID, ownerID string) (*models.Store, error) {
	store, err := r.StoreByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.OwnerID != ownerID {
		return nil, ErrAccessDenied
	}
	return store, nil
}

// CreateStore persists a new store. Used by provisioning and tests; the
// ingestion paths themselves never create stores.
func (r *Repository) CreateStore(ctx context.Context, store *models.Store) error {
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return classify(err)
	}
	return nil
}

// UpsertCustomer inserts the customer or, when (external_id, store_id)
// already exists, refreshes its mutable fields. The existing row keeps its
// local id.
func (r *Repository) UpsertCustomer(ctx context.Context, customer *models.Customer) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}, {Name: "store_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "last_name", "email", "updated_at",
		}),
	}).Create(customer).Error
	if err != nil {
		return classify(err)
	}
	return nil
}

// UpsertOrder inserts the order or refreshes its mutable fields, including
// the customer link, under the (external_id, store_id) key.
func (r *Repository) UpsertOrder(ctx context.Context, order *models.Order) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}, {Name: "store_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "total_price", "currency", "financial_status",
			"fulfillment_status", "processed_at", "customer_id", "updated_at",
		}),
	}).Create(order).Error
	if err != nil {
		return classify(err)
	}
	return nil
}

// CustomerIDMap returns the external id -> local id map for every customer
// of the store. This reflects effective current state, not just the rows
// the running sync touched, so orders can link to customers ingested in
// earlier runs.
func (r *Repository) CustomerIDMap(ctx context.Context, storeID string) (map[string]string, error) {
	var rows []struct {
		ID         string
		ExternalID string
	}
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Select("id", "external_id").
		Where("store_id = ?", storeID).
		Find(&rows).Error
	if err != nil {
		return nil, classify(err)
	}

	idMap := make(map[string]string, len(rows))
	for _, row := range rows {
		idMap[row.ExternalID] = row.ID
	}
	return idMap, nil
}

// ResolveCustomerID looks up the local id for a customer external id.
// An unknown external id resolves to nil, never an error: orders referring
// to customers we have not seen are stored as guest orders.
func (r *Repository) ResolveCustomerID(ctx context.Context, storeID, externalID string) (*string, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Select("id").
		First(&customer, "store_id = ? AND external_id = ?", storeID, externalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return &customer.ID, nil
}

// CountCustomers returns the number of customer rows for a store.
func (r *Repository) CountCustomers(ctx context.Context, storeID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Where("store_id = ?", storeID).Count(&n).Error
	if err != nil {
		return 0, classify(err)
	}
	return n, nil
}

// CountOrders returns the number of order rows for a store.
func (r *Repository) CountOrders(ctx context.Context, storeID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("store_id = ?", storeID).Count(&n).Error
	if err != nil {
		return 0, classify(err)
	}
	return n, nil
}

// classify tags pool-pressure and connectivity failures as transient so the
// retry executor knows they are worth retrying. Constraint violations and
// any other database error are permanent and propagate as-is. The check is
// structural; error message text is never matched.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return retry.MarkTransient(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return retry.MarkTransient(err)
	}

	return err
}
