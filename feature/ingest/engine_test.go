package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shopsync/feature/ingest/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncReconcilesStore(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)
	store := seedStore(t, repo, "acme.myshopify.com", "owner-1")
	engine := newTestEngine(repo, newUpstream(t).URL)

	report, err := engine.Sync(ctx, store)
	require.NoError(t, err)

	assert.Equal(t, ReportSuccess, report.Status)
	assert.Equal(t, 5, report.CustomersFetched)
	assert.Equal(t, 4, report.OrdersFetched)
	assert.Empty(t, report.Failures)
	assert.NotEmpty(t, report.Duration)

	customers, err := repo.CountCustomers(ctx, store.ID)
	require.NoError(t, err)
	orders, err := repo.CountOrders(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), customers)
	assert.Equal(t, int64(4), orders)

	// Three orders link to their customer; the unknown reference stays null.
	rows := loadOrders(t, repo, store.ID)
	idMap, err := repo.CustomerIDMap(ctx, store.ID)
	require.NoError(t, err)

	require.NotNil(t, rows["1001"].CustomerID)
	assert.Equal(t, idMap["101"], *rows["1001"].CustomerID)
	require.NotNil(t, rows["1002"].CustomerID)
	assert.Equal(t, idMap["102"], *rows["1002"].CustomerID)
	require.NotNil(t, rows["1003"].CustomerID)
	assert.Equal(t, idMap["103"], *rows["1003"].CustomerID)
	assert.Nil(t, rows["1004"].CustomerID)

	assert.True(t, rows["1001"].TotalPrice.Equal(decimal.RequireFromString("49.90")))
	require.NotNil(t, rows["1003"].FulfillmentStatus)
	assert.Equal(t, "fulfilled", *rows["1003"].FulfillmentStatus)
}

func TestSyncRerunConverges(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)
	store := seedStore(t, repo, "acme.myshopify.com", "owner-1")
	engine := newTestEngine(repo, newUpstream(t).URL)

	_, err := engine.Sync(ctx, store)
	require.NoError(t, err)
	before := loadOrders(t, repo, store.ID)

	report, err := engine.Sync(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, ReportSuccess, report.Status)

	customers, err := repo.CountCustomers(ctx, store.ID)
	require.NoError(t, err)
	orders, err := repo.CountOrders(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), customers)
	assert.Equal(t, int64(4), orders)

	// Rows keep their local identities across runs.
	after := loadOrders(t, repo, store.ID)
	for externalID, row := range before {
		assert.Equal(t, row.ID, after[externalID].ID, "order %s changed local id", externalID)
	}
}

func TestSyncUnknownCustomerReferenceIsGuest(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)
	store := seedStore(t, repo, "acme.myshopify.com", "owner-1")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/customers.json") {
			fmt.Fprint(w, `{"customers": []}`)
			return
		}
		fmt.Fprint(w, `{"orders": [{"id": 1001, "name": "#1001", "total_price": "1.00", "currency": "EUR", "customer": {"id": 999}}]}`)
	}))
	defer server.Close()

	report, err := newTestEngine(repo, server.URL).Sync(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, ReportSuccess, report.Status)

	rows := loadOrders(t, repo, store.ID)
	require.Contains(t, rows, "1001")
	assert.Nil(t, rows["1001"].CustomerID)
}

func TestSyncAbortsWhenFetchFails(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)
	store := seedStore(t, repo, "acme.myshopify.com", "owner-1")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/orders.json") {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"errors": "something broke"}`)
			return
		}
		fmt.Fprint(w, `{"customers": [{"id": 101}]}`)
	}))
	defer server.Close()

	report, err := newTestEngine(repo, server.URL).Sync(ctx, store)
	require.Error(t, err)
	assert.Equal(t, ReportFailed, report.Status)
	assert.Contains(t, report.Error, "order fetch failed")

	// Nothing was upserted; the run aborted before the apply phase.
	customers, countErr := repo.CountCustomers(ctx, store.ID)
	require.NoError(t, countErr)
	assert.Equal(t, int64(0), customers)
}

func TestSyncMalformedTotalAbortsFailFast(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)
	store := seedStore(t, repo, "acme.myshopify.com", "owner-1")
	server := malformedTotalUpstream(t)

	report, err := newTestEngine(repo, server.URL).Sync(ctx, store)
	require.Error(t, err)
	assert.Equal(t, ReportFailed, report.Status)
	assert.Contains(t, err.Error(), "order upsert failed")
}

func TestSyncMalformedTotalSkippedBestEffort(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)
	store := seedStore(t, repo, "acme.myshopify.com", "owner-1")
	server := malformedTotalUpstream(t)

	cfg := testConfig()
	cfg.BestEffort = true
	engine := NewEngine(testClient(server.URL), repo, testExecutor(), nil, cfg)

	report, err := engine.Sync(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, ReportPartial, report.Status)
	require.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[0], "malformed total")

	// The healthy order still landed.
	orders, err := repo.CountOrders(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), orders)
}

// malformedTotalUpstream serves one broken and one healthy order.
func malformedTotalUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/customers.json") {
			fmt.Fprint(w, `{"customers": []}`)
			return
		}
		fmt.Fprint(w, `{"orders": [
			{"id": 2001, "name": "#2001", "total_price": "not-a-price", "currency": "EUR"},
			{"id": 2002, "name": "#2002", "total_price": "5.00", "currency": "EUR"}
		]}`)
	}))
	t.Cleanup(server.Close)
	return server
}

func loadOrders(t *testing.T, repo *Repository, storeID string) map[string]models.Order {
	t.Helper()

	var rows []models.Order
	require.NoError(t, repo.db.Where("store_id = ?", storeID).Find(&rows).Error)

	byExternalID := make(map[string]models.Order, len(rows))
	for _, row := range rows {
		byExternalID[row.ExternalID] = row
	}
	return byExternalID
}
