package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shopsync/core/database"
	"shopsync/core/retry"
	"shopsync/core/shopify"
	"shopsync/feature/ingest/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *Repository {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	repo := NewRepository(db)
	require.NoError(t, repo.Migrate())
	return repo
}

func seedStore(t *testing.T, repo *Repository, domain, ownerID string) *models.Store {
	t.Helper()

	store := &models.Store{
		ID:          uuid.NewString(),
		ShopDomain:  domain,
		AccessToken: "token-" + domain,
		OwnerID:     ownerID,
	}
	require.NoError(t, repo.CreateStore(context.Background(), store))
	return store
}

func testConfig() Config {
	return Config{
		BatchSize:      3,
		Concurrency:    2,
		MaxRetries:     2,
		RetryBaseMS:    1,
		TimeoutSeconds: 30,
	}
}

func testExecutor() *retry.Executor {
	return retry.NewExecutor(2, time.Millisecond, nil)
}

func testClient(serverURL string) *shopify.Client {
	client := shopify.NewClient(shopify.Config{})
	client.BaseURL = serverURL
	return client
}

func strPtr(s string) *string {
	return &s
}

// newUpstream serves a fixed shop: 5 customers over two pages and 4 orders,
// three of them linked to a known customer and one referencing a customer
// the shop never returned.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasSuffix(r.URL.Path, "/customers.json"):
			if r.URL.Query().Get("page_info") == "" {
				w.Header().Set("Link", fmt.Sprintf(
					`<%s/admin/api/2024-01/customers.json?limit=250&page_info=c2>; rel="next"`, server.URL))
				fmt.Fprint(w, `{"customers": [
					{"id": 101, "email": "ada@example.com", "first_name": "Ada", "last_name": "Lovelace"},
					{"id": 102, "email": "grace@example.com", "first_name": "Grace", "last_name": "Hopper"},
					{"id": 103, "email": null, "first_name": "Edsger", "last_name": "Dijkstra"}
				]}`)
				return
			}
			fmt.Fprint(w, `{"customers": [
				{"id": 104, "email": "barbara@example.com", "first_name": "Barbara", "last_name": "Liskov"},
				{"id": 105, "email": "tony@example.com", "first_name": null, "last_name": null}
			]}`)

		case strings.HasSuffix(r.URL.Path, "/orders.json"):
			fmt.Fprint(w, `{"orders": [
				{"id": 1001, "name": "#1001", "total_price": "49.90", "currency": "EUR", "financial_status": "paid", "customer": {"id": 101}},
				{"id": 1002, "name": "#1002", "total_price": "12.00", "currency": "EUR", "financial_status": "pending", "customer": {"id": 102}},
				{"id": 1003, "name": "#1003", "total_price": "7.50", "currency": "EUR", "financial_status": "paid", "fulfillment_status": "fulfilled", "customer": {"id": 103}},
				{"id": 1004, "name": "#1004", "total_price": "99.00", "currency": "EUR", "financial_status": "paid", "customer": {"id": 999}}
			]}`)

		default:
			t.Errorf("unexpected request path %s", r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestEngine(repo *Repository, serverURL string) *Engine {
	return NewEngine(testClient(serverURL), repo, testExecutor(), nil, testConfig())
}
