package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(repo *Repository, serverURL string) *Service {
	engine := newTestEngine(repo, serverURL)
	applier := NewApplier(repo, testExecutor(), nil)
	return NewService(repo, engine, applier, nil, nil, testConfig())
}

func TestRequestSyncWaited(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)
	store := seedStore(t, repo, "acme.myshopify.com", "owner-1")
	service := newTestService(repo, newUpstream(t).URL)

	status, err := service.RequestSync(ctx, store.ID, "owner-1", true)
	require.NoError(t, err)

	assert.Equal(t, RunStateCompleted, status.State)
	require.NotNil(t, status.Report)
	assert.Equal(t, ReportSuccess, status.Report.Status)
	assert.Equal(t, 5, status.Report.CustomersFetched)
	assert.Equal(t, 4, status.Report.OrdersFetched)
}

func TestRequestSyncOwnershipGate(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)
	store := seedStore(t, repo, "acme.myshopify.com", "owner-1")
	service := newTestService(repo, newUpstream(t).URL)

	_, err := service.RequestSync(ctx, store.ID, "intruder", true)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = service.RequestSync(ctx, "missing-store", "owner-1", true)
	assert.ErrorIs(t, err, ErrStoreNotFound)

	// The gated requests must not have left a run record behind.
	status, err := service.Status(ctx, store.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, RunStateIdle, status.State)
}

func TestRequestSyncDetached(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)
	store := seedStore(t, repo, "acme.myshopify.com", "owner-1")

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		if strings.HasSuffix(r.URL.Path, "/orders.json") {
			fmt.Fprint(w, `{"orders": []}`)
			return
		}
		fmt.Fprint(w, `{"customers": [{"id": 101}]}`)
	}))
	defer server.Close()

	service := newTestService(repo, server.URL)

	accepted, err := service.RequestSync(ctx, store.ID, "owner-1", false)
	require.NoError(t, err)
	assert.Equal(t, RunStateRunning, accepted.State)

	// A second request while the first is in flight is rejected.
	_, err = service.RequestSync(ctx, store.ID, "owner-1", false)
	assert.ErrorIs(t, err, ErrSyncInProgress)

	close(release)

	require.Eventually(t, func() bool {
		status, err := service.Status(ctx, store.ID, "owner-1")
		return err == nil && status.State == RunStateCompleted
	}, 5*time.Second, 10*time.Millisecond)

	status, err := service.Status(ctx, store.ID, "owner-1")
	require.NoError(t, err)
	require.NotNil(t, status.Report)
	assert.Equal(t, 1, status.Report.CustomersFetched)

	// The slot is free again.
	_, err = service.RequestSync(ctx, store.ID, "owner-1", true)
	require.NoError(t, err)
}

func TestSyncShopByDomain(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)
	seedStore(t, repo, "acme.myshopify.com", "owner-1")
	service := newTestService(repo, newUpstream(t).URL)

	status, err := service.SyncShop(ctx, "acme.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, RunStateCompleted, status.State)

	_, err = service.SyncShop(ctx, "unknown.myshopify.com")
	assert.ErrorIs(t, err, ErrStoreNotFound)
}

func TestSyncShopSurfacesRunFailure(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)
	seedStore(t, repo, "acme.myshopify.com", "owner-1")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	service := newTestService(repo, server.URL)
	status, err := service.SyncShop(ctx, "acme.myshopify.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync failed")
	require.NotNil(t, status)
	assert.Equal(t, RunStateFailed, status.State)
}

func TestHandleOrderEvent(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)
	seedStore(t, repo, "acme.myshopify.com", "owner-1")
	service := newTestService(repo, newUpstream(t).URL)

	order, err := service.HandleOrderEvent(ctx, "acme.myshopify.com",
		[]byte(`{"id": 1001, "name": "#1001", "total_price": "49.90", "currency": "EUR"}`))
	require.NoError(t, err)
	assert.Equal(t, "1001", order.ExternalID)

	_, err = service.HandleOrderEvent(ctx, "unknown.myshopify.com", []byte(`{}`))
	assert.ErrorIs(t, err, ErrStoreNotFound)

	_, err = service.HandleOrderEvent(ctx, "acme.myshopify.com", []byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestHandleCustomerEvent(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)
	store := seedStore(t, repo, "acme.myshopify.com", "owner-1")
	service := newTestService(repo, newUpstream(t).URL)

	customer, err := service.HandleCustomerEvent(ctx, "acme.myshopify.com",
		[]byte(`{"id": 101, "email": "ada@example.com", "first_name": "Ada"}`))
	require.NoError(t, err)
	assert.Equal(t, "101", customer.ExternalID)

	count, err := repo.CountCustomers(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = service.HandleCustomerEvent(ctx, "acme.myshopify.com", []byte(`{"id": "nope"}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}
