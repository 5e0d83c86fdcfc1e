package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchAllFollowsLinkCursor(t *testing.T) {
	var requests atomic.Int32
	var server *httptest.Server

	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		assert.Equal(t, "/admin/api/2024-01/customers.json", r.URL.Path)
		assert.Equal(t, "secret-token", r.Header.Get("X-Shopify-Access-Token"))
		assert.Equal(t, "250", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page_info") {
		case "":
			// First page carries both cursors; only rel="next" matters.
			w.Header().Set("Link", fmt.Sprintf(
				`<%s/admin/api/2024-01/customers.json?limit=250&page_info=prev>; rel="previous", <%s/admin/api/2024-01/customers.json?limit=250&page_info=page2>; rel="next"`,
				server.URL, server.URL))
			fmt.Fprint(w, `{"customers": [{"id": 1}, {"id": 2}, {"id": 3}]}`)
		case "page2":
			fmt.Fprint(w, `{"customers": [{"id": 4}, {"id": 5}]}`)
		default:
			t.Errorf("unexpected page_info %q", r.URL.Query().Get("page_info"))
		}
	}))
	defer server.Close()

	client := NewClient(Config{})
	client.BaseURL = server.URL

	records, err := client.FetchAll(context.Background(), "example.myshopify.com", "secret-token", "customers", nil)
	require.NoError(t, err)

	// 2 pages of 3 + 2 records, one request per page.
	assert.Len(t, records, 5)
	assert.Equal(t, int32(2), requests.Load())
}

func TestFetchAllSinglePage(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `{"orders": [{"id": 10}]}`)
	}))
	defer server.Close()

	client := NewClient(Config{})
	client.BaseURL = server.URL

	records, err := client.FetchAll(context.Background(), "shop", "token", "orders", nil)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int32(1), requests.Load())
}

func TestFetchAllUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"errors": "Exceeded 2 calls per second"}`)
	}))
	defer server.Close()

	client := NewClient(Config{})
	client.BaseURL = server.URL

	_, err := client.FetchAll(context.Background(), "shop", "token", "customers", nil)
	require.Error(t, err)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusTooManyRequests, upstream.Status)
	assert.Contains(t, upstream.Body, "Exceeded 2 calls per second")
}

func TestFetchOrdersRequestsAnyStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-01/orders.json", r.URL.Path)
		assert.Equal(t, "any", r.URL.Query().Get("status"))
		fmt.Fprint(w, `{"orders": [{"id": 7, "name": "#1007", "total_price": "19.90", "currency": "EUR", "financial_status": "paid"}]}`)
	}))
	defer server.Close()

	client := NewClient(Config{})
	client.BaseURL = server.URL

	orders, err := client.FetchOrders(context.Background(), "shop", "token")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(7), orders[0].ID)
	assert.Equal(t, "#1007", orders[0].Name)
	assert.Equal(t, "19.90", orders[0].TotalPrice)
	assert.Nil(t, orders[0].Customer)
}

func TestFetchCustomersDecodesNullableFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"customers": [{"id": 42, "email": null, "first_name": "Ada", "last_name": null}]}`)
	}))
	defer server.Close()

	client := NewClient(Config{})
	client.BaseURL = server.URL

	customers, err := client.FetchCustomers(context.Background(), "shop", "token")
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, int64(42), customers[0].ID)
	assert.Nil(t, customers[0].Email)
	require.NotNil(t, customers[0].FirstName)
	assert.Equal(t, "Ada", *customers[0].FirstName)
	assert.Nil(t, customers[0].LastName)
}

func TestNextPageURL(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "empty header",
			header: "",
			want:   "",
		},
		{
			name:   "next only",
			header: `<https://shop/admin/customers.json?page_info=abc>; rel="next"`,
			want:   "https://shop/admin/customers.json?page_info=abc",
		},
		{
			name:   "previous only",
			header: `<https://shop/admin/customers.json?page_info=abc>; rel="previous"`,
			want:   "",
		},
		{
			name:   "previous and next",
			header: `<https://shop/a?page_info=p>; rel="previous", <https://shop/a?page_info=n>; rel="next"`,
			want:   "https://shop/a?page_info=n",
		},
		{
			name:   "malformed segment ignored",
			header: `garbage, <https://shop/a?page_info=n>; rel="next"`,
			want:   "https://shop/a?page_info=n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextPageURL(tt.header))
		})
	}
}
