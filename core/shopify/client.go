package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// UpstreamError is returned for any non-success response from the API.
// The body is carried verbatim for diagnostics.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream API returned status %d: %s", e.Status, e.Body)
}

// Client talks to the upstream commerce API.
type Client struct {
	httpClient *http.Client
	apiVersion string
	pageSize   int

	// BaseURL overrides the https://{shop} base when set. Tests point it
	// at an httptest server.
	BaseURL string
}

// NewClient creates a new API client from configuration.
func NewClient(cfg Config) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > 250 {
		pageSize = 250
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = "2024-01"
	}

	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
		apiVersion: apiVersion,
		pageSize:   pageSize,
	}
}

// FetchAll walks a collection endpoint to completion, following the Link
// header cursor, and returns the concatenated raw records. The response
// body is an object whose top-level key is the resource name, e.g.
// {"customers": [...]} for the customers resource.
func (c *Client) FetchAll(ctx context.Context, shopDomain, accessToken, resource string, query url.Values) ([]json.RawMessage, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("limit", strconv.Itoa(c.pageSize))

	pageURL := fmt.Sprintf("%s/admin/api/%s/%s.json?%s",
		c.base(shopDomain), c.apiVersion, resource, query.Encode())

	var records []json.RawMessage
	for pageURL != "" {
		page, next, err := c.fetchPage(ctx, pageURL, accessToken, resource)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)
		pageURL = next
	}

	return records, nil
}

// FetchCustomers retrieves the complete customer collection for a shop.
func (c *Client) FetchCustomers(ctx context.Context, shopDomain, accessToken string) ([]Customer, error) {
	raw, err := c.FetchAll(ctx, shopDomain, accessToken, "customers", nil)
	if err != nil {
		return nil, err
	}

	customers := make([]Customer, 0, len(raw))
	for _, r := range raw {
		var cu Customer
		if err := json.Unmarshal(r, &cu); err != nil {
			return nil, fmt.Errorf("failed to decode customer record: %w", err)
		}
		customers = append(customers, cu)
	}
	return customers, nil
}

// FetchOrders retrieves the complete order collection for a shop,
// including orders in every status.
func (c *Client) FetchOrders(ctx context.Context, shopDomain, accessToken string) ([]Order, error) {
	query := url.Values{}
	query.Set("status", "any")

	raw, err := c.FetchAll(ctx, shopDomain, accessToken, "orders", query)
	if err != nil {
		return nil, err
	}

	orders := make([]Order, 0, len(raw))
	for _, r := range raw {
		var o Order
		if err := json.Unmarshal(r, &o); err != nil {
			return nil, fmt.Errorf("failed to decode order record: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// fetchPage issues a single page request and returns the page's records
// plus the next page URL, or "" when the cursor is exhausted.
func (c *Client) fetchPage(ctx context.Context, pageURL, accessToken, resource string) ([]json.RawMessage, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request to %s failed: %w", pageURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, "", fmt.Errorf("failed to decode response envelope: %w", err)
	}

	var page []json.RawMessage
	if collection, ok := envelope[resource]; ok {
		if err := json.Unmarshal(collection, &page); err != nil {
			return nil, "", fmt.Errorf("failed to decode %s collection: %w", resource, err)
		}
	}

	return page, nextPageURL(resp.Header.Get("Link")), nil
}

func (c *Client) base(shopDomain string) string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return "https://" + shopDomain
}

// nextPageURL extracts the rel="next" URL from a Link header of the form
//
//	<https://shop/admin/api/.../customers.json?page_info=abc>; rel="next"
//
// possibly alongside a rel="previous" entry. Returns "" when absent.
func nextPageURL(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}

	for _, part := range strings.Split(linkHeader, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}

		urlPart := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(urlPart, "<") || !strings.HasSuffix(urlPart, ">") {
			continue
		}

		for _, rel := range segments[1:] {
			if strings.TrimSpace(rel) == `rel="next"` {
				return strings.Trim(urlPart, "<>")
			}
		}
	}

	return ""
}
