// Package shopify is the read-only client for the upstream commerce API.
//
// The API paginates collection endpoints with a cursor carried in the Link
// response header; there is no way to know the page count up front, so
// FetchAll is driven purely by the presence of a rel="next" link. The client
// never retries: a non-success response already represents a completed read
// attempt and surfaces as an UpstreamError with the response body attached
// for diagnostics.
package shopify
