package shopify

// Config holds configuration for the commerce API client.
type Config struct {
	// APIVersion is the upstream API version path segment.
	APIVersion string `mapstructure:"api_version" default:"2024-01"`
	// PageSize is the per-page record limit requested from the API.
	// The upstream maximum is 250.
	PageSize int `mapstructure:"page_size" default:"250"`
	// TimeoutSeconds bounds each individual page request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
