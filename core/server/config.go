package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the sync API.
	// Webhook routes are exempt; the platform cannot send custom headers.
	ApiKey string `mapstructure:"api_key" default:""`
}
