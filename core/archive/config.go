package archive

// Config holds configuration for the payload archive.
// Leaving Endpoint empty disables archiving entirely.
type Config struct {
	// Endpoint is the object storage endpoint (host:port).
	Endpoint string `mapstructure:"endpoint" default:""`
	// AccessKey is the storage access key.
	AccessKey string `mapstructure:"access_key" default:""`
	// SecretKey is the storage secret key.
	SecretKey string `mapstructure:"secret_key" default:""`
	// Bucket is the bucket receiving archived payloads.
	Bucket string `mapstructure:"bucket" default:"shopsync"`
	// Prefix is prepended to every object name.
	Prefix string `mapstructure:"prefix" default:"archive"`
	// Region is the storage region.
	Region string `mapstructure:"region" default:""`
	// UseSSL enables TLS towards the endpoint.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// TimeoutSeconds bounds storage requests.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Enabled reports whether archiving is configured.
func (c Config) Enabled() bool {
	return c.Endpoint != ""
}
