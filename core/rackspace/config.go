package rackspace

// Config holds configuration for the provider API client.
type Config struct {
	// APIURL is the base URL of the provider REST API.
	APIURL string `mapstructure:"api_url" default:"https://api.emailsrvr.com"`
	// UserKey is the API user key used for request signing.
	UserKey string `mapstructure:"user_key" default:""`
	// SecretKey is the API secret key used for request signing.
	SecretKey string `mapstructure:"secret_key" default:""`
	// CustomerID is the provider customer number all paths are scoped to.
	CustomerID string `mapstructure:"customer_id" default:"me"`
	// UserAgent is reported on every request and is part of the signature.
	UserAgent string `mapstructure:"user_agent" default:"mailsync"`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// ReadPerMinute caps GET calls per minute.
	ReadPerMinute int `mapstructure:"read_per_minute" default:"120"`
	// WritePerMinute caps PUT/POST/DELETE calls per minute.
	WritePerMinute int `mapstructure:"write_per_minute" default:"90"`
}
