package config

import "time"

// Defaults applied when neither the config file nor the environment
// supplies a value.
const (
	// DefaultHTTPPort is the well-known sidecar HTTP port used when
	// DAPR_HTTP_PORT is unset or unparseable.
	DefaultHTTPPort = 3500

	DefaultRequestTimeout      = 30 * time.Second
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
	DefaultIdleConnTimeout     = 90 * time.Second
)

// Environment variables consulted by Resolve.
const (
	// EnvHTTPPort names the sidecar's HTTP port. Unset or unparseable
	// values fall back to DefaultHTTPPort rather than failing: a host
	// process must come up even when the injected port is garbage.
	EnvHTTPPort = "DAPR_HTTP_PORT"

	// EnvAPIToken carries the sidecar API auth token, sent as the
	// dapr-api-token header when non-empty.
	EnvAPIToken = "DAPR_API_TOKEN"

	// EnvRequestTimeout overrides the per-request timeout. Invalid
	// durations fail fast, matching the strictness applied to every
	// env value the process owner sets deliberately.
	EnvRequestTimeout = "SIDEKICK_HTTP_TIMEOUT"
)

// SidecarSection contains sidecar connection configuration.
type SidecarSection struct {
	// Address is the full base URL of the sidecar, e.g.
	// "http://localhost:3500". When set it wins over HTTPPort.
	Address string `yaml:"address"`

	// HTTPPort composes into "http://localhost:<port>" when Address is
	// empty. Zero means "use DAPR_HTTP_PORT or the default".
	HTTPPort int `yaml:"http_port"`

	// APIToken is sent as the dapr-api-token header on every request.
	APIToken string `yaml:"api_token"`

	// RequestTimeout is the per-request timeout in Go duration format
	// ("5s", "1m"). Empty means DefaultRequestTimeout.
	RequestTimeout string `yaml:"request_timeout"`
}

// HTTPSection contains transport tuning knobs. These are collaborator
// concerns (connection pooling stays with net/http) but are surfaced so
// deployments can bound idle connections.
type HTTPSection struct {
	MaxIdleConns        int    `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int    `yaml:"max_idle_conns_per_host"`
	IdleConnTimeout     string `yaml:"idle_conn_timeout"`
}

// FileConfig represents a sidekick configuration file.
//
// The format is versioned to support future evolution without breaking
// changes.
type FileConfig struct {
	// Version is the config file format version (optional, currently always 1)
	Version int `yaml:"version,omitempty"`

	Sidecar SidecarSection `yaml:"sidecar"`
	HTTP    HTTPSection    `yaml:"http"`
}

// Config is the fully resolved, immutable configuration a client is
// constructed from. It is computed once; nothing re-reads the
// environment after construction.
type Config struct {
	// Address is the sidecar base URL with any trailing slash stripped.
	Address string

	APIToken       string
	RequestTimeout time.Duration

	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}
