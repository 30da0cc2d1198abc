package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Resolve turns a FileConfig into the immutable runtime Config:
// file values first, then environment overrides, then defaults.
func Resolve(fc FileConfig) (Config, error) {
	cfg := Config{
		Address:             fc.Sidecar.Address,
		APIToken:            fc.Sidecar.APIToken,
		RequestTimeout:      DefaultRequestTimeout,
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	if fc.Sidecar.RequestTimeout != "" {
		d, err := time.ParseDuration(fc.Sidecar.RequestTimeout)
		if err != nil {
			return cfg, fmt.Errorf("invalid sidecar.request_timeout %q: %w", fc.Sidecar.RequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	if fc.HTTP.MaxIdleConns > 0 {
		cfg.MaxIdleConns = fc.HTTP.MaxIdleConns
	}
	if fc.HTTP.MaxIdleConnsPerHost > 0 {
		cfg.MaxIdleConnsPerHost = fc.HTTP.MaxIdleConnsPerHost
	}
	if fc.HTTP.IdleConnTimeout != "" {
		d, err := time.ParseDuration(fc.HTTP.IdleConnTimeout)
		if err != nil {
			return cfg, fmt.Errorf("invalid http.idle_conn_timeout %q: %w", fc.HTTP.IdleConnTimeout, err)
		}
		cfg.IdleConnTimeout = d
	}

	if cfg.Address == "" {
		port := fc.Sidecar.HTTPPort
		if port <= 0 {
			port = portFromEnv()
		}
		cfg.Address = fmt.Sprintf("http://localhost:%d", port)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}

	cfg.Address = strings.TrimSuffix(cfg.Address, "/")
	return cfg, nil
}

// Default resolves a Config from the environment alone, for callers
// that carry no config file.
func Default() (Config, error) {
	return Resolve(FileConfig{})
}

// applyEnvOverrides overrides config values with environment variables
// if set. Invalid deliberate values fail fast; the port is the one
// documented exception (see portFromEnv).
func applyEnvOverrides(cfg *Config) error {
	if token := os.Getenv(EnvAPIToken); token != "" {
		cfg.APIToken = token
	}
	if timeout := os.Getenv(EnvRequestTimeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvRequestTimeout, timeout, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}

// portFromEnv reads DAPR_HTTP_PORT. Unset or unparseable values fall
// back to DefaultHTTPPort: the sidecar injects this variable, and a
// host must still construct a client when it is absent or mangled.
func portFromEnv() int {
	raw := os.Getenv(EnvHTTPPort)
	if raw == "" {
		return DefaultHTTPPort
	}
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port <= 0 {
		return DefaultHTTPPort
	}
	return port
}
