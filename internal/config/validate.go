package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks a resolved Config for values the client cannot work
// with. Resolve output always validates; this exists for configs built
// by hand and for the CLI's validate command.
func Validate(cfg Config) error {
	if cfg.Address == "" {
		return fmt.Errorf("sidecar address is required")
	}
	u, err := url.Parse(cfg.Address)
	if err != nil {
		return fmt.Errorf("invalid sidecar address %q: %w", cfg.Address, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("sidecar address %q must use http or https", cfg.Address)
	}
	if u.Host == "" {
		return fmt.Errorf("sidecar address %q has no host", cfg.Address)
	}
	if strings.HasSuffix(cfg.Address, "/") {
		return fmt.Errorf("sidecar address %q must not end with a slash", cfg.Address)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %v", cfg.RequestTimeout)
	}
	return nil
}
