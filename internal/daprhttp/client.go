package daprhttp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"syscall"

	"github.com/runmesh/sidekick/internal/config"
	"github.com/runmesh/sidekick/internal/ports"
)

// Client talks to a locally-running Dapr-compatible sidecar over HTTP.
//
// One shared http.Client is reused across all calls; per-call state
// lives entirely in call-local scope, so a Client is safe for
// concurrent use without internal locking. The default address is
// resolved once at construction and never recomputed.
type Client struct {
	http     *http.Client
	address  string
	apiToken string
	log      *slog.Logger
}

// Option customizes a Client at construction.
type Option func(*Client)

// WithLogger sets the logger for debug-level request logging. The
// default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithHTTPClient replaces the underlying transport handle. Pooling and
// reuse policy belong to the supplied client; sidekick imposes none of
// its own.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client from a resolved configuration.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	c := &Client{
		address:  strings.TrimSuffix(cfg.Address, "/"),
		apiToken: cfg.APIToken,
		log:      slog.New(slog.DiscardHandler),
		http: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        cfg.MaxIdleConns,
				MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
				IdleConnTimeout:     cfg.IdleConnTimeout,
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Address returns the resolved default sidecar base address.
func (c *Client) Address() string { return c.address }

// Close releases idle connections held by the transport.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// resolveAddress returns the base address for one call: the per-call
// override when given, else the construction-time default. A single
// trailing slash is stripped because paths are joined with a literal
// "/".
func (c *Client) resolveAddress(opts []ports.CallOption) string {
	var cs ports.CallSettings
	for _, opt := range opts {
		opt(&cs)
	}
	addr := c.address
	if cs.Address != "" {
		addr = cs.Address
	}
	return strings.TrimSuffix(addr, "/")
}

// newRequest builds a request carrying the caller's context and the
// headers every sidecar call shares.
func (c *Client) newRequest(ctx context.Context, verb, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, verb, url, body)
	if err != nil {
		return nil, ports.RequestFailed(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiToken != "" {
		req.Header.Set("dapr-api-token", c.apiToken)
	}
	return req, nil
}

// do executes one request and applies the normalization protocol:
// cancellation, connection refusal, and generic transport faults each
// map to their Status kind; a non-2xx response goes through error-body
// interpretation. A 2xx response is returned untouched and its body is
// the caller's to close.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	c.log.Debug("sidecar request", "verb", req.Method, "url", req.URL.String())

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ports.Cancelled(ctxErr)
		}
		if errors.Is(err, syscall.ECONNREFUSED) {
			return nil, ports.SidecarNotPresent(err)
		}
		return nil, ports.RequestFailed(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer drain(resp)
	return nil, interpretError(resp)
}

// doDiscard runs do and throws away the success payload, for the
// operations whose success carries none.
func (c *Client) doDiscard(req *http.Request) error {
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// drain consumes what is left of a body so the connection can be
// reused, then closes it.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// Compile-time check that Client implements the Sidecar port.
var _ ports.Sidecar = (*Client)(nil)
