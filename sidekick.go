// Package sidekick is a resilient HTTP client for a locally-running
// Dapr-compatible sidecar: state stores, pub/sub, service invocation,
// output bindings, and secrets behind one small surface with a uniform
// error taxonomy.
//
// Every failure an operation can produce is a *sidekick.Status tagged
// with one of four kinds: invalid argument (caught before any network
// I/O), sidecar not present (connection refused), sidecar error (any
// other transport fault or non-2xx response, normalized from the
// sidecar's error envelope), and cancelled (the caller's context fired
// mid-call).
//
// Quick start, environment-driven (reads DAPR_HTTP_PORT, default 3500):
//
//	client, err := sidekick.Connect()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.SaveState(ctx, "statestore", []sidekick.StateRecord{
//	    {Key: "order-1", Value: json.RawMessage(`{"qty":2}`)},
//	})
//
// Config-file driven:
//
//	client, err := sidekick.ConnectFile("sidekick.yaml")
//
// with sidekick.yaml:
//
//	sidecar:
//	  http_port: 3500
//	  request_timeout: 30s
//
// Checking failures:
//
//	if sidekick.IsSidecarNotPresent(err) {
//	    // sidecar isn't running; degrade instead of failing hard
//	}
package sidekick

import (
	"fmt"
	"os"

	"github.com/runmesh/sidekick/internal/config"
	"github.com/runmesh/sidekick/internal/daprhttp"
	"github.com/runmesh/sidekick/internal/inmemory"
	"github.com/runmesh/sidekick/internal/ports"
)

// EnvConfig names the config file for ConnectDefault. Optional; when
// unset the environment-only defaults apply.
const EnvConfig = "SIDEKICK_CONFIG"

// Client is the HTTP sidecar client. It is safe for concurrent use.
type Client = daprhttp.Client

// Option customizes client construction.
type Option = daprhttp.Option

// Construction options, re-exported from the HTTP adapter.
var (
	WithLogger     = daprhttp.WithLogger
	WithHTTPClient = daprhttp.WithHTTPClient
)

// Core types crossing the client surface.
type (
	Sidecar        = ports.Sidecar
	StateRecord    = ports.StateRecord
	StateOptions   = ports.StateOptions
	BindingMessage = ports.BindingMessage
	Status         = ports.Status
	ErrorKind      = ports.ErrorKind
	CallOption     = ports.CallOption
)

// Error kinds, re-exported for kind checks on an extracted Status.
const (
	KindInvalidArgument   = ports.KindInvalidArgument
	KindSidecarNotPresent = ports.KindSidecarNotPresent
	KindSidecarError      = ports.KindSidecarError
	KindCancelled         = ports.KindCancelled
)

// Error helpers, re-exported.
var (
	AsStatus            = ports.AsStatus
	IsInvalidArgument   = ports.IsInvalidArgument
	IsSidecarNotPresent = ports.IsSidecarNotPresent
	IsCancelled         = ports.IsCancelled
)

// WithAddress overrides the sidecar base address for one call.
var WithAddress = ports.WithAddress

// InMemorySidecar is a process-local Sidecar for consumer unit tests.
type InMemorySidecar = inmemory.Sidecar

// NewInMemory returns an empty in-memory sidecar implementing Sidecar.
func NewInMemory() *InMemorySidecar { return inmemory.New() }

// Connect creates a client from the environment alone: the sidecar
// address comes from DAPR_HTTP_PORT (default 3500), the API token from
// DAPR_API_TOKEN.
func Connect(opts ...Option) (*Client, error) {
	cfg, err := config.Default()
	if err != nil {
		return nil, fmt.Errorf("resolving sidecar configuration: %w", err)
	}
	return daprhttp.New(cfg, opts...)
}

// ConnectFile creates a client from a configuration file. Environment
// variables still override file values.
func ConnectFile(configPath string, opts ...Option) (*Client, error) {
	fc, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Resolve(fc)
	if err != nil {
		return nil, fmt.Errorf("resolving sidecar configuration: %w", err)
	}
	return daprhttp.New(cfg, opts...)
}

// ConnectDefault creates a client from the file named by the
// SIDEKICK_CONFIG environment variable when set, else from the
// environment alone.
func ConnectDefault(opts ...Option) (*Client, error) {
	if path := os.Getenv(EnvConfig); path != "" {
		return ConnectFile(path, opts...)
	}
	return Connect(opts...)
}
