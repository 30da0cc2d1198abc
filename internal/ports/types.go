package ports

import "encoding/json"

// StateRecord is one key/value entry in a state store. Value is carried
// as raw JSON so payloads round-trip byte-for-byte through the sidecar.
// An empty ETag means "no concurrency check"; a non-empty one is the
// opaque version token the sidecar returned on a previous read.
type StateRecord struct {
	Key     string          `json:"key"`
	Value   json.RawMessage `json:"value,omitempty"`
	ETag    string          `json:"etag,omitempty"`
	Options *StateOptions   `json:"options,omitempty"`
}

// StateOptions carries per-record write behavior understood by the
// sidecar. Zero value means "sidecar defaults".
type StateOptions struct {
	Consistency string `json:"consistency,omitempty"` // "eventual" or "strong"
	Concurrency string `json:"concurrency,omitempty"` // "first-write" or "last-write"
}

// BindingMessage is the payload for an output binding invocation. Name
// selects the URL path segment and is never serialized into the body.
type BindingMessage struct {
	Name      string            `json:"-"`
	Operation string            `json:"operation,omitempty"`
	Data      json.RawMessage   `json:"data,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// CallSettings holds per-call overrides resolved just before a request
// is built. Fields left zero fall back to client construction-time
// defaults.
type CallSettings struct {
	// Address overrides the client's default sidecar base address for
	// this call only, e.g. "http://localhost:3501".
	Address string
}

// CallOption mutates CallSettings for a single operation.
type CallOption func(*CallSettings)

// WithAddress overrides the sidecar base address for one call.
func WithAddress(addr string) CallOption {
	return func(cs *CallSettings) { cs.Address = addr }
}
