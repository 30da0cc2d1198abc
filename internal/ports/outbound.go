package ports

import (
	"context"
	"encoding/json"
)

// Sidecar is the operation surface of a Dapr-compatible sidecar. The
// HTTP adapter is the production implementation; the in-memory adapter
// backs consumer unit tests.
//
// Error contract (uniform across all operations):
//   - Required empty arguments return a *Status of KindInvalidArgument
//     before any network activity.
//   - A connection-refused transport fault returns KindSidecarNotPresent
//     (status 503, code ERR_SIDECAR_DOES_NOT_EXIST).
//   - Any other transport fault or non-2xx response returns
//     KindSidecarError with status, code, and message normalized per
//     the sidecar's error envelope.
//   - Context cancellation during an outstanding call returns
//     KindCancelled; context.Canceled stays reachable via errors.Is.
//
// A 2xx response is never wrapped in an error, and a non-2xx response
// is never surfaced as success.
type Sidecar interface {
	// SaveState writes records to the named state store. Repeated saves
	// of the same content are idempotent.
	SaveState(ctx context.Context, store string, records []StateRecord, opts ...CallOption) error

	// GetState reads one record. A response without an ETag header
	// yields a record with no version token.
	GetState(ctx context.Context, store, key string, opts ...CallOption) (StateRecord, error)

	// DeleteState removes one record. A non-empty etag is sent as an
	// If-Match precondition.
	DeleteState(ctx context.Context, store, key, etag string, opts ...CallOption) error

	// InvokeMethod calls a method on another sidecar-enabled app. A nil
	// body sends no payload; anything else is JSON-serialized.
	InvokeMethod(ctx context.Context, appID, method, verb string, body any, opts ...CallOption) error

	// InvokeBinding sends a message to the named output binding.
	InvokeBinding(ctx context.Context, msg BindingMessage, opts ...CallOption) error

	// PublishEvent publishes payload to a topic. The raw JSON text is
	// passed through byte-for-byte, never re-encoded.
	PublishEvent(ctx context.Context, pubsub, topic string, payload json.RawMessage, opts ...CallOption) error

	// GetSecret fetches one secret. Metadata entries become
	// metadata.<key>=<value> query parameters.
	GetSecret(ctx context.Context, store, key string, metadata map[string]string, opts ...CallOption) (map[string]string, error)

	// Healthz probes the sidecar's health endpoint.
	Healthz(ctx context.Context, opts ...CallOption) error
}
