package inmemory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/runmesh/sidekick/internal/ports"
)

// entry is one stored state record with its current version token.
type entry struct {
	value json.RawMessage
	etag  string
}

// PublishedEvent is one recorded PublishEvent call.
type PublishedEvent struct {
	Pubsub  string
	Topic   string
	Payload json.RawMessage
}

// BindingCall is one recorded InvokeBinding call.
type BindingCall struct {
	Message ports.BindingMessage
}

// MethodCall is one recorded InvokeMethod call.
type MethodCall struct {
	AppID  string
	Method string
	Verb   string
	Body   json.RawMessage
}

// Sidecar is an in-memory ports.Sidecar. The zero value is not usable;
// construct with New.
type Sidecar struct {
	mu       sync.Mutex
	stores   map[string]map[string]entry
	secrets  map[string]map[string]map[string]string
	events   []PublishedEvent
	bindings []BindingCall
	methods  []MethodCall
	healthy  bool
}

// New creates an empty, healthy in-memory sidecar.
func New() *Sidecar {
	return &Sidecar{
		stores:  make(map[string]map[string]entry),
		secrets: make(map[string]map[string]map[string]string),
		healthy: true,
	}
}

// SeedSecret registers a secret document under store/key.
func (s *Sidecar) SeedSecret(store, key string, doc map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.secrets[store] == nil {
		s.secrets[store] = make(map[string]map[string]string)
	}
	s.secrets[store][key] = doc
}

// SetHealthy flips the health probe outcome.
func (s *Sidecar) SetHealthy(healthy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = healthy
}

// Events returns a copy of all recorded publications.
func (s *Sidecar) Events() []PublishedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PublishedEvent, len(s.events))
	copy(out, s.events)
	return out
}

// BindingCalls returns a copy of all recorded binding invocations.
func (s *Sidecar) BindingCalls() []BindingCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]BindingCall, len(s.bindings))
	copy(out, s.bindings)
	return out
}

// MethodCalls returns a copy of all recorded service invocations.
func (s *Sidecar) MethodCalls() []MethodCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MethodCall, len(s.methods))
	copy(out, s.methods)
	return out
}

func (s *Sidecar) SaveState(ctx context.Context, store string, records []ports.StateRecord, _ ...ports.CallOption) error {
	if strings.TrimSpace(store) == "" {
		return ports.InvalidArgument("state store name is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Cancelled(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stores[store] == nil {
		s.stores[store] = make(map[string]entry)
	}
	for _, rec := range records {
		current, exists := s.stores[store][rec.Key]
		if rec.ETag != "" && exists && current.etag != rec.ETag {
			return &ports.Status{
				Kind:       ports.KindSidecarError,
				StatusCode: http.StatusConflict,
				ErrorCode:  "ERR_STATE_SAVE",
				Message:    fmt.Sprintf("etag mismatch for key %s", rec.Key),
			}
		}
		s.stores[store][rec.Key] = entry{
			value: bytes.Clone(rec.Value),
			etag:  uuid.NewString(),
		}
	}
	return nil
}

func (s *Sidecar) GetState(ctx context.Context, store, key string, _ ...ports.CallOption) (ports.StateRecord, error) {
	if strings.TrimSpace(store) == "" {
		return ports.StateRecord{}, ports.InvalidArgument("state store name is required")
	}
	if strings.TrimSpace(key) == "" {
		return ports.StateRecord{}, ports.InvalidArgument("state key is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.StateRecord{}, ports.Cancelled(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The real sidecar returns 200 with an empty body for a missing
	// key in a configured store; mirror that.
	e, ok := s.stores[store][key]
	if !ok {
		return ports.StateRecord{Key: key}, nil
	}
	return ports.StateRecord{Key: key, Value: bytes.Clone(e.value), ETag: e.etag}, nil
}

func (s *Sidecar) DeleteState(ctx context.Context, store, key, etag string, _ ...ports.CallOption) error {
	if strings.TrimSpace(store) == "" {
		return ports.InvalidArgument("state store name is required")
	}
	if strings.TrimSpace(key) == "" {
		return ports.InvalidArgument("state key is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Cancelled(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.stores[store][key]
	if ok && etag != "" && e.etag != etag {
		return &ports.Status{
			Kind:       ports.KindSidecarError,
			StatusCode: http.StatusConflict,
			ErrorCode:  "ERR_STATE_DELETE",
			Message:    fmt.Sprintf("etag mismatch for key %s", key),
		}
	}
	delete(s.stores[store], key)
	return nil
}

func (s *Sidecar) InvokeMethod(ctx context.Context, appID, method, verb string, body any, _ ...ports.CallOption) error {
	if strings.TrimSpace(appID) == "" {
		return ports.InvalidArgument("app id is required")
	}
	if strings.TrimSpace(method) == "" {
		return ports.InvalidArgument("method name is required")
	}
	if strings.TrimSpace(verb) == "" {
		return ports.InvalidArgument("http verb is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Cancelled(err)
	}

	var raw json.RawMessage
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return ports.InvalidArgument(fmt.Sprintf("method body is not serializable: %v", err))
		}
		raw = data
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods = append(s.methods, MethodCall{
		AppID:  appID,
		Method: method,
		Verb:   strings.ToUpper(verb),
		Body:   raw,
	})
	return nil
}

func (s *Sidecar) InvokeBinding(ctx context.Context, msg ports.BindingMessage, _ ...ports.CallOption) error {
	if strings.TrimSpace(msg.Name) == "" {
		return ports.InvalidArgument("binding name is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Cancelled(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings = append(s.bindings, BindingCall{Message: msg})
	return nil
}

func (s *Sidecar) PublishEvent(ctx context.Context, pubsub, topic string, payload json.RawMessage, _ ...ports.CallOption) error {
	if strings.TrimSpace(pubsub) == "" {
		return ports.InvalidArgument("pubsub name is required")
	}
	if strings.TrimSpace(topic) == "" {
		return ports.InvalidArgument("topic name is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Cancelled(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, PublishedEvent{
		Pubsub:  pubsub,
		Topic:   topic,
		Payload: bytes.Clone(payload),
	})
	return nil
}

func (s *Sidecar) GetSecret(ctx context.Context, store, key string, _ map[string]string, _ ...ports.CallOption) (map[string]string, error) {
	if strings.TrimSpace(store) == "" {
		return nil, ports.InvalidArgument("secret store name is required")
	}
	if strings.TrimSpace(key) == "" {
		return nil, ports.InvalidArgument("secret key is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, ports.Cancelled(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.secrets[store][key]
	if !ok {
		return nil, &ports.Status{
			Kind:       ports.KindSidecarError,
			StatusCode: http.StatusNotFound,
			ErrorCode:  ports.CodeDoesNotExist,
			Message:    "requested resource is not configured",
		}
	}
	out := make(map[string]string, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out, nil
}

func (s *Sidecar) Healthz(ctx context.Context, _ ...ports.CallOption) error {
	if err := ctx.Err(); err != nil {
		return ports.Cancelled(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.healthy {
		return &ports.Status{
			Kind:       ports.KindSidecarError,
			StatusCode: http.StatusInternalServerError,
			ErrorCode:  ports.CodeUnknown,
			Message:    "sidecar reports unhealthy",
		}
	}
	return nil
}

// Compile-time check that Sidecar implements the port.
var _ ports.Sidecar = (*Sidecar)(nil)
