package inmemory

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runmesh/sidekick/internal/ports"
)

func TestSaveGetDelete_RoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()
	payload := json.RawMessage(`{"qty":2}`)

	require.NoError(t, s.SaveState(ctx, "orders", []ports.StateRecord{{Key: "o1", Value: payload}}))

	record, err := s.GetState(ctx, "orders", "o1")
	require.NoError(t, err)
	assert.Equal(t, payload, record.Value)
	assert.NotEmpty(t, record.ETag)

	require.NoError(t, s.DeleteState(ctx, "orders", "o1", record.ETag))

	record, err = s.GetState(ctx, "orders", "o1")
	require.NoError(t, err)
	assert.Nil(t, record.Value)
	assert.Empty(t, record.ETag)
}

func TestSaveState_ETagMismatchConflicts(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SaveState(ctx, "orders", []ports.StateRecord{{Key: "o1", Value: json.RawMessage(`1`)}}))

	err := s.SaveState(ctx, "orders", []ports.StateRecord{{Key: "o1", Value: json.RawMessage(`2`), ETag: "stale"}})
	require.Error(t, err)

	st, ok := ports.AsStatus(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, st.StatusCode)
	assert.Equal(t, "ERR_STATE_SAVE", st.ErrorCode)
}

func TestSaveState_MatchingETagSucceeds(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SaveState(ctx, "orders", []ports.StateRecord{{Key: "o1", Value: json.RawMessage(`1`)}}))
	record, err := s.GetState(ctx, "orders", "o1")
	require.NoError(t, err)

	err = s.SaveState(ctx, "orders", []ports.StateRecord{{Key: "o1", Value: json.RawMessage(`2`), ETag: record.ETag}})
	require.NoError(t, err)

	updated, err := s.GetState(ctx, "orders", "o1")
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`2`), updated.Value)
	assert.NotEqual(t, record.ETag, updated.ETag, "version token must rotate on write")
}

func TestDeleteState_ETagMismatch(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SaveState(ctx, "orders", []ports.StateRecord{{Key: "o1", Value: json.RawMessage(`1`)}}))

	err := s.DeleteState(ctx, "orders", "o1", "stale")
	require.Error(t, err)

	st, ok := ports.AsStatus(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, st.StatusCode)
}

func TestPublishEvent_Recorded(t *testing.T) {
	s := New()
	payload := json.RawMessage(`{"hello":"world"}`)

	require.NoError(t, s.PublishEvent(context.Background(), "pubsub", "orders", payload))

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "pubsub", events[0].Pubsub)
	assert.Equal(t, "orders", events[0].Topic)
	assert.Equal(t, payload, events[0].Payload)
}

func TestInvokeBindingAndMethod_Recorded(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.InvokeBinding(ctx, ports.BindingMessage{Name: "queue", Operation: "create"}))
	require.NoError(t, s.InvokeMethod(ctx, "orders", "cancel", "post", map[string]int{"id": 7}))

	bindings := s.BindingCalls()
	require.Len(t, bindings, 1)
	assert.Equal(t, "queue", bindings[0].Message.Name)

	methods := s.MethodCalls()
	require.Len(t, methods, 1)
	assert.Equal(t, "POST", methods[0].Verb)
	assert.JSONEq(t, `{"id":7}`, string(methods[0].Body))
}

func TestGetSecret_SeededAndMissing(t *testing.T) {
	s := New()
	s.SeedSecret("vault1", "apikey", map[string]string{"apikey": "xyz"})

	doc, err := s.GetSecret(context.Background(), "vault1", "apikey", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"apikey": "xyz"}, doc)

	_, err = s.GetSecret(context.Background(), "vault1", "missing", nil)
	require.Error(t, err)

	st, ok := ports.AsStatus(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, st.StatusCode)
	assert.Equal(t, ports.CodeDoesNotExist, st.ErrorCode)
}

func TestValidation_MatchesHTTPAdapter(t *testing.T) {
	s := New()
	ctx := context.Background()

	assert.True(t, ports.IsInvalidArgument(s.SaveState(ctx, "", nil)))
	_, err := s.GetState(ctx, "orders", "")
	assert.True(t, ports.IsInvalidArgument(err))
	assert.True(t, ports.IsInvalidArgument(s.PublishEvent(ctx, "p", "", nil)))
}

func TestCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, ports.IsCancelled(s.Healthz(ctx)))
	assert.True(t, ports.IsCancelled(s.SaveState(ctx, "orders", nil)))
}

func TestHealthz_Toggle(t *testing.T) {
	s := New()
	require.NoError(t, s.Healthz(context.Background()))

	s.SetHealthy(false)
	assert.Error(t, s.Healthz(context.Background()))
}

func TestConcurrentWrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rec := ports.StateRecord{Key: "shared", Value: json.RawMessage(`0`)}
			_ = s.SaveState(ctx, "orders", []ports.StateRecord{rec})
			_, _ = s.GetState(ctx, "orders", "shared")
		}(i)
	}
	wg.Wait()

	record, err := s.GetState(ctx, "orders", "shared")
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`0`), record.Value)
}
