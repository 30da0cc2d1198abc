package daprhttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runmesh/sidekick/internal/ports"
)

func TestInvokeMethod_RequestShape(t *testing.T) {
	var (
		gotVerb string
		gotPath string
		gotBody []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVerb = r.Method
		gotPath = r.URL.Path
		gotBody, _ = readAll(r)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	type order struct {
		Qty int `json:"qty"`
	}
	err := c.InvokeMethod(context.Background(), "checkout", "orders/123/cancel", "post", order{Qty: 2})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotVerb)
	// Nested method routes pass through unescaped.
	assert.Equal(t, "/v1.0/invoke/checkout/method/orders/123/cancel", gotPath)
	assert.JSONEq(t, `{"qty":2}`, string(gotBody))
}

func TestInvokeMethod_NilBodySendsNoPayload(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = readAll(r)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	require.NoError(t, c.InvokeMethod(context.Background(), "checkout", "ping", "GET", nil))
	assert.Empty(t, gotBody)
}

func TestInvokeMethod_UnserializableBody(t *testing.T) {
	c := newTestClient(t, "http://localhost:1")

	err := c.InvokeMethod(context.Background(), "checkout", "ping", "POST", func() {})
	assert.True(t, ports.IsInvalidArgument(err))
}

func TestInvokeMethod_SidecarErrorNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"errorCode":"ERR_DIRECT_INVOKE","message":"app checkout is unreachable"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	err := c.InvokeMethod(context.Background(), "checkout", "ping", "GET", nil)
	require.Error(t, err)

	st, ok := ports.AsStatus(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, st.StatusCode)
	assert.Equal(t, "ERR_DIRECT_INVOKE", st.ErrorCode)
	assert.Equal(t, "app checkout is unreachable", st.Message)
}
