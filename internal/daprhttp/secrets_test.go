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

func TestGetSecret_ParsesDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1.0/secrets/vault1/apikey", r.URL.Path)
		_, _ = w.Write([]byte(`{"apikey":"xyz"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	secret, err := c.GetSecret(context.Background(), "vault1", "apikey", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"apikey": "xyz"}, secret)
}

func TestGetSecret_MetadataQueryString(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"k":"v"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.GetSecret(context.Background(), "vault1", "apikey", map[string]string{
		"version_id": "3",
	})
	require.NoError(t, err)
	assert.Equal(t, "metadata.version_id=3", gotQuery)
}

func TestGetSecret_InvalidJSONDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.GetSecret(context.Background(), "vault1", "apikey", nil)
	require.Error(t, err)

	st, ok := ports.AsStatus(err)
	require.True(t, ok)
	assert.Equal(t, ports.KindSidecarError, st.Kind)
	assert.Equal(t, http.StatusOK, st.StatusCode)
	assert.Equal(t, ports.CodeUnknown, st.ErrorCode)
	assert.Equal(t, "returned secret payload is not valid JSON", st.Message)
	require.Error(t, st.Cause)
}

func TestGetSecret_404FromStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errorCode":"ERR_SECRET_GET","message":"secret apikey not found in vault1"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.GetSecret(context.Background(), "vault1", "apikey", nil)
	require.Error(t, err)

	st, ok := ports.AsStatus(err)
	require.True(t, ok)
	assert.Equal(t, "ERR_SECRET_GET", st.ErrorCode)
	assert.Equal(t, "secret apikey not found in vault1", st.Message)
}
