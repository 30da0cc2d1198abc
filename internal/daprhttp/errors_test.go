package daprhttp

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runmesh/sidekick/internal/ports"
)

func responseWithBody(status int, body string) *http.Response {
	return &http.Response{
		StatusCode:    status,
		ContentLength: int64(len(body)),
		Body:          io.NopCloser(strings.NewReader(body)),
	}
}

func TestInterpretError_EnvelopePassesThrough(t *testing.T) {
	resp := responseWithBody(500, `{"errorCode":"ERR_STATE_STORE_NOT_FOUND","message":"state store orders is not configured"}`)

	st := interpretError(resp)

	assert.Equal(t, ports.KindSidecarError, st.Kind)
	assert.Equal(t, 500, st.StatusCode)
	assert.Equal(t, "ERR_STATE_STORE_NOT_FOUND", st.ErrorCode)
	assert.Equal(t, "state store orders is not configured", st.Message)
	assert.Nil(t, st.Cause)
}

func TestInterpretError_404Defaults(t *testing.T) {
	st := interpretError(responseWithBody(404, ""))

	assert.Equal(t, 404, st.StatusCode)
	assert.Equal(t, ports.CodeDoesNotExist, st.ErrorCode)
	assert.Equal(t, "requested resource is not configured", st.Message)
}

func TestInterpretError_404SidecarFieldsWin(t *testing.T) {
	// The sidecar's own 404 semantics (e.g. actor-state lookups) must
	// never be masked by the generic default.
	st := interpretError(responseWithBody(404, `{"errorCode":"ERR_ACTOR_STATE_GET","message":"actor state key missing"}`))

	assert.Equal(t, "ERR_ACTOR_STATE_GET", st.ErrorCode)
	assert.Equal(t, "actor state key missing", st.Message)
}

func TestInterpretError_404PartialEnvelope(t *testing.T) {
	// Only the empty field gets the default.
	st := interpretError(responseWithBody(404, `{"message":"actor reminder not registered"}`))

	assert.Equal(t, ports.CodeDoesNotExist, st.ErrorCode)
	assert.Equal(t, "actor reminder not registered", st.Message)
}

func TestInterpretError_NonJSONBody(t *testing.T) {
	st := interpretError(responseWithBody(502, "<html>bad gateway</html>"))

	// Status stays the actual response status, never forced to 500.
	assert.Equal(t, 502, st.StatusCode)
	assert.Equal(t, ports.CodeUnknown, st.ErrorCode)
	assert.Equal(t, "returned error body is not valid JSON", st.Message)
	require.Error(t, st.Cause)
}

func TestInterpretError_NonJSONBodyOn404WinsOverDefaults(t *testing.T) {
	st := interpretError(responseWithBody(404, "not found"))

	assert.Equal(t, 404, st.StatusCode)
	assert.Equal(t, ports.CodeUnknown, st.ErrorCode)
	assert.Equal(t, "returned error body is not valid JSON", st.Message)
}

func TestInterpretError_EmptyBodyDefaults(t *testing.T) {
	st := interpretError(responseWithBody(500, ""))

	assert.Equal(t, 500, st.StatusCode)
	assert.Equal(t, ports.CodeUnknown, st.ErrorCode)
	assert.Equal(t, "no meaningful error message returned", st.Message)
}

func TestInterpretError_EmptyEnvelopeObjectDefaults(t *testing.T) {
	st := interpretError(responseWithBody(500, `{}`))

	assert.Equal(t, ports.CodeUnknown, st.ErrorCode)
	assert.Equal(t, "no meaningful error message returned", st.Message)
}

func TestInterpretError_ZeroContentLengthSkipsRead(t *testing.T) {
	// Declared zero length means the body is never touched.
	resp := &http.Response{
		StatusCode:    503,
		ContentLength: 0,
		Body:          io.NopCloser(strings.NewReader("should not be read")),
	}

	st := interpretError(resp)

	assert.Equal(t, 503, st.StatusCode)
	assert.Equal(t, ports.CodeUnknown, st.ErrorCode)
	assert.Equal(t, "no meaningful error message returned", st.Message)
}

func TestInterpretError_UnknownContentLength(t *testing.T) {
	// Chunked responses report -1; the body still gets interpreted.
	resp := &http.Response{
		StatusCode:    500,
		ContentLength: -1,
		Body:          io.NopCloser(strings.NewReader(`{"errorCode":"ERR_PUBSUB_PUBLISH","message":"broker down"}`)),
	}

	st := interpretError(resp)

	assert.Equal(t, "ERR_PUBSUB_PUBLISH", st.ErrorCode)
	assert.Equal(t, "broker down", st.Message)
}
