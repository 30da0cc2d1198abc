package ports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidArgument(t *testing.T) {
	err := InvalidArgument("store name is required")

	assert.Equal(t, KindInvalidArgument, err.Kind)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, CodeInvalidArgument, err.ErrorCode)
	assert.True(t, IsInvalidArgument(err))
	assert.False(t, IsSidecarNotPresent(err))
}

func TestSidecarNotPresent(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:3500: connect: connection refused")
	err := SidecarNotPresent(cause)

	assert.Equal(t, KindSidecarNotPresent, err.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, err.StatusCode)
	assert.Equal(t, CodeSidecarDoesNotExist, err.ErrorCode)
	assert.True(t, IsSidecarNotPresent(err))
	assert.ErrorIs(t, err, cause)
}

func TestRequestFailed(t *testing.T) {
	cause := errors.New("lookup sidecar.invalid: no such host")
	err := RequestFailed(cause)

	assert.Equal(t, KindSidecarError, err.Kind)
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, CodeRequestFailed, err.ErrorCode)
	// Message carries the underlying failure text verbatim.
	assert.Equal(t, cause.Error(), err.Message)
}

func TestCancelled_UnwrapsToContextError(t *testing.T) {
	err := Cancelled(context.Canceled)

	assert.True(t, IsCancelled(err))
	assert.ErrorIs(t, err, context.Canceled)

	err = Cancelled(context.DeadlineExceeded)
	assert.True(t, IsCancelled(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAsStatus_ThroughWrapping(t *testing.T) {
	inner := SidecarNotPresent(errors.New("connection refused"))
	wrapped := fmt.Errorf("saving order state: %w", inner)

	s, ok := AsStatus(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, s)
	assert.True(t, IsSidecarNotPresent(wrapped))
}

func TestAsStatus_PlainError(t *testing.T) {
	_, ok := AsStatus(errors.New("not a status"))
	assert.False(t, ok)
	assert.False(t, IsCancelled(errors.New("nope")))
}

func TestStatusError_Format(t *testing.T) {
	err := &Status{
		Kind:       KindSidecarError,
		StatusCode: 404,
		ErrorCode:  CodeDoesNotExist,
		Message:    "requested resource is not configured",
	}
	assert.Equal(t, "sidecar_error (404 ERR_DOES_NOT_EXIST): requested resource is not configured", err.Error())
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "invalid_argument", KindInvalidArgument.String())
	assert.Equal(t, "sidecar_not_present", KindSidecarNotPresent.String())
	assert.Equal(t, "sidecar_error", KindSidecarError.String())
	assert.Equal(t, "cancelled", KindCancelled.String())
}
