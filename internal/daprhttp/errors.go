package daprhttp

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/runmesh/sidekick/internal/ports"
)

// errorEnvelope is the JSON error body the sidecar reports on non-2xx
// responses. Either field may be absent.
type errorEnvelope struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

// interpretError turns a non-2xx response into a Status.
//
// Rules, in priority order:
//  1. Absent or zero-length body: fields stay empty pending defaults.
//  2. Body present but not valid JSON: ERR_UNKNOWN with the actual
//     response status and the parse fault as cause. This wins over
//     every default, including the 404 special case.
//  3. Body parsed: the sidecar's own errorCode/message are taken as-is.
//  4. Defaults fill only fields the sidecar left empty: 404 gets
//     ERR_DOES_NOT_EXIST / "requested resource is not configured" so
//     sidecar-specific not-found semantics are never masked; every
//     other status gets ERR_UNKNOWN / "no meaningful error message
//     returned".
func interpretError(resp *http.Response) *ports.Status {
	st := &ports.Status{
		Kind:       ports.KindSidecarError,
		StatusCode: resp.StatusCode,
	}

	if resp.ContentLength != 0 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			st.Cause = err
		} else if len(body) > 0 {
			var env errorEnvelope
			if err := json.Unmarshal(body, &env); err != nil {
				st.ErrorCode = ports.CodeUnknown
				st.Message = "returned error body is not valid JSON"
				st.Cause = err
				return st
			}
			st.ErrorCode = env.ErrorCode
			st.Message = env.Message
		}
	}

	if resp.StatusCode == http.StatusNotFound {
		if st.ErrorCode == "" {
			st.ErrorCode = ports.CodeDoesNotExist
		}
		if st.Message == "" {
			st.Message = "requested resource is not configured"
		}
		return st
	}

	if st.ErrorCode == "" {
		st.ErrorCode = ports.CodeUnknown
	}
	if st.Message == "" {
		st.Message = "no meaningful error message returned"
	}
	return st
}
