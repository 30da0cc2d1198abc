// Package testhelpers provides test doubles and containerized
// infrastructure for exercising the sidecar client: an HTTP fake of the
// sidecar surface, a daprd container harness, and the lifecycle
// environment integration suites run against.
package testhelpers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/runmesh/sidekick/internal/inmemory"
	"github.com/runmesh/sidekick/internal/ports"
)

// FakeSidecar serves the sidecar's HTTP surface over httptest, backed
// by an in-memory sidecar. Tests drive the real client against it and
// inspect Backend afterwards.
type FakeSidecar struct {
	// Backend holds all state; seed secrets and read recorded events
	// through it.
	Backend *inmemory.Sidecar

	// URL is the base address to hand to a client.
	URL string

	server *httptest.Server
}

// StartFakeSidecar starts a fake sidecar that is shut down with the
// test.
func StartFakeSidecar(t *testing.T) *FakeSidecar {
	t.Helper()

	backend := inmemory.New()
	srv := httptest.NewServer(sidecarRouter(backend))
	t.Cleanup(srv.Close)

	return &FakeSidecar{
		Backend: backend,
		URL:     srv.URL,
		server:  srv,
	}
}

// sidecarRouter wires the /v1.0 surface onto the in-memory backend.
func sidecarRouter(backend *inmemory.Sidecar) http.Handler {
	r := chi.NewRouter()
	r.Route("/v1.0", func(r chi.Router) {
		r.Post("/state/{store}", func(w http.ResponseWriter, req *http.Request) {
			var records []ports.StateRecord
			if err := json.NewDecoder(req.Body).Decode(&records); err != nil {
				writeEnvelope(w, http.StatusBadRequest, "ERR_MALFORMED_REQUEST", "request body is not a state record array")
				return
			}
			if err := backend.SaveState(req.Context(), chi.URLParam(req, "store"), records); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Get("/state/{store}/{key}", func(w http.ResponseWriter, req *http.Request) {
			record, err := backend.GetState(req.Context(), chi.URLParam(req, "store"), chi.URLParam(req, "key"))
			if err != nil {
				writeError(w, err)
				return
			}
			if record.Value == nil {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			w.Header().Set("ETag", record.ETag)
			_, _ = w.Write(record.Value)
		})

		r.Delete("/state/{store}/{key}", func(w http.ResponseWriter, req *http.Request) {
			etag := req.Header.Get("If-Match")
			if err := backend.DeleteState(req.Context(), chi.URLParam(req, "store"), chi.URLParam(req, "key"), etag); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/bindings/{name}", func(w http.ResponseWriter, req *http.Request) {
			var msg ports.BindingMessage
			if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
				writeEnvelope(w, http.StatusBadRequest, "ERR_MALFORMED_REQUEST", "request body is not a binding message")
				return
			}
			msg.Name = chi.URLParam(req, "name")
			if err := backend.InvokeBinding(req.Context(), msg); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusOK)
		})

		r.Post("/publish/{pubsub}/{topic}", func(w http.ResponseWriter, req *http.Request) {
			payload, err := io.ReadAll(req.Body)
			if err != nil {
				writeEnvelope(w, http.StatusBadRequest, "ERR_MALFORMED_REQUEST", "failed to read event payload")
				return
			}
			if err := backend.PublishEvent(req.Context(), chi.URLParam(req, "pubsub"), chi.URLParam(req, "topic"), payload); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Get("/secrets/{store}/{key}", func(w http.ResponseWriter, req *http.Request) {
			doc, err := backend.GetSecret(req.Context(), chi.URLParam(req, "store"), chi.URLParam(req, "key"), nil)
			if err != nil {
				writeError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(doc)
		})

		r.HandleFunc("/invoke/{app}/method/*", func(w http.ResponseWriter, req *http.Request) {
			body, err := io.ReadAll(req.Body)
			if err != nil {
				writeEnvelope(w, http.StatusBadRequest, "ERR_MALFORMED_REQUEST", "failed to read invocation body")
				return
			}
			var payload any
			if len(body) > 0 {
				payload = json.RawMessage(body)
			}
			method := strings.TrimPrefix(req.URL.Path, "/v1.0/invoke/"+chi.URLParam(req, "app")+"/method/")
			if err := backend.InvokeMethod(req.Context(), chi.URLParam(req, "app"), method, req.Method, payload); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusOK)
		})

		r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
			if err := backend.Healthz(req.Context()); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
	return r
}

// writeError renders a backend error as the sidecar's JSON envelope.
func writeError(w http.ResponseWriter, err error) {
	if st, ok := ports.AsStatus(err); ok {
		writeEnvelope(w, st.StatusCode, st.ErrorCode, st.Message)
		return
	}
	writeEnvelope(w, http.StatusInternalServerError, ports.CodeUnknown, err.Error())
}

func writeEnvelope(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"errorCode": code,
		"message":   message,
	})
}
