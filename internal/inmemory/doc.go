// Package inmemory provides a process-local implementation of
// ports.Sidecar for consumer unit tests and local development: state
// lives in maps, secrets are seeded at construction, and published
// events and binding invocations are recorded for inspection.
//
// It honors the same error taxonomy as the HTTP adapter so tests
// exercise realistic failure paths without a running sidecar.
package inmemory
