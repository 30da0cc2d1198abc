// Package ports defines the outbound contracts of the sidekick library:
// the Sidecar operation surface, the record types that cross it, and the
// single normalized Status error that every failure path converges to.
//
// Adapters (the HTTP client, the in-memory sidecar) implement these
// interfaces; consumers depend on this package only.
package ports
