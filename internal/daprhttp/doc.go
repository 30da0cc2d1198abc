// Package daprhttp implements ports.Sidecar over the sidecar's HTTP
// API. Every operation funnels through one call wrapper that normalizes
// transport faults, sidecar error envelopes, and cancellation into the
// ports.Status taxonomy.
package daprhttp
