// Package metrics exposes Prometheus instrumentation for the client:
// real-time connection lifecycle (dials, reconnects, current status),
// message traffic (received by type, dropped frames, failed sends), and
// the unread gauges maintained by the notify package.
//
// New(reg) registers all collectors on the given registerer so tests can use
// an isolated registry; NewNop() registers on a throwaway one. The daemon
// serves the default registry on /metrics when metrics_addr is configured.
package metrics
