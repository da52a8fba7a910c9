// Package server provides the small HTTP listener that exposes operational endpoints.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first).
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Endpoints
//
// [New] mounts GET /metrics (Prometheus exposition from internal/metrics) and
// GET /healthz. The CLI starts it when --metrics-addr or [metrics] addr is set
// and shuts it down when the command returns.
package server
