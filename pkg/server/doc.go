// Package server provides the HTTP serving shell for the gateway: route
// registration, the standard middleware chain (metrics, request IDs, panic
// recovery, process-wide rate limiting, request logging), health and
// readiness endpoints, Prometheus exposition, and graceful shutdown.
//
// Handlers mounted via WithHandlers own their request semantics; the server
// only supplies the ambient plumbing around them.
package server
