// Package gateway orchestrates the identification request pipeline:
//
//	verify credential → admit caller → validate upload →
//	cache lookup → (miss) single-flight upstream call → cache store → respond
//
// Each stage returns a structured error on failure, short-circuiting the
// chain; the orchestrator translates it into the client-facing response and
// emits one observability event per completed request.
package gateway
