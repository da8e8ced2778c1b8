// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Every failure the pipeline can produce is classified by an ErrorCode, which
// drives both the HTTP status surfaced to callers and the retry policy applied
// to upstream provider calls.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeUpstreamTransient,
//	    "provider call failed",
//	    cause,
//	    map[string]interface{}{
//	        "status": resp.StatusCode,
//	        "attempt": attempt,
//	    },
//	)
package errors
