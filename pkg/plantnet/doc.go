// Package plantnet is the client for the external plant-identification
// provider. It serializes validated upload sets into the provider's multipart
// request shape, classifies provider failures into the gateway error taxonomy
// (transient vs. permanent vs. malformed response), and retries transient
// failures with bounded backoff.
package plantnet
