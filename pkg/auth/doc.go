// Package auth verifies bearer credentials (HS256 JWTs signed with a shared
// secret) and reconstructs the caller identity per request. Token issuance is
// external to the gateway; the Sign helper exists for the CLI and tests.
package auth
