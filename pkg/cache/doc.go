// Package cache stores identification results keyed by upload fingerprint
// with time-based expiry, so repeated inputs do not trigger redundant
// provider calls within the TTL horizon.
package cache
