// Package ratelimit implements per-caller fixed-window admission control.
//
// Admission is keyed by caller address rather than authenticated identity so
// abusive traffic is rejected before a credential's claims are trusted. The
// process-wide token-bucket limiter in pkg/server is a separate, coarser
// protection for local resources.
package ratelimit
