// Copyright (c) 2026, Verdant Labs.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package defaults

import "time"

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading the full request,
	// including multipart bodies.
	ServerReadTimeout = 30 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 60 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// Identification pipeline defaults.
const (
	// ResultCacheTTL is how long an identification result stays servable
	// from the cache.
	ResultCacheTTL = time.Hour

	// ResultCacheSweepInterval is how often expired cache entries are reaped.
	ResultCacheSweepInterval = 5 * time.Minute

	// RateWindow is the admission window length per caller address.
	RateWindow = time.Minute

	// RateWindowLimit is the number of requests allowed per window.
	RateWindowLimit = 10

	// RateWindowSweepInterval is how often stale rate windows are reaped.
	RateWindowSweepInterval = 10 * time.Minute
)

// Upstream (identification provider) client defaults.
const (
	// UpstreamTimeout bounds a single provider call, including body read.
	UpstreamTimeout = 30 * time.Second

	// UpstreamRetryAttempts is the total number of attempts for transient
	// provider failures. Permanent failures are never retried.
	UpstreamRetryAttempts = 3

	// UpstreamRetryBackoff is the base delay between retry attempts,
	// doubled on each subsequent attempt.
	UpstreamRetryBackoff = 500 * time.Millisecond
)

// Request limits.
const (
	// MaxImages is the maximum number of image parts per request.
	MaxImages = 5

	// MaxUploadBytes bounds the multipart form memory / total upload size.
	MaxUploadBytes = 50 << 20 // 50 MiB
)
