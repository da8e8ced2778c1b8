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

package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/verdantlabs/plantgate/pkg/defaults"
	"github.com/verdantlabs/plantgate/pkg/errors"
)

// window is the per-caller counter state. Mutated only under Limiter.mu.
type window struct {
	start time.Time
	count int
}

// Decision describes the outcome of an admission check, including the
// values surfaced in X-RateLimit-* response headers.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter is a fixed-window per-key admission controller. A new window
// starts on the first request from a key and on the first request after a
// window elapses. Worst-case burst at a window boundary is 2x the limit,
// which is acceptable for abuse prevention.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window

	limit  int
	period time.Duration
}

// New creates a Limiter allowing limit requests per period per key.
func New(limit int, period time.Duration) *Limiter {
	if limit <= 0 {
		limit = defaults.RateWindowLimit
	}
	if period <= 0 {
		period = defaults.RateWindow
	}
	return &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
	}
}

// Admit records a request from key at time now and decides whether it may
// proceed. The count check and increment happen under one lock acquisition
// so concurrent requests from the same key cannot exceed the limit.
func (l *Limiter) Admit(key string, now time.Time) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.period {
		w = &window{start: now, count: 0}
		l.windows[key] = w
	}

	w.count++
	d := Decision{
		Allowed:   w.count <= l.limit,
		Limit:     l.limit,
		Remaining: max(l.limit-w.count, 0),
		Reset:     w.start.Add(l.period),
	}
	if !d.Allowed {
		return d, errors.NewWithContext(errors.ErrCodeRateLimitExceeded,
			"rate limit exceeded", map[string]any{
				"limit":  l.limit,
				"window": l.period.String(),
			})
	}
	return d, nil
}

// Sweep removes windows that elapsed before now. It bounds memory growth
// from one-off callers; correctness does not depend on it because Admit
// resets elapsed windows on access.
func (l *Limiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.period {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Run sweeps stale windows on the given interval until ctx is cancelled.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaults.RateWindowSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Sweep(now)
		}
	}
}

// Len reports the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
