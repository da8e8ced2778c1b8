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

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/verdantlabs/plantgate/pkg/defaults"
	"github.com/verdantlabs/plantgate/pkg/plantnet"
	"github.com/verdantlabs/plantgate/pkg/upload"
)

// entry carries an immutable result and its expiry.
type entry struct {
	result    *plantnet.Result
	expiresAt time.Time
}

// Results is a concurrency-safe TTL cache mapping upload fingerprints to
// identification results. Expired entries are never returned; they are
// evicted lazily on access and by the Run sweep.
type Results struct {
	mu      sync.RWMutex
	entries map[upload.Fingerprint]entry

	ttl time.Duration
	now func() time.Time
}

// New creates a Results cache with the given TTL. A non-positive TTL falls
// back to the default. The now function may be nil.
func New(ttl time.Duration, now func() time.Time) *Results {
	if ttl <= 0 {
		ttl = defaults.ResultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Results{
		entries: make(map[upload.Fingerprint]entry),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns the cached result for fp, or nil if absent or expired.
// An expired entry is evicted on the spot.
func (c *Results) Get(fp upload.Fingerprint) *plantnet.Result {
	c.mu.RLock()
	e, ok := c.entries[fp]
	c.mu.RUnlock()

	if !ok {
		return nil
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have refreshed it.
		if cur, ok := c.entries[fp]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.entries, fp)
		}
		c.mu.Unlock()
		return nil
	}
	return e.result
}

// Put stores result under fp for the configured TTL.
func (c *Results) Put(fp upload.Fingerprint, result *plantnet.Result) {
	c.mu.Lock()
	c.entries[fp] = entry{
		result:    result,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Sweep evicts all expired entries and reports how many were removed.
func (c *Results) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for fp, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, fp)
			removed++
		}
	}
	return removed
}

// Run sweeps expired entries on the given interval until ctx is cancelled.
func (c *Results) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaults.ResultCacheSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// Len reports the number of entries, including not-yet-swept expired ones.
func (c *Results) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
