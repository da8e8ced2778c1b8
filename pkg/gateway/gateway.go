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

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/verdantlabs/plantgate/pkg/auth"
	"github.com/verdantlabs/plantgate/pkg/cache"
	"github.com/verdantlabs/plantgate/pkg/errors"
	"github.com/verdantlabs/plantgate/pkg/plantnet"
	"github.com/verdantlabs/plantgate/pkg/ratelimit"
	"github.com/verdantlabs/plantgate/pkg/serializer"
	"github.com/verdantlabs/plantgate/pkg/server"
	"github.com/verdantlabs/plantgate/pkg/upload"
)

// Identifier is the upstream call the pipeline depends on.
type Identifier interface {
	Identify(ctx context.Context, set *upload.Set) (*plantnet.Result, error)
}

// Pipeline composes the identification request stages: credential
// verification, per-caller admission, input validation, cache lookup,
// single-flight upstream invocation, and cache population. Each stage's
// failure short-circuits the rest.
type Pipeline struct {
	verifier  *auth.Verifier
	limiter   *ratelimit.Limiter
	validator *upload.Validator
	results   *cache.Results
	upstream  Identifier

	// group collapses concurrent misses for the same fingerprint into one
	// upstream call. The key is released on success and failure alike.
	group singleflight.Group

	now func() time.Time
}

// New assembles a Pipeline from its stages. The now function may be nil.
func New(verifier *auth.Verifier, limiter *ratelimit.Limiter, validator *upload.Validator,
	results *cache.Results, upstream Identifier, now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		verifier:  verifier,
		limiter:   limiter,
		validator: validator,
		results:   results,
		upstream:  upstream,
		now:       now,
	}
}

// HandleIdentify serves POST /api/identify.
func (p *Pipeline) HandleIdentify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := p.now()
	outcome, cacheHit := "success", false
	defer func() {
		p.observe(r.Context(), outcome, cacheHit, p.now().Sub(start))
	}()

	result, hit, err := p.run(r, w)
	if err != nil {
		outcome = string(errors.CodeOf(err))
		server.WriteError(w, r, err)
		return
	}
	cacheHit = hit

	serializer.RespondJSON(w, http.StatusOK, result)
}

// run executes the stage chain and returns the result and whether it came
// from cache.
func (p *Pipeline) run(r *http.Request, w http.ResponseWriter) (*plantnet.Result, bool, error) {
	identity, err := p.verifier.VerifyRequest(r)
	if err != nil {
		return nil, false, err
	}

	// Admission is keyed by caller address, not identity: abuse is rejected
	// before the credential's claims carry any weight.
	decision, admitErr := p.limiter.Admit(callerAddr(r), p.now())
	writeRateHeaders(w, decision, p.now())
	if admitErr != nil {
		return nil, false, admitErr
	}

	set, err := p.validator.ParseRequest(r)
	if err != nil {
		return nil, false, err
	}

	fp := set.Fingerprint()
	if cached := p.results.Get(fp); cached != nil {
		slog.Debug("returning cached identification result",
			"fingerprint", fp.String(),
			"subject", identity.Subject,
		)
		return cached, true, nil
	}

	// The upstream call is detached from the request context: a caller
	// disconnect should not waste the in-flight result, cache population
	// is still useful.
	callCtx := context.WithoutCancel(r.Context())
	v, err, shared := p.group.Do(fp.String(), func() (any, error) {
		result, err := p.upstream.Identify(callCtx, set)
		if err != nil {
			return nil, err
		}
		p.results.Put(fp, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}

	slog.Info("plant identification successful",
		"fingerprint", fp.String(),
		"subject", identity.Subject,
		"images", len(set.Files),
		"sharedFlight", shared,
	)
	return v.(*plantnet.Result), false, nil
}

// observe emits the per-request observability event and counters.
func (p *Pipeline) observe(ctx context.Context, outcome string, cacheHit bool, latency time.Duration) {
	identifyRequestsTotal.WithLabelValues(outcome).Inc()
	identifyDuration.WithLabelValues(outcome).Observe(latency.Seconds())
	if outcome == "success" {
		if cacheHit {
			cacheHits.Inc()
		} else {
			cacheMisses.Inc()
		}
	}

	slog.Info("identify request completed",
		"requestID", server.RequestID(ctx),
		"outcome", outcome,
		"cacheHit", cacheHit,
		"latency", latency.String(),
	)
}

// writeRateHeaders surfaces the admission decision to the caller.
func writeRateHeaders(w http.ResponseWriter, d ratelimit.Decision, now time.Time) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))
	if !d.Allowed {
		retryAfter := max(int(d.Reset.Sub(now).Seconds()), 1)
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
	}
}

// callerAddr resolves the caller address used as the admission key. The
// first X-Forwarded-For hop wins when present, otherwise the connection
// peer address without its port.
func callerAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
