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

package plantnet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/verdantlabs/plantgate/pkg/defaults"
	"github.com/verdantlabs/plantgate/pkg/errors"
	"github.com/verdantlabs/plantgate/pkg/upload"
)

const (
	// imagesField is the provider's multipart field for image files.
	imagesField = "images"
	// organsField is the provider's repeated form field for organ tags.
	organsField = "organs"
)

// Client calls the external identification provider.
type Client struct {
	endpoint string
	apiKey   string
	lang     string

	httpClient *http.Client
	retries    int
	backoff    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each provider call, including body read.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithRetries sets the total attempt count for transient failures.
func WithRetries(attempts int) Option {
	return func(c *Client) {
		if attempts >= 1 {
			c.retries = attempts
		}
	}
}

// WithBackoff sets the base delay between retry attempts.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.backoff = d
		}
	}
}

// WithLanguage selects the language for common names in results.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.lang = lang
		}
	}
}

// New creates a provider client.
func New(endpoint, apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		lang:       "fr",
		httpClient: &http.Client{Timeout: defaults.UpstreamTimeout},
		retries:    defaults.UpstreamRetryAttempts,
		backoff:    defaults.UpstreamRetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Identify submits the upload set to the provider and returns the normalized
// result. Transient failures are retried with doubling backoff up to the
// configured attempt count; permanent and malformed-response failures are
// returned immediately.
func (c *Client) Identify(ctx context.Context, set *upload.Set) (*Result, error) {
	body, contentType, err := encodeForm(set)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to encode provider request", err)
	}

	var lastErr error
	delay := c.backoff
	for attempt := 1; attempt <= c.retries; attempt++ {
		if attempt > 1 {
			slog.Debug("retrying provider call",
				"attempt", attempt,
				"delay", delay.String(),
			)
			select {
			case <-ctx.Done():
				return nil, errors.Wrap(errors.ErrCodeUpstreamTransient,
					"provider call cancelled", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}

		result, err := c.call(ctx, body, contentType)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !errors.Retryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) call(ctx context.Context, body []byte, contentType string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(), bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to build provider request", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network-level failure, DNS error, or timeout
		return nil, errors.Wrap(errors.ErrCodeUpstreamTransient, "provider call failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(resp)
	}

	var pr providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUpstreamMalformed,
			"provider response body is not valid JSON", err)
	}
	if len(pr.Results) == 0 {
		return nil, errors.New(errors.ErrCodeUpstreamPermanent,
			"provider returned no identification results")
	}

	best := pr.Results[0]
	return &Result{
		Species:    best.Species,
		Score:      best.Score,
		Candidates: pr.Results,
	}, nil
}

// requestURL appends the provider query parameters the way the public API
// expects them.
func (c *Client) requestURL() string {
	q := url.Values{}
	q.Set("include-related-images", "false")
	q.Set("no-reject", "false")
	q.Set("lang", c.lang)
	q.Set("api-key", c.apiKey)
	return c.endpoint + "?" + q.Encode()
}

// classifyStatus maps a non-2xx provider status to the error taxonomy.
// 5xx and 429 are transient; other 4xx are permanent.
func classifyStatus(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	ctx := map[string]any{
		"status": resp.StatusCode,
		"body":   string(detail),
	}

	code := errors.ErrCodeUpstreamPermanent
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		code = errors.ErrCodeUpstreamTransient
	}
	return errors.NewWithContext(code,
		fmt.Sprintf("provider returned status %d", resp.StatusCode), ctx)
}

// encodeForm serializes the upload set into the provider's multipart shape:
// one "images" part per file and one repeated "organs" field per organ tag,
// in matching order.
func encodeForm(set *upload.Set) ([]byte, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, f := range set.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, imagesField, f.Name))
		h.Set("Content-Type", f.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	for _, organ := range set.Organs() {
		if err := w.WriteField(organsField, organ); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
