package plantnet

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/plantgate/pkg/errors"
	"github.com/verdantlabs/plantgate/pkg/upload"
)

const resultBody = `{
	"results": [
		{
			"species": {
				"scientificNameWithoutAuthor": "Rosa canina",
				"scientificNameAuthorship": "L.",
				"genus": {"scientificNameWithoutAuthor": "Rosa"},
				"family": {"scientificNameWithoutAuthor": "Rosaceae"},
				"commonNames": ["Dog rose"]
			},
			"score": 0.91
		},
		{
			"species": {
				"scientificNameWithoutAuthor": "Rosa rubiginosa",
				"genus": {"scientificNameWithoutAuthor": "Rosa"},
				"family": {"scientificNameWithoutAuthor": "Rosaceae"}
			},
			"score": 0.05
		}
	],
	"bestMatch": "Rosa canina"
}`

func testSet() *upload.Set {
	return &upload.Set{Files: []upload.File{
		{Name: "a.jpg", ContentType: "image/jpeg", Organ: "leaf", Data: []byte("bytes-a")},
		{Name: "b.png", ContentType: "image/png", Organ: "flower", Data: []byte("bytes-b")},
	}}
}

func TestIdentifySuccess(t *testing.T) {
	var capturedQuery map[string][]string
	var capturedOrgans []string
	var capturedFiles []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedQuery = r.URL.Query()
		require.NoError(t, r.ParseMultipartForm(10<<20))
		capturedOrgans = r.MultipartForm.Value["organs"]
		for _, fh := range r.MultipartForm.File["images"] {
			capturedFiles = append(capturedFiles, fh.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(resultBody))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", WithLanguage("en"))
	result, err := c.Identify(t.Context(), testSet())
	require.NoError(t, err)

	assert.Equal(t, "Rosa canina", result.Species.ScientificNameWithoutAuthor)
	assert.Equal(t, "Rosaceae", result.Species.Family.ScientificNameWithoutAuthor)
	assert.InDelta(t, 0.91, result.Score, 1e-9)
	assert.Len(t, result.Candidates, 2)

	// Provider request shape
	assert.Equal(t, []string{"test-key"}, capturedQuery["api-key"])
	assert.Equal(t, []string{"en"}, capturedQuery["lang"])
	assert.Equal(t, []string{"false"}, capturedQuery["include-related-images"])
	assert.Equal(t, []string{"false"}, capturedQuery["no-reject"])
	assert.Equal(t, []string{"leaf", "flower"}, capturedOrgans)
	assert.Equal(t, []string{"a.jpg", "b.png"}, capturedFiles)
}

func TestIdentifyRetriesTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(resultBody))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", WithRetries(3), WithBackoff(time.Millisecond))
	result, err := c.Identify(t.Context(), testSet())
	require.NoError(t, err)
	assert.Equal(t, "Rosa canina", result.Species.ScientificNameWithoutAuthor)
	assert.EqualValues(t, 3, calls.Load())
}

func TestIdentifyTransientExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", WithRetries(2), WithBackoff(time.Millisecond))
	_, err := c.Identify(t.Context(), testSet())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUpstreamTransient, errors.CodeOf(err))
	assert.EqualValues(t, 2, calls.Load())
}

func TestIdentifyPermanentNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Unknown organ: stem"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", WithRetries(3), WithBackoff(time.Millisecond))
	_, err := c.Identify(t.Context(), testSet())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUpstreamPermanent, errors.CodeOf(err))
	assert.EqualValues(t, 1, calls.Load(), "permanent failures must not be retried")
}

func TestIdentifyRateLimitedIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", WithRetries(1))
	_, err := c.Identify(t.Context(), testSet())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUpstreamTransient, errors.CodeOf(err))
}

func TestIdentifyMalformedResponse(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"results": [`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", WithRetries(3), WithBackoff(time.Millisecond))
	_, err := c.Identify(t.Context(), testSet())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUpstreamMalformed, errors.CodeOf(err))
	assert.EqualValues(t, 1, calls.Load(), "malformed responses must not be retried")
}

func TestIdentifyEmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	_, err := c.Identify(t.Context(), testSet())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUpstreamPermanent, errors.CodeOf(err))
}

func TestIdentifyTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(resultBody))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", WithTimeout(10*time.Millisecond), WithRetries(1))
	_, err := c.Identify(t.Context(), testSet())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUpstreamTransient, errors.CodeOf(err))
}

func TestIdentifyNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(srv.URL, "test-key", WithRetries(1))
	_, err := c.Identify(t.Context(), testSet())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUpstreamTransient, errors.CodeOf(err))
}
