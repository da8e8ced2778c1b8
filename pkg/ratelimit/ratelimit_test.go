package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/plantgate/pkg/errors"
)

func TestAdmitWindowLimit(t *testing.T) {
	l := New(10, time.Minute)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// First 10 requests within the window succeed
	for i := 0; i < 10; i++ {
		d, err := l.Admit("10.0.0.1", start.Add(time.Duration(i)*time.Second))
		require.NoError(t, err, "request %d", i+1)
		assert.True(t, d.Allowed)
		assert.Equal(t, 10-(i+1), d.Remaining)
	}

	// The 11th fails
	d, err := l.Admit("10.0.0.1", start.Add(11*time.Second))
	require.Error(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, errors.ErrCodeRateLimitExceeded, errors.CodeOf(err))
	assert.Equal(t, 0, d.Remaining)

	// After the window elapses a new request succeeds
	d, err = l.Admit("10.0.0.1", start.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 9, d.Remaining)
}

func TestAdmitKeysIndependent(t *testing.T) {
	l := New(1, time.Minute)
	now := time.Now()

	_, err := l.Admit("10.0.0.1", now)
	require.NoError(t, err)
	_, err = l.Admit("10.0.0.1", now)
	require.Error(t, err)

	// A different caller is unaffected
	_, err = l.Admit("10.0.0.2", now)
	require.NoError(t, err)
}

func TestAdmitDecisionReset(t *testing.T) {
	l := New(5, time.Minute)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	d, err := l.Admit("10.0.0.1", start)
	require.NoError(t, err)
	assert.Equal(t, start.Add(time.Minute), d.Reset)
	assert.Equal(t, 5, d.Limit)

	// Reset stays anchored to the window start
	d, err = l.Admit("10.0.0.1", start.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, start.Add(time.Minute), d.Reset)
}

func TestAdmitConcurrent(t *testing.T) {
	const limit = 10
	const callers = 4
	const requestsPerCaller = 50

	l := New(limit, time.Minute)
	now := time.Now()

	var wg sync.WaitGroup
	allowed := make([]int64, callers)
	var mu sync.Mutex

	for c := 0; c < callers; c++ {
		key := fmt.Sprintf("10.0.0.%d", c)
		for i := 0; i < requestsPerCaller; i++ {
			wg.Add(1)
			go func(c int) {
				defer wg.Done()
				if _, err := l.Admit(key, now); err == nil {
					mu.Lock()
					allowed[c]++
					mu.Unlock()
				}
			}(c)
		}
	}
	wg.Wait()

	// The read-count-and-increment must not race: exactly limit requests
	// per caller get through.
	for c := 0; c < callers; c++ {
		assert.EqualValues(t, limit, allowed[c], "caller %d", c)
	}
}

func TestSweep(t *testing.T) {
	l := New(10, time.Minute)
	start := time.Now()

	for i := 0; i < 5; i++ {
		_, err := l.Admit(fmt.Sprintf("10.0.0.%d", i), start)
		require.NoError(t, err)
	}
	require.Equal(t, 5, l.Len())

	// Nothing elapsed yet
	assert.Equal(t, 0, l.Sweep(start.Add(30*time.Second)))
	assert.Equal(t, 5, l.Len())

	// All windows elapsed
	assert.Equal(t, 5, l.Sweep(start.Add(2*time.Minute)))
	assert.Equal(t, 0, l.Len())

	// Admission still works after a sweep
	_, err := l.Admit("10.0.0.0", start.Add(3*time.Minute))
	require.NoError(t, err)
}
