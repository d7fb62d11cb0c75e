package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestGetOrComputeMemoizesWithinMaxAge(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	c := New[string, int](WithClock(clock.Now))

	calls := 0
	compute := func() (int, error) {
		calls++
		return calls, nil
	}

	v, err := c.GetOrCompute("a", compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clock.Advance(9 * time.Second)
	v, err = c.GetOrCompute("a", compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, calls)

	clock.Advance(time.Second)
	v, err = c.GetOrCompute("a", compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "entry older than the max age is recomputed")
}

func TestGetOrComputeDoesNotCacheErrors(t *testing.T) {
	c := New[string, string]()
	boom := errors.New("boom")

	_, err := c.GetOrCompute("k", func() (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := c.GetOrCompute("k", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestNonPositiveMaxAgeNeverExpires(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := New[int, string](WithMaxAge(0), WithClock(clock.Now))

	c.Set(1, "one")
	clock.Advance(24 * time.Hour)

	v, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "one", v)
}

func TestPruneAndClear(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := New[string, int](WithMaxAge(time.Second), WithClock(clock.Now))

	c.Set("old", 1)
	clock.Advance(2 * time.Second)
	c.Set("new", 2)

	assert.Equal(t, 1, c.Prune())
	assert.Equal(t, 1, c.Len())

	c.Delete("new")
	assert.Equal(t, 0, c.Len())

	c.Set("x", 3)
	c.Clear()
	_, ok := c.Get("x")
	assert.False(t, ok)
}

func TestConcurrentComputeIsSafe(t *testing.T) {
	c := New[string, int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrCompute("same", func() (int, error) { return 42, nil })
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	wg.Wait()

	v, ok := c.Get("same")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}
