package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestCache(t *testing.T) (*TTLCache[string, int], *time.Time) {
	t.Helper()
	c := New[string, int](time.Minute, time.Hour)
	t.Cleanup(c.Close)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestGetSetExpiry(t *testing.T) {
	c, now := newTestCache(t)

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	*now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.evictExpired()
	assert.Equal(t, 0, c.Len())
}

func TestGetOrLoad(t *testing.T) {
	c, _ := newTestCache(t)

	calls := 0
	load := func() (int, error) {
		calls++
		return 42, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad("k", load)
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	c, _ := newTestCache(t)

	boom := errors.New("boom")
	_, err := c.GetOrLoad("k", func() (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestDeleteFuncAndClear(t *testing.T) {
	c, _ := newTestCache(t)

	c.Set("zone:1", 1)
	c.Set("zone:2", 2)
	c.Set("tier:1", 3)

	c.DeleteFunc(func(k string) bool { return k[:5] == "zone:" })
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCloseTwice(t *testing.T) {
	c := New[int, int](time.Second, time.Millisecond)
	c.Close()
	c.Close()
}
