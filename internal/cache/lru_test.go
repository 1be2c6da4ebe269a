package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_CachesValues(t *testing.T) {
	var loads atomic.Int32
	l, err := NewLoader(4, func(key string) (string, error) {
		loads.Add(1)
		return "v:" + key, nil
	})
	require.NoError(t, err)

	for range 3 {
		v, err := l.Get("a")
		require.NoError(t, err)
		assert.Equal(t, "v:a", v)
	}
	assert.Equal(t, int32(1), loads.Load())
	assert.Equal(t, 1, l.Len())
}

func TestLoader_DoesNotCacheErrors(t *testing.T) {
	var loads atomic.Int32
	l, err := NewLoader(4, func(key string) (int, error) {
		loads.Add(1)
		return 0, errors.New("unknown")
	})
	require.NoError(t, err)

	_, err = l.Get("x")
	assert.Error(t, err)
	_, err = l.Get("x")
	assert.Error(t, err)
	assert.Equal(t, int32(2), loads.Load())
	assert.Zero(t, l.Len())
}

func TestLoader_Evicts(t *testing.T) {
	l, err := NewLoader(2, func(key string) (string, error) { return key, nil })
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c"} {
		_, err := l.Get(k)
		require.NoError(t, err)
	}
	_, ok := l.Peek("a")
	assert.False(t, ok)
	assert.Equal(t, 2, l.Len())
}

func TestLoader_SharesConcurrentLoads(t *testing.T) {
	var loads atomic.Int32
	release := make(chan struct{})
	l, err := NewLoader(4, func(key string) (string, error) {
		loads.Add(1)
		<-release
		return key, nil
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := l.Get("tz")
			assert.NoError(t, err)
			assert.Equal(t, "tz", v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
}

func TestNewLoader_InvalidSize(t *testing.T) {
	_, err := NewLoader(0, func(string) (int, error) { return 0, nil })
	assert.Error(t, err)
}
