package engine

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goerrors "github.com/agilira/go-errors"
	"github.com/stretchr/testify/require"

	"github.com/agilira/maplet/storage"
)

func TestGetOrLoadCachesOnMiss(t *testing.T) {
	e, err := OpenEngine(Config{PersistenceMode: storage.ModeMemory})
	require.NoError(t, err)
	defer e.Close()

	var calls int32
	loader := func() ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte("loaded"), nil
	}

	v, err := e.GetOrLoad("k", loader)
	require.NoError(t, err)
	require.Equal(t, "loaded", string(v))

	v2, err := e.GetOrLoad("k", loader)
	require.NoError(t, err)
	require.Equal(t, "loaded", string(v2))
	require.EqualValues(t, 1, atomic.LoadInt32(&calls), "second call should hit cache, not the loader")
}

func TestGetOrLoadDeduplicatesConcurrentMisses(t *testing.T) {
	e, err := OpenEngine(Config{PersistenceMode: storage.ModeMemory})
	require.NoError(t, err)
	defer e.Close()

	var calls int32
	release := make(chan struct{})
	loader := func() ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte("v"), nil
	}

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			v, err := e.GetOrLoad("shared", loader)
			assert := require.New(t)
			assert.NoError(err)
			assert.Equal("v", string(v))
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, atomic.LoadInt32(&calls), "loader must run once across %d concurrent misses", n)
}

func TestGetOrLoadDoesNotCacheLoaderError(t *testing.T) {
	e, err := OpenEngine(Config{PersistenceMode: storage.ModeMemory})
	require.NoError(t, err)
	defer e.Close()

	wantErr := stderrors.New("boom")
	_, err = e.GetOrLoad("k", func() ([]byte, error) { return nil, wantErr })
	require.ErrorIs(t, err, wantErr)

	exists, err := e.Exists("k")
	require.NoError(t, err)
	require.False(t, exists, "a failed load must not be cached")
}

func TestGetOrLoadRecoversLoaderPanic(t *testing.T) {
	e, err := OpenEngine(Config{PersistenceMode: storage.ModeMemory})
	require.NoError(t, err)
	defer e.Close()

	_, err = e.GetOrLoad("k", func() ([]byte, error) { panic("loader exploded") })
	require.Error(t, err)
}

func TestGetOrLoadNilLoader(t *testing.T) {
	e, err := OpenEngine(Config{PersistenceMode: storage.ModeMemory})
	require.NoError(t, err)
	defer e.Close()

	_, err = e.GetOrLoad("k", nil)
	require.True(t, goerrors.HasCode(err, ErrCodeInvalidLoader))
}

func TestGetOrLoadWithContextCancellation(t *testing.T) {
	e, err := OpenEngine(Config{PersistenceMode: storage.ModeMemory})
	require.NoError(t, err)
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.GetOrLoadWithContext(ctx, "k", func(context.Context) ([]byte, error) {
		return []byte("v"), nil
	})
	require.ErrorIs(t, err, context.Canceled)
}
