package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-soundmap/internal/markers"
)

func TestLoad_CacheThenNetwork(t *testing.T) {
	f := newFixture()
	cached := []markers.Record{rec("Voda", "😊")}
	fresh := []markers.Record{rec("Voda", "😊"), rec("Buka", "😖")}
	f.cache.recs, f.cache.ok = cached, true
	f.fetcher.recs = fresh

	var renders [][]markers.Record
	res, err := f.sync.Load(context.Background(), func(r []markers.Record) { renders = append(renders, r) })
	require.NoError(t, err)
	assert.Equal(t, [][]markers.Record{cached, fresh}, renders)
	assert.Equal(t, SourceNetwork, res.Source)
	assert.True(t, res.FromCache)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, fresh, f.cache.recs, "successful fetch overwrites the cache")

	latest, ok := f.sync.Latest()
	assert.True(t, ok)
	assert.Equal(t, fresh, latest)
}

func TestLoad_FailingFetchKeepsCache(t *testing.T) {
	f := newFixture()
	cached := []markers.Record{rec("Priroda", "😌")}
	f.cache.recs, f.cache.ok = cached, true
	f.fetcher.err = errOffline

	var rendered []markers.Record
	res, err := f.sync.Load(context.Background(), func(r []markers.Record) { rendered = r })
	require.NoError(t, err, "a cache hides the network failure")
	assert.Equal(t, cached, rendered)
	assert.Equal(t, SourceCache, res.Source)
	assert.ErrorIs(t, res.Err, errOffline)
	assert.Equal(t, 0, f.cache.writes)
}

func TestLoad_NoCacheNoNetwork(t *testing.T) {
	f := newFixture()
	f.fetcher.err = errOffline

	called := false
	_, err := f.sync.Load(context.Background(), func([]markers.Record) { called = true })
	assert.ErrorIs(t, err, ErrNoData)
	assert.ErrorIs(t, err, errOffline)
	assert.False(t, called)
}

func TestLoad_CorruptCacheIsIgnored(t *testing.T) {
	f := newFixture()
	f.cache.err = assert.AnError
	f.fetcher.recs = []markers.Record{rec("Ljudi", "😐")}

	var renders int
	res, err := f.sync.Load(context.Background(), func([]markers.Record) { renders++ })
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, 1, renders)
}

func TestRefresh_ConcurrentCallersShareFetch(t *testing.T) {
	f := newFixture()
	f.fetcher.gate = make(chan struct{})
	f.fetcher.recs = []markers.Record{rec("Voda", "😌")}

	var wg sync.WaitGroup
	refresh := func() {
		defer wg.Done()
		recs, err := f.sync.Refresh(context.Background())
		assert.NoError(t, err)
		assert.Len(t, recs, 1)
	}

	wg.Add(1)
	go refresh()
	require.Eventually(t, func() bool { return f.fetcher.Calls() == 1 }, time.Second, time.Millisecond)

	for i := 0; i < 3; i++ {
		wg.Add(1)
		go refresh()
	}
	time.Sleep(50 * time.Millisecond)
	close(f.fetcher.gate)
	wg.Wait()

	assert.Equal(t, 1, f.fetcher.Calls(), "callers joined the in-flight fetch")
	assert.Equal(t, 1, f.cache.writes)
}

func TestRefresh_CancelledCallerDoesNotFailFlight(t *testing.T) {
	f := newFixture()
	f.fetcher.recs = []markers.Record{rec("Voda", "😊")}
	f.fetcher.gate = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.sync.Refresh(ctx)
		done <- err
	}()

	require.Eventually(t, func() bool { return f.fetcher.Calls() == 1 }, time.Second, time.Millisecond)
	cancel()
	close(f.fetcher.gate)

	require.NoError(t, <-done)
	latest, ok := f.sync.Latest()
	assert.True(t, ok)
	assert.Len(t, latest, 1)
	assert.Equal(t, 1, f.cache.writes)
}
