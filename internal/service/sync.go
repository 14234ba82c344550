package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/joeblew999/plat-soundmap/internal/markers"
)

// fetchTimeout bounds one shared fetch.
const fetchTimeout = time.Minute

// Source says where a rendered record list came from.
type Source string

const (
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
)

// LoadResult describes a cache-first load.
type LoadResult struct {
	Source    Source `json:"source"`
	Count     int    `json:"count"`
	FromCache bool   `json:"fromCache"` // the cache was rendered first
	Err       error  `json:"-"`         // network error when the cache covered it
}

// MarkerSync loads records cache-first: the cached list renders before the
// network answers, and a successful fetch overwrites the cache and renders
// again. Concurrent refreshes share one fetch.
type MarkerSync struct {
	fetcher Fetcher
	cache   CacheSlot
	log     zerolog.Logger
	group   singleflight.Group

	mu     sync.RWMutex
	latest []markers.Record
	loaded bool
}

// NewMarkerSync creates a loader. cache may be nil.
func NewMarkerSync(fetcher Fetcher, cache CacheSlot, log zerolog.Logger) *MarkerSync {
	return &MarkerSync{fetcher: fetcher, cache: cache, log: log}
}

// Latest returns the last list rendered by Load or Refresh.
func (m *MarkerSync) Latest() ([]markers.Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]markers.Record(nil), m.latest...), m.loaded
}

func (m *MarkerSync) remember(recs []markers.Record) {
	m.mu.Lock()
	m.latest = recs
	m.loaded = true
	m.mu.Unlock()
}

// Append adds a saved record to the latest list so new sessions see it
// before the next fetch. The cache is left to the next refresh.
func (m *MarkerSync) Append(rec markers.Record) {
	m.mu.Lock()
	m.latest = append(m.latest, rec)
	m.loaded = true
	m.mu.Unlock()
}

// Cached reads the cache slot. A corrupt slot counts as empty.
func (m *MarkerSync) Cached(ctx context.Context) ([]markers.Record, bool) {
	if m.cache == nil {
		return nil, false
	}
	recs, ok, err := m.cache.Load(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("cache unreadable")
		return nil, false
	}
	return recs, ok
}

// Refresh fetches from the network and overwrites the cache.
func (m *MarkerSync) Refresh(ctx context.Context) ([]markers.Record, error) {
	v, err, shared := m.group.Do("fetch", func() (any, error) {
		// The flight outlives any one caller.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		recs, err := m.fetcher.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		if m.cache != nil {
			if err := m.cache.Store(ctx, recs); err != nil {
				m.log.Warn().Err(err).Msg("cache write failed")
			}
		}
		m.remember(recs)
		return recs, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		m.log.Debug().Msg("fetch shared with concurrent caller")
	}
	return v.([]markers.Record), nil
}

// Load renders the cached list, if any, then fetches and renders the fresh
// list. A fetch failure is only an error when there was no cache to show.
func (m *MarkerSync) Load(ctx context.Context, render func([]markers.Record)) (LoadResult, error) {
	var res LoadResult

	if cached, ok := m.Cached(ctx); ok {
		m.log.Debug().Int("count", len(cached)).Msg("loaded from cache")
		m.remember(cached)
		render(cached)
		res = LoadResult{Source: SourceCache, Count: len(cached), FromCache: true}
	}

	fresh, err := m.Refresh(ctx)
	if err != nil {
		if res.FromCache {
			m.log.Warn().Err(err).Msg("fetch failed, keeping cached markers")
			res.Err = err
			return res, nil
		}
		m.log.Error().Err(err).Msg("fetch failed and no cache")
		return res, fmt.Errorf("%w: %w", ErrNoData, err)
	}

	m.log.Info().Int("count", len(fresh)).Msg("fetched markers")
	render(fresh)
	res.Source = SourceNetwork
	res.Count = len(fresh)
	return res, nil
}
