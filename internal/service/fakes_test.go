package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-soundmap/internal/gesture"
	"github.com/joeblew999/plat-soundmap/internal/markers"
	"github.com/joeblew999/plat-soundmap/internal/surface"
)

var errOffline = errors.New("offline")

type fakeFetcher struct {
	mu    sync.Mutex
	recs  []markers.Record
	err   error
	calls int
	gate  chan struct{} // when set, Fetch waits for it
}

func (f *fakeFetcher) Fetch(ctx context.Context) ([]markers.Record, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.recs, f.err
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memSlot struct {
	recs   []markers.Record
	ok     bool
	err    error
	writes int
}

func (m *memSlot) Load(context.Context) ([]markers.Record, bool, error) {
	return m.recs, m.ok, m.err
}

func (m *memSlot) Store(_ context.Context, recs []markers.Record) error {
	m.recs, m.ok = recs, true
	m.writes++
	return nil
}

type fakeSheet struct {
	mu       sync.Mutex
	appended []markers.Record
	err      error
}

func (s *fakeSheet) Append(_ context.Context, rec markers.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.appended = append(s.appended, rec)
	return nil
}

type fakeMedia struct {
	url  string
	err  error
	got  string
	name string
}

func (m *fakeMedia) Upload(_ context.Context, filename string, clip io.Reader) (string, error) {
	data, _ := io.ReadAll(clip)
	m.got, m.name = string(data), filename
	return m.url, m.err
}

// stepClock never fires on its own; fire runs every scheduled callback.
type stepClock struct {
	mu  sync.Mutex
	fns []func()
}

type nopTimer struct{}

func (nopTimer) Stop() bool { return true }

func (c *stepClock) Now() time.Time { return time.Time{} }

func (c *stepClock) AfterFunc(_ time.Duration, f func()) gesture.Timer {
	c.mu.Lock()
	c.fns = append(c.fns, f)
	c.mu.Unlock()
	return nopTimer{}
}

func (c *stepClock) fire() {
	c.mu.Lock()
	fns := c.fns
	c.fns = nil
	c.mu.Unlock()
	for _, f := range fns {
		f()
	}
}

var zagreb = orb.Point{15.981, 45.815}

func testView() surface.Viewport {
	return surface.Viewport{Center: zagreb, Zoom: 13, Width: 800, Height: 600}
}

type fixture struct {
	fetcher *fakeFetcher
	cache   *memSlot
	sheet   *fakeSheet
	media   *fakeMedia
	clock   *stepClock
	sync    *MarkerSync
	sess    *Sessions
}

func newFixture() *fixture {
	f := &fixture{
		fetcher: &fakeFetcher{},
		cache:   &memSlot{},
		sheet:   &fakeSheet{},
		media:   &fakeMedia{url: "https://media/rec.mp3"},
		clock:   &stepClock{},
	}
	log := zerolog.Nop()
	f.sync = NewMarkerSync(f.fetcher, f.cache, log)
	f.sess = NewSessions(SessionConfig{View: testView(), Clock: f.clock},
		f.sync, NewSubmitter(f.sheet, f.media, log), log)
	return f
}

func rec(category, feeling string) markers.Record {
	return markers.Record{
		Lat:      markers.Coord(zagreb.Lat()),
		Lng:      markers.Coord(zagreb.Lon()),
		Category: category,
		Feeling:  feeling,
		AudioURL: "https://media/a.mp3",
	}
}

// drain returns the kinds published so far.
func drain(ch chan Event) []EventKind {
	var kinds []EventKind
	for {
		select {
		case e := <-ch:
			kinds = append(kinds, e.Kind)
		default:
			return kinds
		}
	}
}
