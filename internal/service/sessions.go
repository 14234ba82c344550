package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-soundmap/internal/markers"
)

// Sessions tracks the map session of every connected browser and feeds
// them the shared record list.
type Sessions struct {
	cfg    SessionConfig
	sync   *MarkerSync
	submit *Submitter
	log    zerolog.Logger
	newID  func() string

	mu   sync.RWMutex
	byID map[string]*Session
}

// NewSessions creates an empty session registry.
func NewSessions(cfg SessionConfig, ms *MarkerSync, submit *Submitter, log zerolog.Logger) *Sessions {
	return &Sessions{
		cfg:    cfg,
		sync:   ms,
		submit: submit,
		log:    log,
		newID:  uuid.NewString,
		byID:   make(map[string]*Session),
	}
}

// Config returns the starting state of new sessions.
func (m *Sessions) Config() SessionConfig { return m.cfg }

// Sync returns the shared loader.
func (m *Sessions) Sync() *MarkerSync { return m.sync }

// Submitter returns the shared submission pipeline.
func (m *Sessions) Submitter() *Submitter { return m.submit }

// Create starts a session seeded with the latest records, or the cache
// when nothing was loaded yet.
func (m *Sessions) Create(ctx context.Context) *Session {
	return m.create(ctx, m.newID())
}

func (m *Sessions) create(ctx context.Context, id string) *Session {
	s := newSession(id, m.cfg, m.submit, m.log)
	s.share = m.share

	recs, ok := m.sync.Latest()
	if !ok {
		recs, ok = m.sync.Cached(ctx)
	}
	if ok {
		s.Render(recs)
	}

	m.mu.Lock()
	if existing, ok := m.byID[id]; ok {
		m.mu.Unlock()
		existing.Touch()
		return existing
	}
	m.byID[id] = s
	m.mu.Unlock()
	m.log.Debug().Str("session", id).Int("markers", s.Store().Len()).Msg("session created")
	return s
}

// Get returns a session by ID.
func (m *Sessions) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.byID[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSession, id)
	}
	s.Touch()
	return s, nil
}

// Ensure returns the session with id, creating it if the server no longer
// knows it. An empty id always creates a new session.
func (m *Sessions) Ensure(ctx context.Context, id string) *Session {
	if id != "" {
		if s, err := m.Get(id); err == nil {
			return s
		}
		return m.create(ctx, id)
	}
	return m.Create(ctx)
}

// Remove forgets a session and cancels its press.
func (m *Sessions) Remove(id string) {
	m.mu.Lock()
	s, ok := m.byID[id]
	delete(m.byID, id)
	m.mu.Unlock()
	if ok {
		s.PressCancel()
	}
}

// Len returns the number of sessions.
func (m *Sessions) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

func (m *Sessions) all() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.byID))
	for _, s := range m.byID {
		out = append(out, s)
	}
	return out
}

// Render replaces the pins of every session with recs.
func (m *Sessions) Render(recs []markers.Record) {
	for _, s := range m.all() {
		s.Render(recs)
	}
}

// Broadcast adds one pin to every session and to the seed list.
func (m *Sessions) Broadcast(rec markers.Record) {
	m.share("", rec)
}

func (m *Sessions) share(origin string, rec markers.Record) {
	m.sync.Append(rec)
	for _, s := range m.all() {
		if s.ID != origin {
			s.AddPin(rec)
		}
	}
}

// Notify shows msg in every session.
func (m *Sessions) Notify(msg string) {
	for _, s := range m.all() {
		s.Notify(msg)
	}
}

// Load runs a cache-first load into every session. When nothing could be
// loaded the sessions are told so and the map stays usable.
func (m *Sessions) Load(ctx context.Context) (LoadResult, error) {
	res, err := m.sync.Load(ctx, m.Render)
	if err != nil {
		m.Notify(LoadFailedNotice)
	}
	return res, err
}

// Prune removes sessions idle for longer than maxIdle that have no open
// event stream. It returns the number removed.
func (m *Sessions) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	n := 0
	for _, s := range m.all() {
		if s.Bus().Subscribers() == 0 && s.LastSeen().Before(cutoff) {
			m.Remove(s.ID)
			n++
		}
	}
	if n > 0 {
		m.log.Debug().Int("removed", n).Msg("pruned idle sessions")
	}
	return n
}

// PruneLoop prunes every interval until ctx is done.
func (m *Sessions) PruneLoop(ctx context.Context, interval, maxIdle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Prune(maxIdle)
		}
	}
}
