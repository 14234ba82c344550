package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-soundmap/internal/draft"
	"github.com/joeblew999/plat-soundmap/internal/gesture"
	"github.com/joeblew999/plat-soundmap/internal/markers"
	"github.com/joeblew999/plat-soundmap/internal/mood"
	"github.com/joeblew999/plat-soundmap/internal/stats"
	"github.com/joeblew999/plat-soundmap/internal/surface"
)

// SessionConfig holds the starting state of every new session.
type SessionConfig struct {
	Gesture gesture.Config
	View    surface.Viewport
	Basemap surface.Basemap
	Clock   gesture.Clock // nil selects the system clock
}

// Submission is a draft sheet as posted by the browser.
type Submission struct {
	draft.Fields
	Recording *Clip
}

// Session is the map state of one browser: its pins and layers, the press
// recognizer, the viewport, the open draft and the last statistics.
type Session struct {
	ID        string
	CreatedAt time.Time

	store  *markers.Store
	press  *gesture.Recognizer
	drafts *draft.Flow
	bus    *EventBus
	submit *Submitter
	share  func(origin string, rec markers.Record)
	log    zerolog.Logger

	mu       sync.Mutex
	view     surface.Viewport
	basemap  surface.Basemap
	snapshot stats.Snapshot
	lastSeen time.Time
}

func newSession(id string, cfg SessionConfig, submit *Submitter, log zerolog.Logger) *Session {
	basemap := cfg.Basemap
	if basemap == "" {
		basemap = surface.DefaultBasemap
	}
	now := time.Now()
	s := &Session{
		ID:        id,
		CreatedAt: now,
		store:     markers.NewStore(markers.WithLightTheme(basemap.LightTheme())),
		drafts:    draft.NewFlow(),
		bus:       NewEventBus(),
		submit:    submit,
		log:       log.With().Str("session", id).Logger(),
		view:      cfg.View,
		basemap:   basemap,
		snapshot:  stats.Recompute(nil),
		lastSeen:  now,
	}
	opts := []gesture.Option{
		gesture.WithConfig(cfg.Gesture),
		gesture.WithFeedback(busFeedback{bus: s.bus}),
		gesture.WithLogger(s.log),
	}
	if cfg.Clock != nil {
		opts = append(opts, gesture.WithClock(cfg.Clock))
	}
	s.press = gesture.New(s.onPress, opts...)
	return s
}

// Bus returns the session event bus.
func (s *Session) Bus() *EventBus { return s.bus }

// Store returns the session pins.
func (s *Session) Store() *markers.Store { return s.store }

// Recognizer returns the press recognizer.
func (s *Session) Recognizer() *gesture.Recognizer { return s.press }

// View returns the current viewport.
func (s *Session) View() surface.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Basemap returns the active basemap.
func (s *Session) Basemap() surface.Basemap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.basemap
}

// Stats returns the last computed viewport summary.
func (s *Session) Stats() stats.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Draft returns the open draft, if any.
func (s *Session) Draft() (draft.Draft, bool) { return s.drafts.Current() }

// Touch records browser activity.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LastSeen returns the time of the last browser activity.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) publish(kinds ...EventKind) {
	for _, k := range kinds {
		s.bus.Publish(Event{Kind: k})
	}
}

// Notify shows msg to the user.
func (s *Session) Notify(msg string) {
	s.bus.Publish(Event{Kind: EventNotice, Message: msg})
}

// PressStart begins a long press at p on target.
func (s *Session) PressStart(p gesture.Point, target gesture.Target) bool {
	_, ok := s.press.Start(p, target)
	return ok
}

// PressMove reports pointer movement.
func (s *Session) PressMove(p gesture.Point) { s.press.Move(p) }

// PressEnd reports pointer up or leave.
func (s *Session) PressEnd() { s.press.Release() }

// PressCancel aborts any active press.
func (s *Session) PressCancel() { s.press.Cancel() }

// onPress opens a draft at the geographic position under p.
func (s *Session) onPress(p gesture.Point) {
	s.mu.Lock()
	at := s.view.ScreenToGeo(p.X, p.Y)
	s.mu.Unlock()

	d := s.drafts.Open(at, s.persist)
	s.log.Info().Float64("lat", d.Lat()).Float64("lng", d.Lng()).Msg("draft opened")
	s.publish(EventDraft)
}

// persist is the draft slot: optimistic render, then remote append. A
// stored record is shared with the other sessions.
func (s *Session) persist(ctx context.Context, rec markers.Record) error {
	if err := s.submit.Submit(ctx, rec, s.AddPin); err != nil {
		return err
	}
	if s.share != nil {
		s.share(s.ID, rec)
	}
	return nil
}

// HandleSurface reacts to a map lifecycle event: gesture starts interrupt
// a press, settles recompute the statistics.
func (s *Session) HandleSurface(ev surface.Event) {
	if ev.Kind.InterruptsPress() {
		s.press.Interrupt()
	}
	if ev.Kind.Settles() {
		s.recompute()
		s.publish(EventStats)
	}
}

func (s *Session) recompute() stats.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var visible []markers.Marker
	if s.view.Valid() {
		visible = s.store.Visible(s.view.Bounds(), true)
	}
	s.snapshot = stats.Recompute(visible)
	return s.snapshot
}

// SetView records a settled viewport.
func (s *Session) SetView(v surface.Viewport) {
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
	s.HandleSurface(surface.Event{Kind: surface.MoveEnd})
}

// SetLayerVisible shows or hides the layer of f.
func (s *Session) SetLayerVisible(f mood.Feeling, visible bool) {
	if !s.store.SetLayerVisible(f, visible) {
		return
	}
	s.layerChanged(f, visible)
}

// ToggleLayer flips the layer of f and returns its visibility.
func (s *Session) ToggleLayer(f mood.Feeling) bool {
	if _, ok := mood.ParseFeeling(string(f)); !ok {
		return false
	}
	visible := s.store.ToggleLayer(f)
	s.layerChanged(f, visible)
	return visible
}

func (s *Session) layerChanged(f mood.Feeling, visible bool) {
	kind := surface.LayerRemove
	if visible {
		kind = surface.LayerAdd
	}
	s.publish(EventLayers, EventMarkers)
	s.HandleSurface(surface.Event{Kind: kind, Layer: string(f)})
}

// SetBasemap switches the basemap and restyles every pin for its theme.
func (s *Session) SetBasemap(b surface.Basemap) {
	s.mu.Lock()
	s.basemap = b
	s.mu.Unlock()

	n := s.store.RestyleAll(b.LightTheme())
	s.log.Debug().Str("basemap", string(b)).Int("restyled", n).Msg("basemap switched")
	s.publish(EventBasemap, EventMarkers)
}

// Locate places the user location indicator.
func (s *Session) Locate(at orb.Point, accuracy float64) markers.Marker {
	m := s.store.SetUserLocation(at, accuracy)
	s.publish(EventLocation)
	return m
}

// Render replaces every pin with recs and refreshes the statistics.
func (s *Session) Render(recs []markers.Record) {
	s.store.Replace(recs)
	s.recompute()
	s.publish(EventMarkers, EventStats)
}

// AddPin renders one record and refreshes the statistics.
func (s *Session) AddPin(rec markers.Record) {
	s.store.Add(rec)
	s.recompute()
	s.publish(EventMarkers, EventStats)
}

// CloseDraft discards the open draft and its temporary pin.
func (s *Session) CloseDraft() {
	if s.drafts.Close() {
		s.publish(EventDraft)
	}
}

// Submit completes the open draft. A recording without a URL is uploaded
// first; an upload failure keeps the draft open. The pin is rendered before
// the remote append, so ErrNotPersisted still leaves it on the map.
func (s *Session) Submit(ctx context.Context, sub Submission) error {
	if _, ok := s.drafts.Current(); !ok {
		return draft.ErrNoDraft
	}

	fields := sub.Fields
	if fields.AudioURL == "" && sub.Recording != nil {
		url, err := s.submit.UploadClip(ctx, *sub.Recording)
		if err != nil {
			s.Notify(UploadFailedNotice)
			return err
		}
		fields.AudioURL = url
	}

	_, err := s.drafts.Complete(ctx, fields)
	switch {
	case errors.Is(err, draft.ErrNoAudio), errors.Is(err, draft.ErrNoDraft):
		return err
	case err != nil:
		s.publish(EventDraft)
		s.Notify(SaveFailedNotice)
		return err
	}
	s.publish(EventDraft)
	return nil
}

// busFeedback turns recognizer feedback into session events.
type busFeedback struct {
	bus *EventBus
}

func (f busFeedback) ShowIndicator(at gesture.Point) {
	f.bus.Publish(Event{Kind: EventIndicator, Visible: true, X: at.X, Y: at.Y})
}

func (f busFeedback) HideIndicator() {
	f.bus.Publish(Event{Kind: EventIndicator})
}

func (f busFeedback) Vibrate(time.Duration) {
	f.bus.Publish(Event{Kind: EventVibrate})
}
