// Package markers owns the rendered pins of one map: four mood layers, a
// flat registry for bulk operations, the active theme and the optional user
// location indicator.
package markers

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-soundmap/internal/mood"
)

// Marker is a rendered pin. Only Style changes after creation.
type Marker struct {
	ID           string        `json:"id"`
	Position     orb.Point     `json:"position"`
	Category     mood.Category `json:"category"`
	Feeling      mood.Feeling  `json:"feeling"`
	FeelingText  string        `json:"feelingText"`
	Comment      string        `json:"comment,omitempty"`
	AudioURL     string        `json:"audioUrl"`
	Color        string        `json:"color"`
	Style        Style         `json:"style"`
	UserLocation bool          `json:"userLocation,omitempty"`
	Accuracy     float64       `json:"accuracy,omitempty"`
	AddedAt      time.Time     `json:"addedAt"`
}

// Lat returns the pin latitude.
func (m Marker) Lat() float64 { return m.Position.Lat() }

// Lng returns the pin longitude.
func (m Marker) Lng() float64 { return m.Position.Lon() }

// Record converts the pin back to its wire shape.
func (m Marker) Record() Record {
	return Record{
		Lat:      Coord(m.Position.Lat()),
		Lng:      Coord(m.Position.Lon()),
		Category: string(m.Category),
		Feeling:  m.FeelingText,
		Comment:  m.Comment,
		AudioURL: m.AudioURL,
	}
}

// LayerInfo summarises one mood layer.
type LayerInfo struct {
	Feeling mood.Feeling `json:"feeling"`
	Visible bool         `json:"visible"`
	Count   int          `json:"count"`
}

type layer struct {
	visible bool
	ids     []string
}

// Store is the map state aggregate. All methods are safe for concurrent
// use; returned markers are copies.
type Store struct {
	mu       sync.RWMutex
	layers   map[mood.Feeling]*layer
	registry map[string]*Marker
	order    []string
	light    bool

	newID func() string
	now   func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLightTheme starts the store in the light theme.
func WithLightTheme(light bool) Option {
	return func(s *Store) { s.light = light }
}

// WithIDs replaces the uuid generator.
func WithIDs(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

// WithClock replaces time.Now for AddedAt stamps.
func WithClock(f func() time.Time) Option {
	return func(s *Store) { s.now = f }
}

// NewStore creates the four layers, all visible, in the dark theme.
func NewStore(opts ...Option) *Store {
	s := &Store{
		layers:   make(map[mood.Feeling]*layer, len(mood.Feelings)),
		registry: make(map[string]*Marker),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, f := range mood.Feelings {
		s.layers[f] = &layer{visible: true}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add renders rec as a pin in the layer chosen by its feeling text.
// Unknown categories get the default colour.
func (s *Store) Add(rec Record) Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.addLocked(rec)
}

// Replace clears the store and adds recs in order.
func (s *Store) Replace(recs []Record) []Marker {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()
	out := make([]Marker, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *s.addLocked(rec))
	}
	return out
}

func (s *Store) addLocked(rec Record) *Marker {
	category := mood.Category(rec.Category)
	color := category.Color()
	m := &Marker{
		ID:          s.newID(),
		Position:    orb.Point{float64(rec.Lng), float64(rec.Lat)},
		Category:    category,
		Feeling:     mood.Classify(rec.Feeling),
		FeelingText: rec.Feeling,
		Comment:     rec.Comment,
		AudioURL:    rec.AudioURL,
		Color:       color,
		Style:       StyleFor(color, s.light),
		AddedAt:     s.now(),
	}
	s.registry[m.ID] = m
	s.order = append(s.order, m.ID)
	l := s.layers[m.Feeling]
	l.ids = append(l.ids, m.ID)
	return m
}

// ClearAll empties every layer and removes every pin from the registry.
// The user location indicator is not a pin and survives.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Store) clearLocked() {
	for _, l := range s.layers {
		l.ids = nil
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if m := s.registry[id]; m.UserLocation {
			kept = append(kept, id)
			continue
		}
		delete(s.registry, id)
	}
	s.order = kept
}

// RestyleAll switches the theme and recomputes the style of every pin from
// its stored colour. It returns the number of restyled pins.
func (s *Store) RestyleAll(light bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.light = light
	n := 0
	for _, id := range s.order {
		m := s.registry[id]
		if m.UserLocation {
			continue
		}
		m.Style = StyleFor(m.Color, light)
		n++
	}
	return n
}

// LightTheme reports the active theme.
func (s *Store) LightTheme() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.light
}

// SetLayerVisible shows or hides a layer and reports whether it changed.
func (s *Store) SetLayerVisible(f mood.Feeling, visible bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.layers[f]
	if !ok || l.visible == visible {
		return false
	}
	l.visible = visible
	return true
}

// ToggleLayer flips a layer and returns its new visibility.
func (s *Store) ToggleLayer(f mood.Feeling) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.layers[f]
	if !ok {
		return false
	}
	l.visible = !l.visible
	return l.visible
}

// LayerVisible reports whether the layer of f is shown.
func (s *Store) LayerVisible(f mood.Feeling) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.layers[f]
	return ok && l.visible
}

// Layers returns the four layers in order.
func (s *Store) Layers() []LayerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]LayerInfo, 0, len(mood.Feelings))
	for _, f := range mood.Feelings {
		l := s.layers[f]
		out = append(out, LayerInfo{Feeling: f, Visible: l.visible, Count: len(l.ids)})
	}
	return out
}

// Visible returns the pins inside bounds, walking layers in order and each
// layer in insertion order. With activeOnly, hidden layers are skipped.
func (s *Store) Visible(bounds orb.Bound, activeOnly bool) []Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Marker
	for _, f := range mood.Feelings {
		l := s.layers[f]
		if activeOnly && !l.visible {
			continue
		}
		for _, id := range l.ids {
			m := s.registry[id]
			if bounds.Contains(m.Position) {
				out = append(out, *m)
			}
		}
	}
	return out
}

// Shown returns every pin on a visible layer, regardless of viewport.
func (s *Store) Shown() []Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Marker
	for _, f := range mood.Feelings {
		l := s.layers[f]
		if !l.visible {
			continue
		}
		for _, id := range l.ids {
			out = append(out, *s.registry[id])
		}
	}
	return out
}

// All returns every pin in insertion order, without the location indicator.
func (s *Store) All() []Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Marker, 0, len(s.order))
	for _, id := range s.order {
		if m := s.registry[id]; !m.UserLocation {
			out = append(out, *m)
		}
	}
	return out
}

// Get returns a pin by ID.
func (s *Store) Get(id string) (Marker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.registry[id]
	if !ok {
		return Marker{}, false
	}
	return *m, true
}

// Len returns the number of pins, excluding the location indicator.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, l := range s.layers {
		n += len(l.ids)
	}
	return n
}

// SetUserLocation places the location indicator, replacing any previous
// one. It belongs to no layer and keeps its own style.
func (s *Store) SetUserLocation(p orb.Point, accuracy float64) Marker {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocationLocked()
	m := &Marker{
		ID:           s.newID(),
		Position:     p,
		Color:        locationColor,
		Style:        LocationStyle(),
		UserLocation: true,
		Accuracy:     accuracy,
		AddedAt:      s.now(),
	}
	s.registry[m.ID] = m
	s.order = append(s.order, m.ID)
	return *m
}

// UserLocation returns the location indicator if one is placed.
func (s *Store) UserLocation() (Marker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if m := s.registry[id]; m.UserLocation {
			return *m, true
		}
	}
	return Marker{}, false
}

func (s *Store) removeLocationLocked() {
	kept := s.order[:0]
	for _, id := range s.order {
		if s.registry[id].UserLocation {
			delete(s.registry, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}
