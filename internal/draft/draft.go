// Package draft holds the single in-progress pin of a map session: the
// location chosen by a long press, the temporary pin shown there, and the
// slot that receives the finished record.
package draft

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-soundmap/internal/markers"
)

var (
	// ErrNoDraft is returned when completing while no draft is open.
	ErrNoDraft = errors.New("draft: no open draft")
	// ErrNoAudio is returned when a draft is completed without a clip URL.
	ErrNoAudio = errors.New("draft: audio clip required")
)

// Slot receives the completed record of a draft.
type Slot func(ctx context.Context, rec markers.Record) error

// Draft is an open, unsubmitted pin.
type Draft struct {
	ID       string    `json:"id"`
	Position orb.Point `json:"position"`
	OpenedAt time.Time `json:"openedAt"`
}

// Lat returns the draft latitude.
func (d Draft) Lat() float64 { return d.Position.Lat() }

// Lng returns the draft longitude.
func (d Draft) Lng() float64 { return d.Position.Lon() }

// Fields are the values entered in the draft sheet.
type Fields struct {
	Category string `json:"category"`
	Feeling  string `json:"feeling"`
	Comment  string `json:"comment,omitempty"`
	AudioURL string `json:"audioUrl"`
}

// Flow allows at most one open draft. Opening a new one replaces the old
// draft and its temporary pin.
type Flow struct {
	mu      sync.Mutex
	current *Draft
	slot    Slot

	newID func() string
	now   func() time.Time
}

// NewFlow returns a flow with no open draft.
func NewFlow() *Flow {
	return &Flow{newID: uuid.NewString, now: time.Now}
}

// Open starts a draft at p. slot receives the record on Complete.
func (f *Flow) Open(p orb.Point, slot Slot) Draft {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = &Draft{ID: f.newID(), Position: p, OpenedAt: f.now()}
	f.slot = slot
	return *f.current
}

// Current returns the open draft, if any.
func (f *Flow) Current() (Draft, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return Draft{}, false
	}
	return *f.current, true
}

// Close discards the open draft and its temporary pin. It reports whether
// a draft was open.
func (f *Flow) Close() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	open := f.current != nil
	f.current, f.slot = nil, nil
	return open
}

// Complete turns the open draft into a record, closes the draft and hands
// the record to the slot given at Open. The draft stays open if fields
// lack an audio URL.
func (f *Flow) Complete(ctx context.Context, fields Fields) (markers.Record, error) {
	f.mu.Lock()
	if f.current == nil {
		f.mu.Unlock()
		return markers.Record{}, ErrNoDraft
	}
	if fields.AudioURL == "" {
		f.mu.Unlock()
		return markers.Record{}, ErrNoAudio
	}
	d, slot := *f.current, f.slot
	f.current, f.slot = nil, nil
	f.mu.Unlock()

	rec := markers.Record{
		Lat:      markers.Coord(d.Lat()),
		Lng:      markers.Coord(d.Lng()),
		Category: fields.Category,
		Feeling:  fields.Feeling,
		Comment:  fields.Comment,
		AudioURL: fields.AudioURL,
	}
	if slot == nil {
		return rec, nil
	}
	return rec, slot(ctx, rec)
}
