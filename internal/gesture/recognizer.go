// Package gesture recognizes a deliberate long press on the map surface and
// turns it into a single place-pin intent, while staying out of the way of
// the map's own pan and zoom gestures.
//
// The recognizer is a two-state machine:
//
//	Idle --start--> Pressing
//	Pressing --release | excess move | interrupt | cancel | timer--> Idle
//
// A start while Pressing is ignored, so at most one press and one timer
// exist at any time.
package gesture

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultHold is how long a press must be held to place a pin.
	DefaultHold = 800 * time.Millisecond
	// DefaultTolerance is the displacement in pixels that aborts a press.
	DefaultTolerance = 15.0
	// HapticPulse is the vibration length on a recognized press.
	HapticPulse = 50 * time.Millisecond
)

// State is the recognizer state.
type State int

const (
	Idle State = iota
	Pressing
)

func (s State) String() string {
	if s == Pressing {
		return "pressing"
	}
	return "idle"
}

// Point is a position in container pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Target classifies what the pointer went down on.
type Target string

const (
	TargetSurface Target = "surface"
	TargetControl Target = "control"
	TargetPopup   Target = "popup"
	TargetMarker  Target = "marker"
)

// Excluded reports whether a press on t belongs to another interaction and
// must never start a session.
func (t Target) Excluded() bool {
	switch t {
	case TargetControl, TargetPopup, TargetMarker:
		return true
	}
	return false
}

// Config holds the recognizer thresholds.
type Config struct {
	Hold      time.Duration
	Tolerance float64
}

// DefaultConfig returns the standard 800 ms / 15 px thresholds.
func DefaultConfig() Config {
	return Config{Hold: DefaultHold, Tolerance: DefaultTolerance}
}

// Feedback is the visual and haptic side of a press. Calls are made while
// the recognizer holds its lock and must not call back into it.
type Feedback interface {
	ShowIndicator(at Point)
	HideIndicator()
	Vibrate(d time.Duration)
}

// NopFeedback discards all feedback.
type NopFeedback struct{}

func (NopFeedback) ShowIndicator(Point) {}

func (NopFeedback) HideIndicator() {}

func (NopFeedback) Vibrate(time.Duration) {}

// Recognizer turns a stream of press events into PressRecognized intents.
type Recognizer struct {
	mu       sync.Mutex
	cfg      Config
	clock    Clock
	feedback Feedback
	onPress  func(Point)
	log      zerolog.Logger

	state  State
	active *Press
	nextID uint64
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithConfig overrides the thresholds. Zero fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(r *Recognizer) {
		if cfg.Hold > 0 {
			r.cfg.Hold = cfg.Hold
		}
		if cfg.Tolerance > 0 {
			r.cfg.Tolerance = cfg.Tolerance
		}
	}
}

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(r *Recognizer) { r.clock = c }
}

// WithFeedback sets the indicator and haptics sink.
func WithFeedback(f Feedback) Option {
	return func(r *Recognizer) { r.feedback = f }
}

// WithLogger sets the logger used for cancellation traces.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Recognizer) { r.log = l }
}

// New returns an idle recognizer. onPress receives the press origin once
// per recognized press; it runs without the recognizer lock held.
func New(onPress func(Point), opts ...Option) *Recognizer {
	r := &Recognizer{
		cfg:      DefaultConfig(),
		clock:    SystemClock{},
		feedback: NopFeedback{},
		onPress:  onPress,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the active thresholds.
func (r *Recognizer) Config() Config {
	return r.cfg
}

// State returns the current state.
func (r *Recognizer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start begins a press at p. It returns false, and starts nothing, when the
// target is excluded or a press is already active.
func (r *Recognizer) Start(p Point, target Target) (*Press, bool) {
	if target.Excluded() {
		r.log.Debug().Str("target", string(target)).Msg("press ignored on excluded target")
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Pressing {
		r.log.Debug().Msg("press ignored while another is active")
		return nil, false
	}

	r.nextID++
	press := &Press{
		id:        r.nextID,
		origin:    p,
		startedAt: r.clock.Now(),
		done:      make(chan Outcome, 1),
	}
	r.active = press
	r.state = Pressing

	id := press.id
	press.timer = r.clock.AfterFunc(r.cfg.Hold, func() { r.fire(id) })
	r.feedback.ShowIndicator(p)
	return press, true
}

// Move reports the pointer at p. The press is cancelled as soon as the
// displacement from its origin reaches the tolerance.
func (r *Recognizer) Move(p Point) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Pressing {
		return
	}
	if d := r.active.origin.Dist(p); d >= r.cfg.Tolerance {
		r.log.Debug().Float64("distance", d).Msg("press moved beyond tolerance")
		r.cancelLocked(ReasonMoved)
	}
}

// Release ends the press because the pointer went up or left the surface.
func (r *Recognizer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked(ReasonReleased)
}

// Cancel aborts any active press. Calling it while idle does nothing.
func (r *Recognizer) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked(ReasonCancelled)
}

// Interrupt cancels the active press when the surface starts a native
// drag, zoom or move gesture.
func (r *Recognizer) Interrupt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked(ReasonInterrupted)
}

// cancelLocked stops the timer before removing the indicator so a timer
// racing the cancel finds the session gone.
func (r *Recognizer) cancelLocked(reason Reason) {
	if r.state != Pressing {
		return
	}
	press := r.active
	press.timer.Stop()
	r.state = Idle
	r.active = nil
	r.feedback.HideIndicator()
	press.finish(Outcome{Reason: reason, At: press.origin, Held: r.clock.Now().Sub(press.startedAt)})
}

func (r *Recognizer) fire(id uint64) {
	r.mu.Lock()
	if r.state != Pressing || r.active.id != id {
		// cancelled after the timer was already due
		r.mu.Unlock()
		return
	}
	press := r.active
	r.state = Idle
	r.active = nil
	r.feedback.HideIndicator()
	r.feedback.Vibrate(HapticPulse)
	press.finish(Outcome{Recognized: true, Reason: ReasonRecognized, At: press.origin, Held: r.clock.Now().Sub(press.startedAt)})
	r.mu.Unlock()

	r.log.Debug().Float64("x", press.origin.X).Float64("y", press.origin.Y).Msg("press recognized")
	if r.onPress != nil {
		r.onPress(press.origin)
	}
}
