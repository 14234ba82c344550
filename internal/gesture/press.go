package gesture

import (
	"context"
	"time"
)

// Reason explains how a press ended.
type Reason string

const (
	ReasonRecognized  Reason = "recognized"
	ReasonReleased    Reason = "released"
	ReasonMoved       Reason = "moved"
	ReasonInterrupted Reason = "interrupted"
	ReasonCancelled   Reason = "cancelled"
)

// Outcome is the single result of a press.
type Outcome struct {
	Recognized bool
	Reason     Reason
	At         Point
	Held       time.Duration
}

// Press is a handle on one press session.
type Press struct {
	id        uint64
	origin    Point
	startedAt time.Time
	timer     Timer
	done      chan Outcome
}

// Origin returns where the press started.
func (p *Press) Origin() Point { return p.origin }

// Done yields the outcome once the press ends.
func (p *Press) Done() <-chan Outcome { return p.done }

// Wait blocks until the press ends or ctx is done.
func (p *Press) Wait(ctx context.Context) (Outcome, error) {
	select {
	case o := <-p.done:
		return o, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func (p *Press) finish(o Outcome) {
	select {
	case p.done <- o:
	default:
	}
}
