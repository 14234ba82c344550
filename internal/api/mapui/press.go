package mapui

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-soundmap/internal/gesture"
	"github.com/joeblew999/plat-soundmap/internal/humastar"
	"github.com/joeblew999/plat-soundmap/internal/service"
	"github.com/joeblew999/plat-soundmap/internal/surface"
)

// Signal names sent by the page script.
const (
	sigX       = "pressx"
	sigY       = "pressy"
	sigTarget  = "presstarget"
	sigEvent   = "surfaceevent"
	sigLat     = "centerlat"
	sigLng     = "centerlng"
	sigZoom    = "zoom"
	sigWidth   = "width"
	sigHeight  = "height"
	sigLocLat  = "loclat"
	sigLocLng  = "loclng"
	sigLocAcc  = "locaccuracy"
	sigCat     = "category"
	sigFeeling = "feeling"
	sigComment = "comment"
	sigAudio   = "audiourl"
)

func point(sig humastar.Signals) gesture.Point {
	return gesture.Point{X: sig.Float(sigX), Y: sig.Float(sigY)}
}

// target defaults to the map surface; the page only names the excluded
// targets.
func target(sig humastar.Signals) gesture.Target {
	if t := sig.String(sigTarget); t != "" {
		return gesture.Target(t)
	}
	return gesture.TargetSurface
}

// viewport reads the container state sent with settle events. ok is false
// when the page sent no size.
func viewport(sig humastar.Signals) (surface.Viewport, bool) {
	if !sig.Has(sigWidth) || !sig.Has(sigHeight) {
		return surface.Viewport{}, false
	}
	v := surface.Viewport{
		Zoom:   sig.Float(sigZoom),
		Width:  sig.Float(sigWidth),
		Height: sig.Float(sigHeight),
	}
	v.Center[0], v.Center[1] = sig.Float(sigLng), sig.Float(sigLat)
	return v, true
}

func (h *Handler) PressStart(ctx context.Context, input *ActionInput) (*huma.StreamResponse, error) {
	return h.action(ctx, input, func(s *service.Session, sig humastar.Signals) error {
		s.PressStart(point(sig), target(sig))
		return nil
	})
}

func (h *Handler) PressMove(ctx context.Context, input *ActionInput) (*huma.StreamResponse, error) {
	return h.action(ctx, input, func(s *service.Session, sig humastar.Signals) error {
		s.PressMove(point(sig))
		return nil
	})
}

func (h *Handler) PressEnd(ctx context.Context, input *ActionInput) (*huma.StreamResponse, error) {
	return h.action(ctx, input, func(s *service.Session, _ humastar.Signals) error {
		s.PressEnd()
		return nil
	})
}

func (h *Handler) PressCancel(ctx context.Context, input *ActionInput) (*huma.StreamResponse, error) {
	return h.action(ctx, input, func(s *service.Session, _ humastar.Signals) error {
		s.PressCancel()
		return nil
	})
}

// Surface forwards a map lifecycle event. Settle events carry the new
// viewport, which replaces the session's.
func (h *Handler) Surface(ctx context.Context, input *ActionInput) (*huma.StreamResponse, error) {
	return h.action(ctx, input, func(s *service.Session, sig humastar.Signals) error {
		kind, ok := surface.ParseEventKind(sig.String(sigEvent))
		if !ok {
			return huma.Error422UnprocessableEntity("unknown surface event " + sig.String(sigEvent))
		}
		if v, ok := viewport(sig); ok && kind.Settles() {
			s.SetView(v)
			return nil
		}
		s.HandleSurface(surface.Event{Kind: kind})
		return nil
	})
}
