package mapui

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-soundmap/internal/gesture"
	"github.com/joeblew999/plat-soundmap/internal/humastar"
	"github.com/joeblew999/plat-soundmap/internal/service"
)

// Custom DOM events the page script listens for.
const (
	EventPins     = "soundmap:pins"
	EventDraftPin = "soundmap:draft"
	EventLocation = "soundmap:location"
	EventBasemap  = "soundmap:basemap"
	EventVibrate  = "soundmap:vibrate"
)

// Events streams the session state to the page. The full state is sent on
// connect; afterwards each bus event re-sends the part it names.
func (h *Handler) Events(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	s := h.session(ctx, *input)
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			humaCtx.AppendHeader("Set-Cookie", SessionCookie(s.ID).String())
			sse := humastar.NewSSE(humaCtx)
			ch := s.Bus().Subscribe()
			defer s.Bus().Unsubscribe(ch)

			h.sendAll(sse, s)
			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-ch:
					s.Touch()
					h.send(sse, s, ev)
				}
			}
		},
	}, nil
}

func (h *Handler) sendAll(sse humastar.SSE, s *service.Session) {
	for _, kind := range []service.EventKind{
		service.EventBasemap,
		service.EventMarkers,
		service.EventLayers,
		service.EventStats,
		service.EventDraft,
		service.EventLocation,
	} {
		h.send(sse, s, service.Event{Kind: kind})
	}
	sse.Signals(map[string]any{"session": s.ID})
}

func (h *Handler) send(sse humastar.SSE, s *service.Session, ev service.Event) {
	switch ev.Kind {
	case service.EventStats:
		sse.Patch(h.Render("stats-bar", statsView(s.Stats())), "#stats-bar")

	case service.EventLayers:
		sse.Patch(h.Render("filters", filterViews(s.Store().Layers())), "#filters")

	case service.EventMarkers:
		sse.Dispatch(EventPins, h.pins(s))

	case service.EventIndicator:
		sse.Signals(map[string]any{"indicator": map[string]any{
			"visible": ev.Visible, "x": ev.X, "y": ev.Y,
		}})

	case service.EventVibrate:
		sse.Dispatch(EventVibrate, map[string]any{"ms": gesture.HapticPulse.Milliseconds()})

	case service.EventDraft:
		d, open := s.Draft()
		sse.Patch(h.Render("draft-sheet", draftView(d, open)), "#draft-sheet")
		detail := map[string]any{"open": open}
		if open {
			detail["lat"], detail["lng"] = d.Lat(), d.Lng()
		}
		sse.Dispatch(EventDraftPin, detail)
		sse.Signals(map[string]any{"draftOpen": open})

	case service.EventLocation:
		if m, ok := s.Store().UserLocation(); ok {
			sse.Dispatch(EventLocation, LocationView{Lat: m.Lat(), Lng: m.Lng(), Accuracy: m.Accuracy, Style: m.Style})
		}

	case service.EventBasemap:
		b := s.Basemap()
		sse.Dispatch(EventBasemap, BasemapView{Key: b, Tiles: b.Info(), Light: b.LightTheme()})
		sse.Signals(map[string]any{"basemap": string(b), "light": b.LightTheme()})

	case service.EventNotice:
		sse.Error(ev.Message)
	}
}

// pins returns every pin on a visible layer with its popup.
func (h *Handler) pins(s *service.Session) []PinView {
	shown := s.Store().Shown()
	out := make([]PinView, 0, len(shown))
	for _, m := range shown {
		out = append(out, PinView{
			ID:      m.ID,
			Lat:     m.Lat(),
			Lng:     m.Lng(),
			Feeling: m.Feeling,
			Style:   m.Style,
			Popup:   h.Render("marker-popup", popupData(m)),
		})
	}
	return out
}
