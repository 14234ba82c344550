package mapui

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-soundmap/internal/humastar"
	"github.com/joeblew999/plat-soundmap/internal/mood"
	"github.com/joeblew999/plat-soundmap/internal/service"
	"github.com/joeblew999/plat-soundmap/internal/surface"
)

type LayerInput struct {
	SessionInput
	Feeling string `path:"feeling" doc:"Layer key" example:"happy"`
}

type BasemapInput struct {
	SessionInput
	Key string `path:"key" doc:"Basemap key" example:"light"`
}

// ToggleLayer shows or hides one mood layer.
func (h *Handler) ToggleLayer(ctx context.Context, input *LayerInput) (*huma.StreamResponse, error) {
	f, ok := mood.ParseFeeling(input.Feeling)
	if !ok {
		return nil, huma.Error404NotFound("unknown layer " + input.Feeling)
	}
	s := h.session(ctx, input.SessionInput)
	visible := s.ToggleLayer(f)
	h.log.Debug().Str("session", s.ID).Str("layer", string(f)).Bool("visible", visible).Msg("layer toggled")
	return h.Stream(func(humastar.SSE) {}), nil
}

// SetBasemap switches the basemap and the pin theme with it.
func (h *Handler) SetBasemap(ctx context.Context, input *BasemapInput) (*huma.StreamResponse, error) {
	b, err := surface.ParseBasemap(input.Key)
	if err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	h.session(ctx, input.SessionInput).SetBasemap(b)
	return h.Stream(func(humastar.SSE) {}), nil
}

// Locate places the user location indicator from a browser geolocation fix.
func (h *Handler) Locate(ctx context.Context, input *ActionInput) (*huma.StreamResponse, error) {
	return h.action(ctx, input, func(s *service.Session, sig humastar.Signals) error {
		if !sig.Has(sigLocLat) || !sig.Has(sigLocLng) {
			return huma.Error422UnprocessableEntity("location unavailable")
		}
		s.Locate(orb.Point{sig.Float(sigLocLng), sig.Float(sigLocLat)}, sig.Float(sigLocAcc))
		return nil
	})
}
