// Package api defines the Huma API routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-soundmap/internal/cache"
	"github.com/joeblew999/plat-soundmap/internal/mood"
	"github.com/joeblew999/plat-soundmap/internal/service"
	"github.com/joeblew999/plat-soundmap/internal/surface"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Sessions *service.Sessions
	Cache    *cache.Slot // nil when no database is available
}

// Types

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type FeelingBody struct {
	Key   mood.Feeling `json:"key" doc:"Layer key" example:"happy"`
	Label string       `json:"label" doc:"Display label" example:"Sretno"`
	Emoji string       `json:"emoji" doc:"Mood emoji matched in feeling text" example:"😊"`
	Icon  string       `json:"icon" doc:"Lucide icon name" example:"sun"`
}

type CategoryBody struct {
	Name  mood.Category `json:"name" doc:"Category name" example:"Voda"`
	Color string        `json:"color" doc:"Pin colour" example:"#3b82f6"`
	Icon  string        `json:"icon" doc:"Popup emoji" example:"💧"`
}

type BasemapBody struct {
	Key     surface.Basemap     `json:"key" doc:"Basemap key" example:"dark"`
	Tiles   surface.BasemapInfo `json:"tiles" doc:"Raster tile source"`
	Light   bool                `json:"light" doc:"Whether pins use the light theme over it"`
	Default bool                `json:"default" doc:"Whether the map starts with it"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers every REST route on api.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterVocabulary registers the fixed feeling, category and basemap lists.
func (h *APIHandler) RegisterVocabulary(api huma.API) {
	huma.Get(api, "/api/v1/feelings", h.GetFeelings, huma.OperationTags("vocabulary"))
	huma.Get(api, "/api/v1/categories", h.GetCategories, huma.OperationTags("vocabulary"))
	huma.Get(api, "/api/v1/basemaps", h.GetBasemaps, huma.OperationTags("vocabulary"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetFeelings(ctx context.Context, input *struct{}) (*struct{ Body []FeelingBody }, error) {
	out := make([]FeelingBody, 0, len(mood.Feelings))
	for _, f := range mood.Feelings {
		out = append(out, FeelingBody{Key: f, Label: f.Label(), Emoji: f.Emoji(), Icon: f.Icon()})
	}
	return &struct{ Body []FeelingBody }{Body: out}, nil
}

func (h *APIHandler) GetCategories(ctx context.Context, input *struct{}) (*struct{ Body []CategoryBody }, error) {
	out := make([]CategoryBody, 0, len(mood.Categories))
	for _, c := range mood.Categories {
		out = append(out, CategoryBody{Name: c, Color: c.Color(), Icon: c.Icon()})
	}
	return &struct{ Body []CategoryBody }{Body: out}, nil
}

func (h *APIHandler) GetBasemaps(ctx context.Context, input *struct{}) (*struct{ Body []BasemapBody }, error) {
	start := surface.DefaultBasemap
	if h.svc != nil && h.svc.Sessions != nil {
		if b := h.svc.Sessions.Config().Basemap; b != "" {
			start = b
		}
	}
	out := make([]BasemapBody, 0, len(surface.Basemaps))
	for _, b := range surface.Basemaps {
		out = append(out, BasemapBody{Key: b, Tiles: b.Info(), Light: b.LightTheme(), Default: b == start})
	}
	return &struct{ Body []BasemapBody }{Body: out}, nil
}
