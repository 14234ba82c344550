package api

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// CacheBody describes the local cache slot.
type CacheBody struct {
	Key       string     `json:"key" doc:"Slot key" example:"min_ak_markers"`
	Present   bool       `json:"present" doc:"Whether the slot holds a list"`
	Count     int        `json:"count" doc:"Number of cached records"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty" doc:"Last write"`
}

// RegisterCache registers cache inspection routes.
func (h *APIHandler) RegisterCache(api huma.API) {
	huma.Get(api, "/api/v1/cache", h.GetCache, huma.OperationTags("cache"))
	huma.Delete(api, "/api/v1/cache", h.ClearCache, huma.OperationTags("cache"))
}

func (h *APIHandler) GetCache(ctx context.Context, input *struct{}) (*struct{ Body CacheBody }, error) {
	if h.svc == nil || h.svc.Cache == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}
	slot := h.svc.Cache
	body := CacheBody{Key: slot.Key()}

	recs, ok, err := slot.Load(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("cache unreadable", err)
	}
	body.Present, body.Count = ok, len(recs)

	at, ok, err := slot.UpdatedAt(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("cache unreadable", err)
	}
	if ok {
		body.UpdatedAt = &at
	}
	return &struct{ Body CacheBody }{Body: body}, nil
}

func (h *APIHandler) ClearCache(ctx context.Context, input *struct{}) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Cache == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}
	if err := h.svc.Cache.Clear(ctx); err != nil {
		return nil, huma.Error500InternalServerError("cache clear failed", err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Cache cleared"}}, nil
}
