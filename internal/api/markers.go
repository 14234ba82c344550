package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-soundmap/internal/markers"
	"github.com/joeblew999/plat-soundmap/internal/mood"
	"github.com/joeblew999/plat-soundmap/internal/service"
	"github.com/joeblew999/plat-soundmap/internal/stats"
)

// GeoJSONType is the media type of the GeoJSON export.
const GeoJSONType = "application/geo+json"

// ViewInput selects pins the way the map would show them.
type ViewInput struct {
	BBox    string   `query:"bbox" doc:"Viewport as minLng,minLat,maxLng,maxLat" example:"15.9,45.7,16.1,45.9"`
	Feeling []string `query:"feeling" doc:"Visible layers; all when omitted" example:"happy,relaxed"`
}

type MarkersOutput struct {
	Body []markers.Marker
}

type GeoJSONOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type CreatedMarkerBody struct {
	Marker  markers.Record `json:"marker" doc:"Stored record"`
	Message string         `json:"message" doc:"Result message"`
}

type StatsBody struct {
	stats.Snapshot
	Text string `json:"text" doc:"Stats bar text" example:"Voda · Sretno 😊"`
}

type RefreshBody struct {
	Source    service.Source `json:"source" doc:"Where the rendered list came from" enum:"cache,network"`
	Count     int            `json:"count" doc:"Number of records rendered"`
	FromCache bool           `json:"fromCache" doc:"Whether the cache was rendered first"`
	Warning   string         `json:"warning,omitempty" doc:"Fetch failure masked by the cache"`
}

// RegisterMarkers registers marker listing, export and submission routes.
func (h *APIHandler) RegisterMarkers(api huma.API) {
	huma.Get(api, "/api/v1/markers", h.GetMarkers, huma.OperationTags("markers"))
	huma.Get(api, "/api/v1/markers.geojson", h.GetMarkersGeoJSON, huma.OperationTags("markers"))
	huma.Post(api, "/api/v1/markers", h.CreateMarker, huma.OperationTags("markers"),
		func(o *huma.Operation) { o.DefaultStatus = http.StatusCreated })
	huma.Post(api, "/api/v1/markers/refresh", h.RefreshMarkers, huma.OperationTags("markers"))
}

// RegisterStats registers viewport statistics routes.
func (h *APIHandler) RegisterStats(api huma.API) {
	huma.Get(api, "/api/v1/stats", h.GetStats, huma.OperationTags("stats"))
}

// ParseBBox parses "minLng,minLat,maxLng,maxLat".
func ParseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("bbox needs 4 numbers, got %d", len(parts))
	}
	var n [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bbox: %w", err)
		}
		n[i] = f
	}
	b := orb.Bound{Min: orb.Point{n[0], n[1]}, Max: orb.Point{n[2], n[3]}}
	if b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() {
		return orb.Bound{}, errors.New("bbox min exceeds max")
	}
	return b, nil
}

// visible renders the latest records into a scratch store and returns the
// pins the map would show for input.
func (h *APIHandler) visible(input *ViewInput) ([]markers.Marker, error) {
	store := markers.NewStore()
	if h.svc != nil && h.svc.Sessions != nil {
		recs, _ := h.svc.Sessions.Sync().Latest()
		store.Replace(recs)
	}

	if len(input.Feeling) > 0 {
		shown := map[mood.Feeling]bool{}
		for _, key := range input.Feeling {
			f, ok := mood.ParseFeeling(key)
			if !ok {
				return nil, huma.Error422UnprocessableEntity("unknown feeling " + strconv.Quote(key))
			}
			shown[f] = true
		}
		for _, f := range mood.Feelings {
			store.SetLayerVisible(f, shown[f])
		}
	}

	if input.BBox == "" {
		return store.Shown(), nil
	}
	bounds, err := ParseBBox(input.BBox)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	return store.Visible(bounds, true), nil
}

func (h *APIHandler) GetMarkers(ctx context.Context, input *ViewInput) (*MarkersOutput, error) {
	ms, err := h.visible(input)
	if err != nil {
		return nil, err
	}
	if ms == nil {
		ms = []markers.Marker{}
	}
	return &MarkersOutput{Body: ms}, nil
}

// FeatureCollection converts pins to GeoJSON points.
func FeatureCollection(ms []markers.Marker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range ms {
		f := geojson.NewFeature(m.Position)
		f.ID = m.ID
		f.Properties = geojson.Properties{
			"category": string(m.Category),
			"feeling":  string(m.Feeling),
			"label":    m.FeelingText,
			"color":    m.Color,
			"audioUrl": m.AudioURL,
		}
		if m.Comment != "" {
			f.Properties["comment"] = m.Comment
		}
		fc.Append(f)
	}
	return fc
}

func (h *APIHandler) GetMarkersGeoJSON(ctx context.Context, input *ViewInput) (*GeoJSONOutput, error) {
	ms, err := h.visible(input)
	if err != nil {
		return nil, err
	}
	data, err := FeatureCollection(ms).MarshalJSON()
	if err != nil {
		return nil, huma.Error500InternalServerError("encode geojson", err)
	}
	return &GeoJSONOutput{ContentType: GeoJSONType, Body: data}, nil
}

func (h *APIHandler) CreateMarker(ctx context.Context, input *struct{ Body markers.Record }) (*struct{ Body CreatedMarkerBody }, error) {
	if h.svc == nil || h.svc.Sessions == nil {
		return nil, huma.Error503ServiceUnavailable("service not available")
	}
	sessions := h.svc.Sessions
	err := sessions.Submitter().Submit(ctx, input.Body, sessions.Broadcast)
	if errors.Is(err, service.ErrNotPersisted) {
		return nil, huma.Error502BadGateway("marker shown but not saved", err)
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("submit failed", err)
	}
	return &struct{ Body CreatedMarkerBody }{Body: CreatedMarkerBody{
		Marker: input.Body, Message: "Marker saved",
	}}, nil
}

func (h *APIHandler) RefreshMarkers(ctx context.Context, input *struct{}) (*struct{ Body RefreshBody }, error) {
	if h.svc == nil || h.svc.Sessions == nil {
		return nil, huma.Error503ServiceUnavailable("service not available")
	}
	res, err := h.svc.Sessions.Load(ctx)
	if err != nil {
		return nil, huma.Error502BadGateway(service.LoadFailedNotice, err)
	}
	body := RefreshBody{Source: res.Source, Count: res.Count, FromCache: res.FromCache}
	if res.Err != nil {
		body.Warning = res.Err.Error()
	}
	return &struct{ Body RefreshBody }{Body: body}, nil
}

func (h *APIHandler) GetStats(ctx context.Context, input *ViewInput) (*struct{ Body StatsBody }, error) {
	ms, err := h.visible(input)
	if err != nil {
		return nil, err
	}
	snap := stats.Recompute(ms)
	return &struct{ Body StatsBody }{Body: StatsBody{Snapshot: snap, Text: snap.Text()}}, nil
}
