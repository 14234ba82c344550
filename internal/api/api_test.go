package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-soundmap/internal/cache"
	"github.com/joeblew999/plat-soundmap/internal/db"
	"github.com/joeblew999/plat-soundmap/internal/markers"
	"github.com/joeblew999/plat-soundmap/internal/service"
)

type stubFetcher struct {
	recs []markers.Record
	err  error
}

func (f stubFetcher) Fetch(context.Context) ([]markers.Record, error) { return f.recs, f.err }

type stubSheet struct {
	mu   sync.Mutex
	got  []markers.Record
	fail bool
}

func (s *stubSheet) Append(_ context.Context, rec markers.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sheet down")
	}
	s.got = append(s.got, rec)
	return nil
}

func record(lat, lng float64, category, feeling string) markers.Record {
	return markers.Record{Lat: markers.Coord(lat), Lng: markers.Coord(lng), Category: category, Feeling: feeling, AudioURL: "https://m/a.mp3"}
}

var fixtureRecords = []markers.Record{
	record(45.80, 15.97, "Voda", "Sretno 😊"),
	record(45.81, 15.98, "Voda", "Opušteno 😌"),
	record(45.82, 15.99, "Buka", "Stresno 😖"),
	record(46.50, 15.97, "Priroda", "Sretno 😊"), // outside the Zagreb box
}

const zagrebBox = "15.9,45.7,16.1,45.9"

type testEnv struct {
	api      humatest.TestAPI
	sessions *service.Sessions
	sheet    *stubSheet
}

func newEnv(t *testing.T, fetcher service.Fetcher, slot *cache.Slot) *testEnv {
	t.Helper()
	_, api := humatest.New(t)

	log := zerolog.Nop()
	var cacheSlot service.CacheSlot
	if slot != nil {
		cacheSlot = slot
	}
	sheet := &stubSheet{}
	sessions := service.NewSessions(service.SessionConfig{},
		service.NewMarkerSync(fetcher, cacheSlot, log),
		service.NewSubmitter(sheet, nil, log), log)

	RegisterRoutes(api, &Services{Sessions: sessions, Cache: slot})
	NewInfoHandler("/tmp/data", slot != nil, sessions).RegisterRoutes(api)
	return &testEnv{api: api, sessions: sessions, sheet: sheet}
}

func loaded(t *testing.T, recs []markers.Record) *testEnv {
	t.Helper()
	env := newEnv(t, stubFetcher{recs: recs}, nil)
	_, err := env.sessions.Load(context.Background())
	require.NoError(t, err)
	return env
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func TestHealth(t *testing.T) {
	env := newEnv(t, stubFetcher{}, nil)
	resp := env.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", decode[HealthBody](t, resp.Body.Bytes()).Status)
}

func TestVocabulary(t *testing.T) {
	env := newEnv(t, stubFetcher{}, nil)

	feelings := decode[[]FeelingBody](t, env.api.Get("/api/v1/feelings").Body.Bytes())
	require.Len(t, feelings, 4)
	assert.Equal(t, "relaxed", string(feelings[0].Key))
	assert.Equal(t, "😌", feelings[0].Emoji)

	categories := decode[[]CategoryBody](t, env.api.Get("/api/v1/categories").Body.Bytes())
	require.Len(t, categories, 4)
	assert.Equal(t, "#22c55e", categories[0].Color)

	basemaps := decode[[]BasemapBody](t, env.api.Get("/api/v1/basemaps").Body.Bytes())
	require.Len(t, basemaps, 3)
	assert.True(t, basemaps[0].Default, "dark is the default")
	assert.False(t, basemaps[0].Light)
	assert.True(t, basemaps[1].Light)
	assert.False(t, basemaps[2].Light, "topo keeps the dark theme")
}

func TestGetMarkers_Filters(t *testing.T) {
	env := loaded(t, fixtureRecords)

	all := decode[[]markers.Marker](t, env.api.Get("/api/v1/markers").Body.Bytes())
	assert.Len(t, all, 4)

	inBox := decode[[]markers.Marker](t, env.api.Get("/api/v1/markers?bbox="+zagrebBox).Body.Bytes())
	assert.Len(t, inBox, 3)

	happy := decode[[]markers.Marker](t, env.api.Get("/api/v1/markers?feeling=happy&bbox="+zagrebBox).Body.Bytes())
	require.Len(t, happy, 1)
	assert.Equal(t, "Voda", string(happy[0].Category))
}

func TestGetMarkers_BadInput(t *testing.T) {
	env := loaded(t, fixtureRecords)
	assert.Equal(t, http.StatusUnprocessableEntity, env.api.Get("/api/v1/markers?bbox=1,2,3").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, env.api.Get("/api/v1/markers?bbox=3,2,1,0").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, env.api.Get("/api/v1/markers?feeling=angry").Code)
}

func TestGetMarkers_EmptyBeforeLoad(t *testing.T) {
	env := newEnv(t, stubFetcher{}, nil)
	resp := env.api.Get("/api/v1/markers")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())
}

func TestGetMarkersGeoJSON(t *testing.T) {
	env := loaded(t, fixtureRecords)

	resp := env.api.Get("/api/v1/markers.geojson?bbox=" + zagrebBox)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, GeoJSONType, resp.Header().Get("Content-Type"))

	fc, err := geojson.UnmarshalFeatureCollection(resp.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	first := fc.Features[0]
	assert.InDelta(t, 15.98, first.Point().Lon(), 1e-9, "relaxed layer comes first")
	assert.Equal(t, "relaxed", first.Properties.MustString("feeling"))
	assert.Equal(t, "#3b82f6", first.Properties.MustString("color"))
}

func TestGetStats(t *testing.T) {
	env := loaded(t, fixtureRecords)

	body := decode[StatsBody](t, env.api.Get("/api/v1/stats?bbox="+zagrebBox).Body.Bytes())
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, "Voda", body.DominantCategory)
	assert.Equal(t, "Opušteno 😌", body.DominantFeeling, "ties go to the first layer seen")
	assert.Equal(t, "Voda · Opušteno 😌", body.Text)

	empty := decode[StatsBody](t, env.api.Get("/api/v1/stats?bbox=0,0,1,1").Body.Bytes())
	assert.True(t, empty.Empty)
	assert.Equal(t, "Pomiči mapu za više podataka", empty.Text)
}

func TestCreateMarker(t *testing.T) {
	env := loaded(t, nil)
	s := env.sessions.Create(context.Background())

	resp := env.api.Post("/api/v1/markers", map[string]any{
		"lat": "45.815", "lng": 15.981, "category": "Ljudi", "feeling": "Neutralno 😐", "audioUrl": "https://m/b.mp3",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	require.Len(t, env.sheet.got, 1)
	assert.InDelta(t, 45.815, float64(env.sheet.got[0].Lat), 1e-9)
	assert.Equal(t, 1, s.Store().Len(), "connected sessions see the pin")

	list := decode[[]markers.Marker](t, env.api.Get("/api/v1/markers").Body.Bytes())
	assert.Len(t, list, 1)
}

func TestCreateMarker_NotPersisted(t *testing.T) {
	env := loaded(t, nil)
	env.sheet.fail = true
	s := env.sessions.Create(context.Background())

	resp := env.api.Post("/api/v1/markers", record(45.8, 15.9, "Buka", "😖"))
	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Equal(t, 1, s.Store().Len(), "the pin stays rendered")
}

func TestRefreshMarkers(t *testing.T) {
	env := newEnv(t, stubFetcher{recs: fixtureRecords}, nil)
	body := decode[RefreshBody](t, env.api.Post("/api/v1/markers/refresh").Body.Bytes())
	assert.Equal(t, service.SourceNetwork, body.Source)
	assert.Equal(t, 4, body.Count)

	offline := newEnv(t, stubFetcher{err: errors.New("offline")}, nil)
	assert.Equal(t, http.StatusBadGateway, offline.api.Post("/api/v1/markers/refresh").Code)
}

func TestCache(t *testing.T) {
	conn, err := db.Open(db.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	slot := cache.NewSlot(conn, cache.MarkersKey)

	env := newEnv(t, stubFetcher{recs: fixtureRecords}, slot)
	before := decode[CacheBody](t, env.api.Get("/api/v1/cache").Body.Bytes())
	assert.False(t, before.Present)
	assert.Equal(t, cache.MarkersKey, before.Key)

	env.api.Post("/api/v1/markers/refresh")
	after := decode[CacheBody](t, env.api.Get("/api/v1/cache").Body.Bytes())
	assert.True(t, after.Present)
	assert.Equal(t, 4, after.Count)
	assert.NotNil(t, after.UpdatedAt)

	require.Equal(t, http.StatusOK, env.api.Delete("/api/v1/cache").Code)
	assert.False(t, decode[CacheBody](t, env.api.Get("/api/v1/cache").Body.Bytes()).Present)
}

func TestCache_Unavailable(t *testing.T) {
	env := newEnv(t, stubFetcher{}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, env.api.Get("/api/v1/cache").Code)
}

func TestInfo(t *testing.T) {
	env := loaded(t, fixtureRecords)
	env.sessions.Create(context.Background())

	info := decode[InfoBody](t, env.api.Get("/api/v1/info").Body.Bytes())
	assert.Equal(t, "plat-soundmap", info.Name)
	assert.Equal(t, 1, info.Sessions)
	assert.Equal(t, 4, info.Markers)
	assert.True(t, info.Loaded)
	assert.False(t, info.DB)
}

func TestLinkTransformer(t *testing.T) {
	cfg := huma.DefaultConfig("test", "1.0.0")
	cfg.Transformers = append(cfg.Transformers, LinkTransformer())
	_, api := humatest.New(t, cfg)
	RegisterRoutes(api, &Services{})

	resp := api.Get("/health")
	assert.Contains(t, resp.Header().Values("Link"), `</api/v1/info>; rel="info"`)
}
