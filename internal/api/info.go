package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-soundmap/internal/service"
)

type InfoHandler struct {
	dataDir  string
	dbOK     bool
	sessions *service.Sessions
}

func NewInfoHandler(dataDir string, dbOK bool, sessions *service.Sessions) *InfoHandler {
	return &InfoHandler{dataDir: dataDir, dbOK: dbOK, sessions: sessions}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	DataDir  string   `json:"data_dir" doc:"Data directory path"`
	DB       bool     `json:"db" doc:"Whether the local cache database is available"`
	Sessions int      `json:"sessions" doc:"Connected map sessions"`
	Markers  int      `json:"markers" doc:"Records in the latest list"`
	Loaded   bool     `json:"loaded" doc:"Whether any list was loaded yet"`
	Features []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	body := InfoBody{
		Name:     "plat-soundmap",
		Version:  "0.1.0",
		DataDir:  h.dataDir,
		DB:       h.dbOK,
		Features: []string{"long-press", "mood-layers", "viewport-stats", "clip-upload", "geojson", "duckdb-cache"},
	}
	if h.sessions != nil {
		body.Sessions = h.sessions.Len()
		recs, ok := h.sessions.Sync().Latest()
		body.Markers, body.Loaded = len(recs), ok
	}
	return &struct{ Body InfoBody }{Body: body}, nil
}
