// Package server wires the sound map: collaborators, sessions, the Huma API,
// the Datastar map UI, page routes and static files.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/joeblew999/plat-soundmap/internal/api"
	"github.com/joeblew999/plat-soundmap/internal/api/mapui"
	"github.com/joeblew999/plat-soundmap/internal/cache"
	"github.com/joeblew999/plat-soundmap/internal/config"
	"github.com/joeblew999/plat-soundmap/internal/db"
	"github.com/joeblew999/plat-soundmap/internal/logging"
	"github.com/joeblew999/plat-soundmap/internal/remote"
	"github.com/joeblew999/plat-soundmap/internal/service"
	"github.com/joeblew999/plat-soundmap/internal/surface"
	"github.com/joeblew999/plat-soundmap/internal/templates"
)

const (
	pruneInterval = time.Minute
	maxIdle       = 30 * time.Minute
)

// Config holds the server configuration.
type Config struct {
	Host     string
	Port     string
	DataDir  string // DuckDB cache location; empty keeps the cache in memory
	WebDir   string // Path to web/ directory for static files and templates
	Watch    bool   // reload templates when they change on disk
	Settings config.Settings
	Logger   zerolog.Logger
}

// Server is the sound map HTTP server.
type Server struct {
	config   Config
	log      zerolog.Logger
	mux      *http.ServeMux
	humaAPI  huma.API
	db       *sql.DB
	services *api.Services
	sessions *service.Sessions
	renderer *templates.Renderer // fragments for SSE patches
	pages    *templates.Renderer // full pages
}

// New creates a new sound map server.
func New(cfg Config) *Server {
	log := cfg.Logger
	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("plat-soundmap API", "1.0.0")
	humaConfig.Info.Description = "Community sound map: mood-tagged audio pins, viewport statistics and the long-press map UI."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	s := &Server{
		config:  cfg,
		log:     log,
		mux:     mux,
		humaAPI: humaAPI,
	}

	// Initialize DuckDB connection for the local cache slot
	var slot *cache.Slot
	conn, err := db.Get(db.Config{DataDir: cfg.DataDir, DBName: "soundmap"})
	if err != nil {
		log.Warn().Err(err).Msg("cache database unavailable, running without cache")
	} else {
		s.db = conn
		slot = cache.NewSlot(conn, cfg.Settings.Cache.Key)
	}

	s.sessions = newSessions(cfg.Settings, slot, log)
	s.services = &api.Services{Sessions: s.sessions, Cache: slot}

	// Initialize template renderers for the page and its SSE fragments
	if cfg.WebDir != "" {
		fragmentsDir := filepath.Join(cfg.WebDir, "templates", "fragments")
		if r, err := templates.New(fragmentsDir); err == nil {
			s.renderer = r
			log.Info().Str("dir", fragmentsDir).Msg("loaded fragment templates")
		} else {
			log.Warn().Err(err).Msg("fragment templates unavailable")
		}
		if r, err := templates.New(filepath.Join(cfg.WebDir, "templates")); err == nil {
			s.pages = r
		} else {
			log.Warn().Err(err).Msg("page templates unavailable")
		}
	}

	s.routes()
	return s
}

// newSessions builds the collaborators named by the settings file.
func newSessions(st config.Settings, slot *cache.Slot, log zerolog.Logger) *service.Sessions {
	var media service.Uploader
	if st.Media.CloudName != "" {
		media = remote.NewMediaUploader(st.Media.Endpoint, st.Media.CloudName, st.Media.UploadPreset)
	}
	var cacheSlot service.CacheSlot
	if slot != nil {
		cacheSlot = slot
	}
	sheet := remote.NewSheetClient(st.Sheet.URL)

	ms := service.NewMarkerSync(sheet, cacheSlot, logging.Component(log, "sync"))
	submit := service.NewSubmitter(sheet, media, logging.Component(log, "submit"))
	return service.NewSessions(service.SessionConfig{
		Gesture: st.GestureThresholds(),
		View:    st.Viewport(),
		Basemap: st.Basemap(),
	}, ms, submit, logging.Component(log, "sessions"))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated API description.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Sessions returns the session registry.
func (s *Server) Sessions() *service.Sessions {
	return s.sessions
}

// Close closes server resources.
func (s *Server) Close() error {
	return db.Close()
}

func (s *Server) routes() {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, s.services)
	api.NewInfoHandler(s.config.DataDir, s.db != nil, s.sessions).RegisterRoutes(s.humaAPI)

	// Register map UI SSE routes using Huma + Datastar SDK
	if s.renderer != nil {
		mapui.New(s.sessions, s.renderer, logging.Component(s.log, "mapui")).RegisterRoutes(s.humaAPI)
	}

	// Static files
	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	// Page routes
	s.mux.HandleFunc("/", s.handleMap)
}

// PageData feeds the map page template.
type PageData struct {
	CenterLat, CenterLng float64
	Zoom                 float64
	Basemap              surface.Basemap
	Light                bool
	Basemaps             []surface.Basemap
}

// handleMap serves the map page and binds the browser to a session.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.pages == nil {
		http.Error(w, "map page not available", http.StatusServiceUnavailable)
		return
	}

	var id string
	if c, err := r.Cookie(mapui.CookieName); err == nil {
		id = c.Value
	}
	sess := s.sessions.Ensure(r.Context(), id)
	http.SetCookie(w, mapui.SessionCookie(sess.ID))

	view := sess.View()
	b := sess.Basemap()
	html, err := s.pages.Render("map", PageData{
		CenterLat: view.Center.Lat(),
		CenterLng: view.Center.Lon(),
		Zoom:      view.Zoom,
		Basemap:   b,
		Light:     b.LightTheme(),
		Basemaps:  surface.Basemaps,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("render map page")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}

// Run serves until ctx is done. Alongside the listener it loads the
// markers cache-first, prunes idle sessions and, with Watch, reloads
// edited templates.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Host, s.config.Port)
	httpSrv := &http.Server{Addr: addr, Handler: s}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info().Str("addr", addr).Msg("listening")
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		// a failed load is reported to the sessions; the map stays usable
		if _, err := s.sessions.Load(ctx); err != nil {
			s.log.Warn().Err(err).Msg("initial marker load failed")
		}
		return nil
	})
	g.Go(func() error {
		return s.sessions.PruneLoop(ctx, pruneInterval, maxIdle)
	})
	for _, r := range []*templates.Renderer{s.renderer, s.pages} {
		if r == nil || !s.config.Watch {
			continue
		}
		w := templates.NewWatcher(r, logging.Component(s.log, "templates"), nil)
		g.Go(func() error { return w.Run(ctx) })
	}

	return g.Wait()
}
