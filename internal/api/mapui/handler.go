// Package mapui contains Datastar SSE handlers for the sound map page.
//
// The browser is a thin shell: it forwards pointer and map events here and
// draws whatever the session event stream tells it to. Every handler works
// on the session named by the session cookie.
package mapui

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-soundmap/internal/humastar"
	"github.com/joeblew999/plat-soundmap/internal/service"
	"github.com/joeblew999/plat-soundmap/internal/templates"
)

// CookieName is the session cookie set by the map page.
const CookieName = "soundmap_session"

// SessionInput identifies the browser session.
type SessionInput struct {
	Session string `cookie:"soundmap_session" doc:"Map session ID"`
}

// ActionInput is a session action carrying Datastar signals.
type ActionInput struct {
	SessionInput
	RawBody []byte
}

// Handler serves the map page actions and its event stream.
type Handler struct {
	humastar.Handler
	sessions *service.Sessions
	log      zerolog.Logger
}

// New creates the map UI handler.
func New(sessions *service.Sessions, renderer *templates.Renderer, log zerolog.Logger) *Handler {
	return &Handler{
		Handler:  humastar.Handler{Renderer: renderer},
		sessions: sessions,
		log:      log,
	}
}

func (h *Handler) RegisterRoutes(api huma.API) {
	tags := huma.OperationTags("map")

	huma.Get(api, "/api/v1/map/events", h.Events, tags)

	huma.Post(api, "/api/v1/map/press/start", h.PressStart, tags)
	huma.Post(api, "/api/v1/map/press/move", h.PressMove, tags)
	huma.Post(api, "/api/v1/map/press/end", h.PressEnd, tags)
	huma.Post(api, "/api/v1/map/press/cancel", h.PressCancel, tags)
	huma.Post(api, "/api/v1/map/surface", h.Surface, tags)

	huma.Post(api, "/api/v1/map/layers/{feeling}/toggle", h.ToggleLayer, tags)
	huma.Post(api, "/api/v1/map/basemap/{key}", h.SetBasemap, tags)
	huma.Post(api, "/api/v1/map/locate", h.Locate, tags)

	huma.Post(api, "/api/v1/map/draft/close", h.CloseDraft, tags)
	huma.Post(api, "/api/v1/map/draft/submit", h.SubmitDraft, tags)
	huma.Post(api, "/api/v1/map/draft/recording", h.SubmitRecording, tags,
		func(o *huma.Operation) { o.MaxBodyBytes = MaxClipBytes })
}

// MustParseSignals parses the signals or returns a Huma 400 error.
func (in *ActionInput) MustParseSignals() (humastar.Signals, error) {
	return (&humastar.SignalsInput{RawBody: in.RawBody}).MustParse()
}

// session returns the browser's session, recreating it when the server
// restarted or pruned it.
func (h *Handler) session(ctx context.Context, in SessionInput) *service.Session {
	return h.sessions.Ensure(ctx, in.Session)
}

// action parses the signals and runs fn on the session. Failures are sent
// back as an error signal.
func (h *Handler) action(ctx context.Context, in *ActionInput, fn func(s *service.Session, sig humastar.Signals) error) (*huma.StreamResponse, error) {
	sig, err := in.MustParseSignals()
	if err != nil {
		return nil, err
	}
	s := h.session(ctx, in.SessionInput)
	err = fn(s, sig)
	return h.Stream(func(sse humastar.SSE) {
		if err != nil {
			sse.Error(err.Error())
		}
	}), nil
}

// SessionCookie returns the cookie that binds a browser to session id.
func SessionCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
