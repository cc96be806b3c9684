package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hashicorp/go-hclog"

	"github.com/bryanwahyu/security-guardian-dashboard/internal/application"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/application/app"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/application/scanform"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/domain/scans"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/middleware"
)

// Backend is the Guardian API as seen by the dashboard server.
type Backend interface {
	app.Backend
	middleware.BackendPinger
}

type Options struct {
	Backend        Backend
	Clock          application.Clock
	Location       *time.Location
	Logger         hclog.Logger
	SessionTTL     time.Duration
	AllowedOrigins []string
	RateCapacity   int
	RateRefill     int
}

type Router struct {
	mux      *chi.Mux
	backend  Backend
	clock    application.Clock
	loc      *time.Location
	logger   hclog.Logger
	sessions *SessionStore
}

func NewRouter(opts Options) *Router {
	if opts.Clock == nil {
		opts.Clock = application.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	r := &Router{
		backend:  opts.Backend,
		clock:    opts.Clock,
		loc:      opts.Location,
		logger:   opts.Logger,
		sessions: NewSessionStore(opts.SessionTTL, opts.Clock),
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.LoggingMiddleware(opts.Logger.Named("http")))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"backend": &middleware.BackendHealthChecker{Backend: opts.Backend},
	}))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Get("/", r.wrap(r.handleIndex))
	mux.Get("/app", r.wrap(r.handleApp))
	mux.Get("/api/state", r.wrap(r.handleState))

	mux.Group(func(rt chi.Router) {
		if opts.RateCapacity > 0 {
			rt.Use(middleware.RateLimitMiddleware(opts.RateCapacity, opts.RateRefill))
		}
		rt.Post("/scan", r.wrap(r.withApp(r.handleSubmit)))
		rt.Post("/settings/webhook-secret", r.wrap(r.withApp(r.handleSaveWebhookSecret)))
	})
	mux.Post("/settings/toggle", r.wrap(r.withApp(r.handleToggleSettings)))
	mux.Post("/scans/refresh", r.wrap(r.withApp(r.handleRefresh)))
	mux.Post("/scans/{id}/tokens", r.wrap(r.withApp(r.handleOpenTokens)))
	mux.Post("/scans/tokens/close", r.wrap(r.withApp(r.handleCloseTokens)))

	r.mux = mux
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Sessions exposes the store so the caller can run its janitor.
func (r *Router) Sessions() *SessionStore {
	return r.sessions
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

type appHandlerFunc func(http.ResponseWriter, *http.Request, *app.App) error

// badRequest marks errors caused by malformed client input.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var br badRequest
			if errors.As(err, &br) {
				http.Error(w, br.Error(), http.StatusBadRequest)
				return
			}
			r.logger.Error("handler failed", "path", req.URL.Path, "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

// withApp resolves the session App; without one the browser is sent to a
// fresh page load. Every action ends with a redirect to the current view.
func (r *Router) withApp(h appHandlerFunc) handlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		a, ok := r.sessions.Get(sessionID(req))
		if !ok {
			http.Redirect(w, req, "/", http.StatusSeeOther)
			return nil
		}
		if err := h(w, req, a); err != nil {
			return err
		}
		http.Redirect(w, req, "/app", http.StatusSeeOther)
		return nil
	}
}

// GET / is a page load: a new App is mounted and replaces any previous one.
func (r *Router) handleIndex(w http.ResponseWriter, req *http.Request) error {
	if old := sessionID(req); old != "" {
		r.sessions.Delete(old)
	}
	a := app.New(r.backend, r.clock, r.loc, r.logger)
	a.Mount(req.Context())
	setSessionCookie(w, r.sessions.Create(a))
	return renderPage(w, a.View())
}

// GET /app renders the current session without re-mounting.
func (r *Router) handleApp(w http.ResponseWriter, req *http.Request) error {
	a, ok := r.sessions.Get(sessionID(req))
	if !ok {
		http.Redirect(w, req, "/", http.StatusSeeOther)
		return nil
	}
	return renderPage(w, a.View())
}

// GET /api/state
func (r *Router) handleState(w http.ResponseWriter, req *http.Request) error {
	a, ok := r.sessions.Get(sessionID(req))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return writeJSON(w, map[string]string{"error": "no active session"})
	}
	return writeJSON(w, a.View())
}

// POST /scan
// Form: repo_url, target_url, github_token
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request, a *app.App) error {
	if err := req.ParseForm(); err != nil {
		return badRequest{err}
	}
	a.Form.SetInputs(
		middleware.SanitizeString(req.PostForm.Get("repo_url")),
		middleware.SanitizeString(req.PostForm.Get("target_url")),
		middleware.SanitizeString(req.PostForm.Get("github_token")),
	)

	err := a.Form.Submit(req.Context())
	var vErr *scanform.ValidationError
	switch {
	case err == nil:
		middleware.IncrementScansTriggered()
	case errors.As(err, &vErr):
		middleware.IncrementScansRejected()
	case errors.Is(err, scanform.ErrSubmitInFlight):
	default:
		middleware.IncrementScanTriggerFailed()
		r.logger.Warn("trigger scan failed", "error", err)
	}
	return nil
}

// POST /settings/webhook-secret
// Form: webhook_secret
func (r *Router) handleSaveWebhookSecret(w http.ResponseWriter, req *http.Request, a *app.App) error {
	if err := req.ParseForm(); err != nil {
		return badRequest{err}
	}
	a.Form.SetWebhookSecret(middleware.SanitizeString(req.PostForm.Get("webhook_secret")))
	if err := a.Form.SaveWebhookSecret(req.Context()); err != nil {
		r.logger.Warn("save webhook secret failed", "error", err)
	}
	return nil
}

// POST /settings/toggle
func (r *Router) handleToggleSettings(w http.ResponseWriter, req *http.Request, a *app.App) error {
	a.Form.ToggleSettings()
	return nil
}

// POST /scans/refresh
func (r *Router) handleRefresh(w http.ResponseWriter, req *http.Request, a *app.App) error {
	_ = a.Dashboard.Refresh(req.Context())
	return nil
}

// POST /scans/{id}/tokens
func (r *Router) handleOpenTokens(w http.ResponseWriter, req *http.Request, a *app.App) error {
	id, err := middleware.ParseScanID(chi.URLParam(req, "id"))
	if err != nil {
		return badRequest{err}
	}
	middleware.IncrementTokenModalOpens()
	a.Dashboard.OpenTokenModal(req.Context(), scans.ScanID(id))
	return nil
}

// POST /scans/tokens/close
func (r *Router) handleCloseTokens(w http.ResponseWriter, req *http.Request, a *app.App) error {
	a.Dashboard.CloseModal()
	return nil
}
