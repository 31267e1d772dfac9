package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/jaminalder/morabaraba/internal/app"
)

// DefaultHeartbeat is the SSE keep-alive interval used by NewServer.
const DefaultHeartbeat = 15 * time.Second

// Options configures the HTTP server.
type Options struct {
	Logger    zerolog.Logger
	Heartbeat time.Duration
}

// NewServer wires routes and returns an http.Handler.
func NewServer(s *app.Service) http.Handler {
	return NewServerWithOptions(s, Options{Logger: zerolog.Nop()})
}

// NewServerWithOptions wires routes with request logging and the given
// heartbeat. It installs the board renderer used for broadcasts on s.
func NewServerWithOptions(s *app.Service, opts Options) http.Handler {
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = DefaultHeartbeat
	}
	h := &handlers{svc: s, tpl: loadTemplates(), heartbeat: opts.Heartbeat, log: opts.Logger}
	s.SetRenderer(h.broadcastBoard)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	}))

	r.Get("/", h.index)
	r.Get("/topology", h.topology)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Get("/state", h.state)
		r.Post("/select", h.selectPosition)
		r.Post("/reset", h.reset)
		r.Get("/events", h.events)
	})
	return r
}
