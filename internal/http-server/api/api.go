package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"evtickets/internal/config"
	handlerErrors "evtickets/internal/http-server/handlers/errors"
	"evtickets/internal/http-server/handlers/event"
	"evtickets/internal/http-server/handlers/health"
	"evtickets/internal/http-server/handlers/profile"
	"evtickets/internal/http-server/handlers/ticket"
	"evtickets/internal/http-server/middleware/authenticate"
	"evtickets/internal/http-server/middleware/requests"
	"evtickets/internal/http-server/middleware/timeout"
	"evtickets/internal/metrics"
	"evtickets/lib/sl"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	ticket.Core
	event.Core
	profile.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler, m *metrics.Metrics) *Server {
	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := NewRouter(conf.TimeoutSec, log, handler, m)

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:      router,
		ErrorLog:     httpLog,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &server
}

// NewRouter builds the route tree. Verification and health are public, the rest needs a bearer token.
func NewRouter(timeoutSec int, log *slog.Logger, handler Handler, m *metrics.Metrics) http.Handler {
	router := chi.NewRouter()
	router.Use(timeout.Timeout(timeoutSec))
	router.Use(middleware.RequestID)
	router.Use(requests.New(log, m))
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(handlerErrors.NotFound(log))
	router.MethodNotAllowed(handlerErrors.NotAllowed(log))

	router.Get("/health", health.Live(log))
	router.Handle("/metrics", m.Handler())

	router.Route("/v1", func(rootApi chi.Router) {
		rootApi.Post("/tickets/verify", ticket.Verify(log, handler))

		rootApi.Group(func(secured chi.Router) {
			secured.Use(authenticate.New(log, handler))

			secured.Post("/tickets", ticket.Issue(log, handler))
			secured.Get("/tickets/mine", ticket.Mine(log, handler))
			secured.Get("/tickets/{id}", ticket.Detail(log, handler))

			secured.Post("/events", event.Create(log, handler))
			secured.Get("/events", event.List(log, handler))
			secured.Get("/events/mine", event.Mine(log, handler))
			secured.Get("/events/{id}", event.Detail(log, handler))
			secured.Get("/events/{id}/tickets", ticket.ByEvent(log, handler))

			secured.Get("/profile", profile.Get(log, handler))
			secured.Put("/profile", profile.Save(log, handler))
			secured.Post("/profile/switch", profile.Switch(log, handler))
		})
	})

	return router
}

// Start listens on the configured address and serves until Shutdown is called.
func (s *Server) Start() error {
	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIp, s.conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	s.log.Info("starting api server", slog.String("address", serverAddress))

	err = s.httpServer.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down api server")
	return s.httpServer.Shutdown(ctx)
}
