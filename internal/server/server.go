package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/analysis"
	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/api/sse"
	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/api/ws"
	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/config"
	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/server/middleware"
	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/store/postgres"
	redisstore "github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/store/redis"
)

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	store      *postgres.Store
	pubsub     *redisstore.PubSub
	runner     *analysis.Runner
	wsHub      *ws.Hub
	cfg        *config.Config
}

// New creates a Server with all routes wired.
func New(cfg *config.Config, store *postgres.Store, pubsub *redisstore.PubSub, runner *analysis.Runner) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(middleware.ClientID())
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Client-ID", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	hub := ws.NewHub(pubsub)

	s := &Server{
		router: router,
		store:  store,
		pubsub: pubsub,
		runner: runner,
		wsHub:  hub,
		cfg:    cfg,
		httpServer: &http.Server{
			Addr:        cfg.Server.Addr,
			Handler:     router,
			ReadTimeout: cfg.Server.ReadTimeout,
			// WriteTimeout stays zero by default: the event stream holds
			// its response open for the life of a job.
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	streamHandler := sse.NewHandler(store.Jobs(), store.Events(), pubsub, redisstore.JobChannel)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT.Secret))
		r.Use(middleware.RateLimitByIP(context.Background(), 100, 200))

		// The event stream is raw chi: huma buffers response bodies,
		// which defeats server-sent events.
		r.Get("/jobs/{jobID}/events/stream", streamHandler.ServeHTTP)

		registerAPIRoutes(r, store, runner)
	})

	// WebSocket routes.
	router.Route("/ws", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT.Secret))
		registerWSRoutes(r, hub)
	})

	// Health check (unauthenticated).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
