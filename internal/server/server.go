// Package server provides the HTTP API for Chronex.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/xaenox/chronex/internal/assistant"
	"github.com/xaenox/chronex/internal/images"
	"github.com/xaenox/chronex/internal/library"
	"github.com/xaenox/chronex/internal/metrics"
	"github.com/xaenox/chronex/internal/provider"
	"github.com/xaenox/chronex/internal/responder"
	"github.com/xaenox/chronex/pkg/config"
	"go.uber.org/zap"
)

const requestTimeout = 60 * time.Second

// Deps are the components the API exposes.
type Deps struct {
	Assistant *assistant.Assistant
	Library   *library.Library
	Images    *images.Store
	Gateway   *provider.Gateway
	Settings  *config.Settings
	Metrics   *metrics.Metrics
}

// Server is the HTTP server for the Chronex API.
type Server struct {
	Deps
	config *config.ServerConfig
	logger *zap.Logger
	router chi.Router
	server *http.Server
}

func NewServer(deps Deps, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	s := &Server{
		Deps:   deps,
		config: cfg,
		logger: logger,
	}
	s.router = s.routes()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.SetHeader("Access-Control-Allow-Origin", "*"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler())
	}

	r.Route("/ai", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Post("/analyze-code", s.handleAnalyzeCode)
		r.Post("/solve-math", s.handleSolveMath)
		r.Post("/advanced-help", s.handleFamily(responder.FamilyAdvanced, "advanced"))
		r.Post("/data-science", s.handleFamily(responder.FamilyDataScience, "data-science"))
		r.Post("/web-dev", s.handleFamily(responder.FamilyWebDev, "web-dev"))
		r.Post("/greeting", s.handleFamily(responder.FamilyGreeting, "greeting"))
		r.Post("/creator-query", s.handleFamily(responder.FamilyCreator, "creator"))
		r.Post("/status-check", s.handleFamily(responder.FamilyStatus, "status"))
		r.Post("/image-help", s.handleFamily(responder.FamilyImage, "image"))
		r.Post("/ask", s.handleFamily(responder.FamilyQuestion, "question"))
		r.Post("/general", s.handleFamily(responder.FamilyGeneral, "general"))
		r.Post("/reset", s.handleReset)

		r.Get("/capabilities", s.handleCapabilities)
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/model-info", s.handleModelInfo)
		r.Get("/creator", s.handleCreator)
		r.Get("/providers", s.handleProviders)

		r.Get("/creator-info", s.handleCreatorInfo)
		r.Route("/creator-library", func(r chi.Router) {
			r.Get("/", s.handleLibraryExport)
			r.Get("/query-history", s.handleQueryHistory)
			r.Post("/store", s.handleLibraryStore)
			r.Get("/retrieve/{key}", s.handleLibraryRetrieve)
			r.Post("/clear-history", s.handleClearHistory)
		})

		r.Get("/config", s.handleGetConfig)
		r.Post("/config/update", s.handleUpdateConfig)

		r.Post("/upload-image", s.handleUploadImage)
		r.Post("/analyze-image", s.handleAnalyzeImage)
		r.Post("/scan-image", s.handleScanImage)
		r.Post("/image-vision", s.handleImageVision)
		r.Get("/image-list", s.handleImageList)
		r.Delete("/image-delete/{filename}", s.handleImageDelete)
	})

	return r
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("Starting Chronex AI server",
		zap.String("addr", s.server.Addr),
		zap.Bool("debug", s.config.Debug),
		zap.String("model", assistant.ModelName))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// requestLogger logs every request and records it in the metrics.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		s.Metrics.InFlight(1)
		defer s.Metrics.InFlight(-1)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		s.Metrics.RecordHTTPRequest(r.Method, route, status, duration)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
