package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/meetingmind/logger"
	"github.com/kbukum/meetingmind/server/endpoint"
	"github.com/kbukum/meetingmind/server/middleware"
)

// Server is the HTTP host: a Gin engine mounted on a ServeMux, wrapped in
// server-level middleware and served over HTTP/1.1 and h2c on one port.
type Server struct {
	httpServer  *http.Server
	engine      *gin.Engine
	mux         *http.ServeMux
	h2s         *http2.Server
	middlewares []middleware.Middleware
	config      Config
	log         *logger.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New creates a new Server. No middleware is applied yet; call
// ApplyMiddleware before registering routes.
func New(cfg Config, log *logger.Logger) *Server {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(notFound)

	mux := http.NewServeMux()
	mux.Handle("/", engine)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
		engine: engine,
		mux:    mux,
		h2s: &http2.Server{
			MaxConcurrentStreams: 250,
			IdleTimeout:          120 * time.Second,
		},
		config: cfg,
		log:    log.WithComponent("server"),
	}
}

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Use appends server-level middleware. It wraps every request, including
// ones Gin does not route.
func (s *Server) Use(mws ...middleware.Middleware) {
	s.middlewares = append(s.middlewares, mws...)
}

// Handler returns the complete handler: server-level middleware around the
// mux, wrapped for h2c.
func (s *Server) Handler() http.Handler {
	return h2c.NewHandler(middleware.Chain(s.middlewares...)(s.mux), s.h2s)
}

// Start binds the port and begins serving. It returns once the listener is
// bound so the caller knows the port is ready; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("Starting HTTP server", logger.Fields("addr", s.httpServer.Addr))

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.httpServer.Handler = s.Handler()

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("HTTP server started", logger.Fields("addr", listener.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Server shutdown error", logger.Fields(logger.FieldError, err.Error()))
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.mu.Lock()
	s.listener = nil
	s.mu.Unlock()

	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Addr returns the bound address while serving, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Serving reports whether the listener is bound.
func (s *Server) Serving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener != nil
}

// ApplyMiddleware installs the standard stack: request id, tracing,
// request logging, panic recovery, CORS and the body-size limit at server
// level, plus
// per-route HTTP metrics on the Gin engine when obs is non-nil.
func (s *Server) ApplyMiddleware(obs middleware.HTTPObserver) {
	s.Use(
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.RequestLogger(s.log),
		middleware.Recovery(s.log),
		middleware.CORS(s.config.CORS),
	)
	if s.config.MaxBodySize != "" {
		s.Use(middleware.BodySizeLimit(s.config.MaxBodySize))
	}
	if obs != nil {
		s.engine.Use(middleware.Metrics(obs))
	}
}

// RegisterDefaultEndpoints registers /health (with /live and /ready checks),
// /info, /version and, when metrics is non-nil, /metrics.
func (s *Server) RegisterDefaultEndpoints(serviceName, environment string, checker endpoint.HealthChecker, metrics http.Handler) {
	s.engine.GET("/health", endpoint.Health(serviceName, environment, checker))
	s.engine.GET("/health/live", endpoint.Liveness(serviceName))
	s.engine.GET("/health/ready", endpoint.Readiness(serviceName, checker))
	s.engine.GET("/info", endpoint.Info(serviceName, map[string]string{
		"health":    "/health",
		"analyze":   "/api/ai/analyze",
		"summarize": "/api/ai/summarize",
	}))
	s.engine.GET("/version", endpoint.Version())
	if metrics != nil {
		s.engine.GET("/metrics", endpoint.Metrics(metrics))
	}
}

// RegisterAPI mounts the rate-limited /api group and the AI routes under
// /api/ai.
func (s *Server) RegisterAPI(serviceName string, ai *AIHandler) {
	api := s.engine.Group("/api", middleware.RateLimit(s.config.RateLimit))
	api.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": serviceName + " API",
			"endpoints": gin.H{
				"health":    "/health",
				"analyze":   "/api/ai/analyze",
				"summarize": "/api/ai/summarize",
			},
		})
	})
	ai.Register(api.Group("/ai"))
}
