package server

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webtop/internal/api/http"
	"github.com/GriffinCanCode/webtop/internal/api/middleware"
	"github.com/GriffinCanCode/webtop/internal/api/ws"
	"github.com/GriffinCanCode/webtop/internal/domain/registry"
	"github.com/GriffinCanCode/webtop/internal/domain/session"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/config"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/tracing"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP server
const ShutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	core     *Core
	sessions *session.Manager
	handlers *http.Handlers
	watcher  *registry.Watcher
	tracer   *tracing.Tracer
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics

	closeOnce sync.Once
}

// NewLogger builds the logger described by cfg
func NewLogger(cfg config.LogConfig) *logging.Logger {
	logCfg := logging.DefaultConfig()
	if cfg.Development {
		logCfg = logging.DevelopmentConfig()
	}
	if cfg.Level != "" {
		logCfg.Level = cfg.Level
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return logging.NewDefault()
	}
	return logger
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger := NewLogger(cfg.Logging)

	logger.Info("Initializing webtop server",
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Path),
		zap.String("apps_dir", cfg.Apps.Dir),
	)

	reg := monitoring.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	tracer := tracing.New("webtop", logger.Component("tracing"))

	core, err := NewCore(cfg, logger.Logger, metrics)
	if err != nil {
		tracer.Close()
		return nil, err
	}

	sessions := session.NewManager(core.Windows, core.Store, logger.Component("session"))

	var watcher *registry.Watcher
	if cfg.Apps.Watch {
		watcher, err = registry.NewWatcher(core.Seeder, 0, logger.Component("watcher"))
		if err != nil {
			logger.Warn("Manifest watcher disabled", zap.Error(err))
			watcher = nil
		}
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig().WithOrigins(cfg.Server.CORSOrigins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		limit := middleware.DefaultRateLimitConfig()
		limit.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limit.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(limit))
	}

	handlers := http.NewHandlers(http.Options{
		Windows:  core.Windows,
		Viewport: core.Viewport,
		Sessions: sessions,
		Store:    core.Store,
		Metrics:  metrics,
		Tracer:   tracer,
		Logger:   logger.Component("http"),
	})
	wsHandler := ws.NewHandler(ws.Options{
		Windows:  core.Windows,
		Viewport: core.Viewport,
		Metrics:  metrics,
		Tracer:   tracer,
		Logger:   logger.Component("ws"),
	})

	handlers.RegisterRoutes(router)
	router.GET("/stream", wsHandler.HandleConnection)
	router.GET("/metrics", monitoring.Handler(reg))

	logger.Info("Server initialized successfully",
		zap.Int("apps", core.Registry.Len()),
		zap.Int("windows", len(core.Windows.Windows())))

	return &Server{
		router:   router,
		core:     core,
		sessions: sessions,
		handlers: handlers,
		watcher:  watcher,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Router exposes the configured router
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Core exposes the window manager and its dependencies
func (s *Server) Core() *Core {
	return s.core
}

// Run serves HTTP until ctx is done, then shuts down gracefully. The
// manifest watcher runs alongside when enabled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if s.watcher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.watcher.Run(ctx); err != nil {
				s.logger.Warn("Manifest watcher stopped with error", zap.Error(err))
			}
		}()
	}
	defer wg.Wait()

	addr := s.config.Server.Host + ":" + s.config.Server.Port
	srv := &nethttp.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.logger.Info("Shutting down server...")

		s.handlers.Close()
		s.tracer.Close()

		if cerr := s.core.Close(); cerr != nil {
			s.logger.Error("Failed to close store", zap.Error(cerr))
			err = cerr
		} else {
			s.logger.Info("State flushed")
		}

		s.logger.Sync()
	})
	return err
}
