// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/barkbase/opsdash/internal/audit"
	auditpostgres "github.com/barkbase/opsdash/internal/audit/postgres"
	"github.com/barkbase/opsdash/internal/config"
	"github.com/barkbase/opsdash/internal/directory"
	directorypostgres "github.com/barkbase/opsdash/internal/directory/postgres"
	"github.com/barkbase/opsdash/internal/incidents"
	incidentspostgres "github.com/barkbase/opsdash/internal/incidents/postgres"
	"github.com/barkbase/opsdash/internal/pkg/auth"
	"github.com/barkbase/opsdash/internal/pkg/httputil"
	"github.com/barkbase/opsdash/internal/pkg/metrics"
	"github.com/barkbase/opsdash/internal/pkg/postgres"
	"github.com/barkbase/opsdash/internal/status"
	"github.com/barkbase/opsdash/internal/version"
	"github.com/barkbase/opsdash/migrations"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	opsDB         *pgxpool.Pool
	barkbaseDB    *pgxpool.Pool
	server        *http.Server
	metricsServer *http.Server
	metricsCancel context.CancelFunc
}

// New creates a new application instance: connects both database pools,
// migrates the ops schema and builds the router.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)
	slog.SetDefault(logger)

	opsDB, err := connectPool(cfg.OpsDB, "ops")
	if err != nil {
		return nil, err
	}

	if err := postgres.Migrate(cfg.OpsDB.URL, migrations.FS, "."); err != nil {
		opsDB.Close()
		return nil, fmt.Errorf("migrate ops database: %w", err)
	}

	barkbaseDB, err := connectPool(cfg.BarkbaseDB, "barkbase")
	if err != nil {
		opsDB.Close()
		return nil, err
	}

	metricsCtx, metricsCancel := context.WithCancel(context.Background())

	app := &App{
		config:        cfg,
		logger:        logger,
		opsDB:         opsDB,
		barkbaseDB:    barkbaseDB,
		metricsCancel: metricsCancel,
	}

	go app.collectDBMetrics(metricsCtx)

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           app.setupRouter(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

func connectPool(cfg config.DatabaseConfig, name string) (*pgxpool.Pool, error) {
	connectCtx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	pool, err := postgres.Connect(connectCtx, name, postgres.Config{
		URL:             cfg.URL,
		MaxOpenConns:    cfg.MaxOpenConns,
		MinIdleConns:    cfg.MinIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnectAttempts: cfg.ConnectAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s database: %w", name, err)
	}
	return pool, nil
}

// Run starts the HTTP servers.
func (a *App) Run() error {
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.metricsCancel()

	// Shutdown both servers in parallel
	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	a.opsDB.Close()
	a.barkbaseDB.Close()

	return errors.Join(errs...)
}

func (a *App) collectDBMetrics(ctx context.Context) {
	// Collect immediately on start
	metrics.RecordDBPoolMetrics("ops", a.opsDB)
	metrics.RecordDBPoolMetrics("barkbase", a.barkbaseDB)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics.RecordDBPoolMetrics("ops", a.opsDB)
			metrics.RecordDBPoolMetrics("barkbase", a.barkbaseDB)
		case <-ctx.Done():
			return
		}
	}
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

func (a *App) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.Error(w, http.StatusNotFound, "not found")
	})

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	auditRecorder := audit.NewService(auditpostgres.NewRepository(a.opsDB))

	incidentsRepo := incidentspostgres.NewRepository(a.opsDB)
	incidentsService := incidents.NewService(incidentsRepo, auditRecorder)
	incidentsHandler := incidents.NewHandler(incidentsService)

	directoryRepo := directorypostgres.NewRepository(a.barkbaseDB)
	directoryService := directory.NewService(directoryRepo)
	directoryHandler := directory.NewHandler(directoryService, auditRecorder)

	// The aggregator reads incidents through the same store the admin
	// API writes to; its result is derived per request, never cached.
	statusService := status.NewService(incidentsRepo)
	statusHandler := status.NewHandler(statusService)

	verifier := auth.NewVerifier(auth.Config{SecretKey: a.config.Auth.SecretKey})

	r.Route("/admin", func(r chi.Router) {
		r.Use(httputil.AuthMiddleware(verifier))

		directoryHandler.RegisterRoutes(r)
		incidentsHandler.RegisterRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(httputil.RateLimitMiddleware(a.config.RateLimit.RPS, a.config.RateLimit.Burst))
		statusHandler.RegisterRoutes(r)
	})

	return r
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.opsDB.Ping(ctx); err != nil {
		httputil.Text(w, http.StatusServiceUnavailable, "ops database unavailable")
		return
	}
	if err := a.barkbaseDB.Ping(ctx); err != nil {
		httputil.Text(w, http.StatusServiceUnavailable, "barkbase database unavailable")
		return
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
