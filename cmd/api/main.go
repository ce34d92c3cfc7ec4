// Package main is the entrypoint for the Platebook API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/platebook/platebook/internal/auth"
	"github.com/platebook/platebook/internal/cache"
	"github.com/platebook/platebook/internal/config"
	"github.com/platebook/platebook/internal/handler"
	"github.com/platebook/platebook/internal/metrics"
	"github.com/platebook/platebook/internal/middleware"
	"github.com/platebook/platebook/internal/news"
	"github.com/platebook/platebook/internal/repository"
	"github.com/platebook/platebook/internal/server"
	"github.com/platebook/platebook/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Parse access guard rules up front; a malformed rule is a startup error,
	// not something to discover on the first request.
	rules, err := cfg.GetProtectedPathRules()
	if err != nil {
		logger.Error("invalid PROTECTED_PATHS", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize session store
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Session issuer holds the signing secret; the secret itself never
	// appears in logs or responses.
	issuer, err := auth.NewSessionIssuer(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		logger.Error("failed to initialize session issuer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Metrics
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheus(promRegistry)

	// Initialize services
	authService := service.NewAuthService(repo, issuer, cacheClient, recorder)
	recipeService := service.NewRecipeService(repo, recorder, true)
	newsClient := news.NewClient(cfg.NewsAPIURL, cfg.NewsAPIKey)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(authService, logger, cfg.IsProduction())
	recipeHandler := handler.NewRecipeHandler(recipeService, logger)
	newsHandler := handler.NewNewsHandler(newsClient, logger, recorder)
	dashboardHandler := handler.NewDashboardHandler(recipeService, logger)

	// Setup router
	r := setupRouter(routerDeps{
		base:      h,
		health:    healthHandler,
		auth:      authHandler,
		recipes:   recipeHandler,
		news:      newsHandler,
		dashboard: dashboardHandler,
		issuer:    issuer,
		cache:     cacheClient,
		rules:     rules,
		recorder:  recorder,
		registry:  promRegistry,
		cfg:       cfg,
		logger:    logger,
	})

	// Create and run server
	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     cfg.IdleTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Connections close in reverse order once in-flight requests drain.
	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(ctx context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"session_ttl", cfg.SessionTTL.String(),
		"protected_rules", len(rules),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	base      *handler.Handler
	health    *handler.HealthHandler
	auth      *handler.AuthHandler
	recipes   *handler.RecipeHandler
	news      *handler.NewsHandler
	dashboard *handler.DashboardHandler
	issuer    *auth.SessionIssuer
	cache     *cache.Cache
	rules     []config.PathRule
	recorder  metrics.Recorder
	registry  *prometheus.Registry
	cfg       *config.Config
	logger    *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security())
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	// Access guard. Runs on every request; rules decide which paths it
	// actually gates.
	r.Use(middleware.Guard(middleware.GuardConfig{
		Logger:     deps.logger,
		Verifier:   deps.issuer,
		Sessions:   deps.cache,
		Rules:      deps.rules,
		SignInPath: deps.cfg.SignInPath,
		Metrics:    deps.recorder,
	}))

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Method("GET", "/metrics", promhttp.HandlerFor(deps.registry, promhttp.HandlerOpts{}))

	// Root info endpoint
	r.Get("/", deps.base.Root)

	// Browser-facing pages
	r.Get("/signin", deps.dashboard.SignIn)
	r.Get("/dashboard", deps.dashboard.Dashboard)

	loginRateLimit := middleware.LoginRateLimit(middleware.LoginRateLimitConfig{
		Logger:      deps.logger,
		Limiter:     deps.cache,
		Enabled:     deps.cfg.LoginRateLimitEnabled,
		MaxAttempts: deps.cfg.LoginRateLimitMax,
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.With(loginRateLimit).Post("/auth/login", deps.auth.Login)
		r.Post("/auth/logout", deps.auth.Logout)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", deps.recipes.List)
			r.Post("/", deps.recipes.Create)
			r.Get("/{id}", deps.recipes.Get)
			r.Put("/{id}", deps.recipes.Update)
			r.Delete("/{id}", deps.recipes.Delete)
		})

		r.Get("/news", deps.news.Search)
	})

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// redactURL strips credentials from a connection URL before logging.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// sanitizeError removes secret material from an error message.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
