package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/benvon/taskify/internal/config"
	"github.com/benvon/taskify/internal/handlers"
	"github.com/benvon/taskify/internal/identity"
	"github.com/benvon/taskify/internal/logger"
	"github.com/benvon/taskify/internal/middleware"
	"github.com/benvon/taskify/internal/storage"
	"github.com/benvon/taskify/internal/tasks"
	"github.com/benvon/taskify/internal/telemetry"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("store_backend", cfg.StoreBackend),
		zap.Int("retention_days", cfg.RetentionDays),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx := context.Background()

	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(ctx, "taskify-api", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Build the persistence substrate. The redis backend shares its client
	// with the rate limiter.
	var store storage.Store
	var redisClient *redis.Client
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		redisStore, err := storage.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisStore.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis", zap.Error(err))
			}
		}()
		store = redisStore

		opts, err := redis.ParseURL(cfg.RedisURL)
		if err == nil {
			redisClient = redis.NewClient(opts)
			defer func() {
				_ = redisClient.Close()
			}()
		}
	default:
		fileStore, err := storage.NewFileStore(cfg.StorePath)
		if err != nil {
			zapLogger.Fatal("failed_to_open_store_file", zap.Error(err))
		}
		store = fileStore
	}

	ids, err := identity.NewStore(ctx, store, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_load_users", zap.Error(err))
	}

	engine, err := tasks.NewEngine(ctx, store, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_load_tasks", zap.Error(err))
	}

	router := mux.NewRouter()
	if cfg.OTELEnabled && cfg.OTELEndpoint != "" {
		router.Use(otelmux.Middleware("taskify-api"))
	}
	router.Use(middleware.Logging(zapLogger))
	router.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	router.Use(middleware.ContentType)
	router.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))

	if redisClient != nil {
		rateLimitMW, err := middleware.RateLimit(redisClient, cfg.RatelimitRate)
		if err != nil {
			zapLogger.Fatal("failed_to_initialize_rate_limiter", zap.Error(err))
		}
		router.Use(rateLimitMW)
	}

	healthChecker := handlers.NewHealthChecker(store)
	router.HandleFunc("/health", healthChecker.HealthCheck).Methods("GET")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.Session(ids))

	authHandler := handlers.NewAuthHandler(ids)
	authHandler.RegisterRoutes(apiRouter.PathPrefix("/auth").Subrouter())

	taskHandler := handlers.NewTaskHandler(engine)
	taskHandler.RegisterRoutes(apiRouter.PathPrefix("/tasks").Subrouter())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Session-User"},
		AllowCredentials: true,
	}).Handler(router)

	// Periodic retention sweep. The engine has no timer of its own; the
	// server drives the cleanup over every known task owner.
	sweeper := cron.New()
	spec := fmt.Sprintf("@every %dm", cfg.CleanupInterval)
	_, err = sweeper.AddFunc(spec, func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		for _, userID := range engine.UserIDs(sweepCtx) {
			if _, err := engine.CleanupStale(sweepCtx, userID, cfg.RetentionDays); err != nil {
				zapLogger.Error("retention_sweep_failed",
					zap.String("user_id", userID.String()),
					zap.Error(err),
				)
			}
		}
	})
	if err != nil {
		zapLogger.Fatal("failed_to_schedule_retention_sweep", zap.Error(err))
	}
	sweeper.Start()
	defer sweeper.Stop()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      corsHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLogger.Info("server_listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("shutdown_failed", zap.Error(err))
	}
}
