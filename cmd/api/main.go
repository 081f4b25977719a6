package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"

	_ "github.com/ghuser/todoapp/docs/swagger"
	"github.com/ghuser/todoapp/pkg/antiforgery"
	"github.com/ghuser/todoapp/pkg/app"
	"github.com/ghuser/todoapp/pkg/cache"
	"github.com/ghuser/todoapp/pkg/config"
	"github.com/ghuser/todoapp/pkg/database"
	"github.com/ghuser/todoapp/pkg/events"
	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
	"github.com/ghuser/todoapp/pkg/session"
	"github.com/ghuser/todoapp/pkg/telemetry"
	appsvcs "github.com/ghuser/todoapp/services/todo/application/services"
)

// @title			Todo API
// @version		1.0
// @description	Create, list, complete and delete to-do items. Mutating requests require an anti-forgery token.
// @license.name	MIT
// @license.url	https://opensource.org/licenses/MIT
// @host			localhost:8080
// @BasePath		/api
// @schemes		http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry: OTel tracing + metrics
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	// Crash reporting: Sentry (optional; log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	appConfig := &app.Application{Logger: log}
	checks := httpx.HealthChecks{}

	if cfg.StoreBackend == config.StorePostgres {
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
		}
		defer pool.Close() //nolint:errcheck
		log.Info("database pool connected")

		eventBus, err := events.NewEventBus(pool.DB(), log, events.Options{
			ConsumerGroup: cfg.ServiceName,
			Forwarder:     true,
		})
		if err != nil {
			log.Error("failed to setup event bus", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer eventBus.Close() //nolint:errcheck

		if err := eventBus.StartForwarder(ctx); err != nil {
			log.Error("failed to start event forwarder", "error", err)
			os.Exit(1) //nolint:gocritic
		}

		appConfig.Db = pool
		appConfig.EventBus = eventBus
		checks["database"] = pool
		checks["event_bus"] = eventBus
	}

	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL, cache.ClientAPI)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure
		}
		defer redisClient.Close() //nolint:errcheck
		log.Info("redis connected")

		appConfig.Redis = redisClient
		checks["redis"] = redisClient
	}

	appConfig.SessionStore = newSessionStore(cfg, appConfig.Redis)

	guard, err := antiforgery.New(antiforgery.Options{
		HashKey:  []byte(cfg.AntiforgeryHashKey),
		BlockKey: []byte(cfg.AntiforgeryBlockKey),
		Secret:   []byte(cfg.AntiforgerySecret),
		Secure:   cfg.IsProduction(),
	})
	if err != nil {
		log.Error("failed to setup antiforgery", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	appConfig.Antiforgery = guard

	svcs := appsvcs.New(appConfig)
	checks["store"] = svcs.Store
	log.Info("todo store initialized", "backend", cfg.StoreBackend)

	srv := httpx.NewServer(cfg.HTTPAddr, newRouter(cfg, appConfig, svcs, metricsHandler, checks))

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	cancel()
	log.Info("server stopped")
}

// newSessionStore keeps flash sessions in Redis when it is configured and in
// encrypted cookies otherwise.
func newSessionStore(cfg *config.Config, rc *cache.RedisClient) sessions.Store {
	var client *redis.Client
	if rc != nil {
		client = rc.Client()
	}
	return session.NewStore(client, []byte(cfg.SessionAuthKey), []byte(cfg.SessionEncryptionKey), cfg.IsProduction())
}
