package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mario1918/testCaseGenie-NG/common/id"
	"github.com/mario1918/testCaseGenie-NG/common/llm"
	"github.com/mario1918/testCaseGenie-NG/common/logger"
	"github.com/mario1918/testCaseGenie-NG/common/otel"
	"github.com/mario1918/testCaseGenie-NG/core/config"
	"github.com/mario1918/testCaseGenie-NG/core/db"
	"github.com/mario1918/testCaseGenie-NG/internal/http/middleware"
	httprouter "github.com/mario1918/testCaseGenie-NG/internal/http/router"
	"github.com/mario1918/testCaseGenie-NG/internal/service"
	"github.com/mario1918/testCaseGenie-NG/internal/store"
)

// Issue id counters expire after a week without generations.
const sequenceTTL = 7 * 24 * time.Hour

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "relay starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	storesCfg := store.StoresConfig{
		RedisPrefix: cfg.Redis.KeyPrefix,
		SequenceTTL: sequenceTTL,
	}

	if cfg.DB.Enabled() {
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer database.Close()

		err = database.WithTx(ctx, func(tx pgx.Tx) error {
			return store.EnsureSchema(ctx, tx)
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to prepare generation log schema", "error", err)
			os.Exit(1)
		}
		storesCfg.DB = database
		slog.InfoContext(ctx, "database connected")
	} else {
		slog.InfoContext(ctx, "generation log disabled (no DATABASE_URL)")
	}

	if cfg.Redis.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}

		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		storesCfg.Redis = redisClient
		slog.InfoContext(ctx, "redis connected", "prefix", cfg.Redis.KeyPrefix)
	} else {
		slog.InfoContext(ctx, "redis disabled, test case ids are sequenced in memory")
	}

	llmClient, err := llm.New(llm.Config{
		Provider:  cfg.LLM.Provider,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create llm client", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "llm client ready", "provider", llmClient.Provider(), "model", llmClient.Model())

	services := service.NewServices(service.ServicesConfig{
		Stores: store.NewStores(storesCfg),
		LLM:    llmClient,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Generation waits on the model; the write deadline has to cover it.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	httprouter.SetupRoutes(router, services)

	return router
}

const banner = `
 _____         _    ____                  ____      _
|_   _|__  ___| |_ / ___| ___ _ __  _   _|  _ \ ___| | __ _ _   _
  | |/ _ \/ __| __| |  _ / _ \ '_ \| | | | |_) / _ \ |/ _' | | | |
  | |  __/\__ \ |_| |_| |  __/ | | | |_| |  _ <  __/ | (_| | |_| |
  |_|\___||___/\__|\____|\___|_| |_|\__, |_| \_\___|_|\__,_|\__, |
                                    |___/                   |___/
`
