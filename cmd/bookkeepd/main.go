package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"bookkeep/internal/amqp"
	appcache "bookkeep/internal/cache"
	"bookkeep/internal/config"
	apphttp "bookkeep/internal/http"
	applog "bookkeep/internal/log"
	"bookkeep/internal/services"
	"bookkeep/internal/stats"
	"bookkeep/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.WithComponent(applog.ComponentStorage).
			Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpLog := logger.WithComponent(applog.ComponentAMQP)
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Change events are best-effort; run without them.
			amqpLog.Warn("AMQP unavailable, change events disabled", "error", err)
		} else {
			amqpLog.Info("AMQP change events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	service := services.NewTransactionService(repo, amqpClient)
	defer service.Close()

	engine := stats.NewEngine(repo.DB())

	statsCache := appcache.NewLRUCache[[]byte](cfg.StatsCacheSize, cfg.StatsCacheTTL)
	cacheManager := appcache.NewManager()
	cacheManager.Register(statsCache)
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()
	logger.WithComponent(applog.ComponentCache).
		Info("Stats cache enabled", "size", cfg.StatsCacheSize, "ttl", cfg.StatsCacheTTL)

	server := apphttp.New(apphttp.Options{
		Repo:           repo,
		Service:        service,
		Engine:         engine,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		StatsCache:     statsCache,
	})
	srv := apphttp.NewHTTPServer(":"+cfg.Port, server.Handler())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpLog := logger.WithComponent(applog.ComponentHTTP)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		httpLog.Info("Starting bookkeep server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		httpLog.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
