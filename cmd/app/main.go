package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/gomodule/redigo/redis"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"guestlink/internal/config"
	"guestlink/internal/handler"
	"guestlink/internal/i18n"
	"guestlink/internal/interstitial"
	"guestlink/internal/repository"
	"guestlink/internal/service"
	"guestlink/pkg/logging"
)

func startServer(cfg *config.Config, r *gin.Engine, logger *zap.Logger) {
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Server is running on " + cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
}

func shutdown(logger *zap.Logger, db *gorm.DB, pool *redis.Pool, scheduler *cron.Cron) {
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if pool != nil {
		if err := pool.Close(); err != nil {
			logger.Warn("Redis pool close failed", zap.Error(err))
		}
	}
	if err := repository.CloseDB(db); err != nil {
		logger.Warn("Database close failed", zap.Error(err))
	}
	logger.Info("Server exiting")
	_ = logger.Sync()
}

func main() {
	configPath := flag.String("config", ".", "config file, or directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, atomicLevel, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.Info("Application started")

	db, err := repository.OpenDB(cfg.DB, logger, logging.ToGormLogLevel(atomicLevel.Level()))
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	pool := repository.NewRedisPool(cfg.Redis, logger)

	translator, err := i18n.New(cfg.I18n.DefaultLanguage)
	if err != nil {
		logger.Fatal("Failed to initialize i18n", zap.Error(err))
	}

	store := repository.NewGormLinkStore(db)
	cache := repository.NewLinkCache(pool, cfg.Redis.CacheTTL, cfg.Redis.NegativeTTL, logger)
	fetcher := service.NewMetadataFetcher(cfg.Metadata, logger)
	links := service.NewLinkService(store, cache, fetcher, logger,
		service.WithMaxAttempts(cfg.Shortener.MaxCodeAttempts))

	gin.SetMode(cfg.Server.Mode)
	r, err := handler.NewRouter(handler.RouterConfig{
		Links:      links,
		Translator: translator,
		Logger:     logger,
		BaseURL:    cfg.App.BaseURL,
		Timings:    interstitial.DefaultTimings,
		Ready: func(ctx context.Context) error {
			return repository.PingDB(ctx, db)
		},
	})
	if err != nil {
		logger.Fatal("Failed to build router", zap.Error(err))
	}

	var scheduler *cron.Cron
	if job := cfg.Jobs.MetadataBackfill; job.Enabled {
		scheduler = cron.New()
		backfill := service.NewBackfillService(store, fetcher, logger, job.BatchSize)
		if _, err := backfill.Schedule(scheduler, job.Spec); err != nil {
			logger.Fatal("Failed to schedule cron job", zap.Error(err))
		}
		scheduler.Start()
		logger.Info("Metadata backfill scheduled", zap.String("spec", job.Spec))
	}

	startServer(cfg, r, logger)
	shutdown(logger, db, pool, scheduler)
}
