package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"clinical-dashboard/internal/api"
	"clinical-dashboard/internal/cache"
	"clinical-dashboard/internal/classifier"
	"clinical-dashboard/internal/config"
	"clinical-dashboard/internal/dashboard"
	"clinical-dashboard/internal/db"
	"clinical-dashboard/internal/diagnostics"
	"clinical-dashboard/internal/kafka"
	"clinical-dashboard/internal/logging"
	"clinical-dashboard/internal/providers"
	"clinical-dashboard/internal/stream"
	"clinical-dashboard/internal/upstream"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := classifier.New(cfg.Thresholds)
	if err != nil {
		log.Fatalf("Invalid thresholds: %v", err)
	}

	// Diagnostics store is optional
	var store diagnostics.Store
	if cfg.DB.DSN != "" {
		dbConn, err := db.New(ctx, cfg.DB.DSN)
		if err != nil {
			logger.Errorf("Failed to connect to database: %v", err)
			log.Fatalf("Database connection failed: %v", err)
		}
		defer dbConn.Close()
		if err := dbConn.EnsureSchema(ctx); err != nil {
			log.Fatalf("Database schema setup failed: %v", err)
		}
		store = dbConn
	} else {
		logger.Warnf("DB_DSN not set, diagnostics are only logged")
	}
	recorder := diagnostics.New(logger, store)

	// Upstream API, with the roster cached in Redis when configured
	var backend upstream.API = upstream.New(upstream.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
		Retries: cfg.Upstream.Retries,
		Token:   cfg.Upstream.Token,
	}, logger)
	if cfg.Redis.Addr != "" {
		kv, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			logger.Errorf("Redis unavailable, roster cache disabled: %v", err)
		} else {
			defer kv.Close()
			backend = upstream.NewCached(backend, kv, cfg.Redis.CacheTTL, logger)
		}
	}

	// Critical alert escalation
	var escalator stream.Escalator
	if cfg.Telegram.BotToken != "" {
		tg, err := providers.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.RatePerSecond, logger)
		if err != nil {
			log.Fatalf("Failed to init Telegram escalation: %v", err)
		}
		escalator = tg
	}

	// Live alert stream
	var wg sync.WaitGroup
	svc := stream.New(logger, recorder, escalator, cfg.Stream.QueueSize, cfg.Stream.MaxWorkers)
	svc.Start(&wg)

	var consumer *kafka.Consumer
	if cfg.Kafka.Broker != "" {
		consumer = kafka.NewConsumer([]string{cfg.Kafka.Broker}, cfg.Kafka.Topic, cfg.Kafka.GroupID, svc, logger)
		logger.Infof("Kafka consumer initialized with topic: %s", cfg.Kafka.Topic)
		consumer.Start(ctx, &wg)
	}

	// Start API server
	gin.SetMode(gin.ReleaseMode)
	dash := dashboard.NewService(backend, c, recorder, logger)
	handler := api.NewHandler(dash, c, recorder, svc, logger)
	server := &http.Server{
		Addr:    cfg.API.Port,
		Handler: api.NewRouter(logger, cfg.API.BasePath, handler),
	}
	go func() {
		logger.Infof("Starting API server on %s", cfg.API.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("API server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Infof("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("API server shutdown: %v", err)
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Errorf("Kafka consumer close: %v", err)
		}
	}
	svc.Stop()
	wg.Wait()
	logger.Infof("Stopped")
}
