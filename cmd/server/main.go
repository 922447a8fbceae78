package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/1karan0/chatAdmin/internal/app"
	"github.com/1karan0/chatAdmin/internal/chatclient"
	"github.com/1karan0/chatAdmin/internal/config"
	"github.com/1karan0/chatAdmin/internal/ingest"
	"github.com/1karan0/chatAdmin/internal/ratelimit"
	"github.com/1karan0/chatAdmin/internal/server"
	"github.com/1karan0/chatAdmin/internal/util"
	"github.com/1karan0/chatAdmin/pkg/storage"
	"github.com/1karan0/chatAdmin/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)
	sessionTTL, err := time.ParseDuration(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session ttl: %v", err)
	}
	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		log.Fatalf("failed to parse trusted proxy cidrs: %v", err)
	}

	st, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	var sessions store.SessionStore
	if cfg.SessionBackend == "redis" {
		sessions = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, sessionTTL)
	} else {
		sessions = store.NewJWTSessionStore(cfg.JWTSecret, sessionTTL)
	}
	backend := chatclient.NewClient(cfg.ChatBackendURL, cfg.InternalSecret)
	objects, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("failed to init object store: %v", err)
	}
	queue, err := ingest.NewQueue(ingest.QueueConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatalf("failed to init ingest queue: %v", err)
	}
	embedLimiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword,
		"", cfg.EmbedRateLimitPerMinute, time.Minute)
	if err != nil {
		log.Fatalf("failed to init rate limiter: %v", err)
	}

	appCore := app.New(st, objects, queue, backend, logger)
	worker := ingest.NewWorker(st, objects, backend, logger)
	queue.Start(context.Background(), cfg.IngestConcurrency, worker.Handle)

	httpServer := server.New(server.Config{
		App:               appCore,
		Sessions:          sessions,
		EmbedLimiter:      embedLimiter,
		TrustedProxies:    trustedProxies,
		InternalSecret:    cfg.InternalSecret,
		ChatBackendURL:    cfg.ChatBackendURL,
		WidgetCacheMaxAge: cfg.WidgetCacheMaxAgeSeconds,
		MaxUploadBytes:    cfg.MaxUploadBytes,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("chatadmin server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
