package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"epaperadmin/internal/app"
	"epaperadmin/internal/config"
	"epaperadmin/internal/ingest"
	"epaperadmin/internal/ratelimit"
	"epaperadmin/internal/server"
	"epaperadmin/internal/util"
	"epaperadmin/pkg/storage"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	appCore, err := app.New(app.Config{
		Driver:        cfg.Driver,
		DatabaseURL:   cfg.DatabaseURL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		SessionTTL:    sessionTTL,
		JWTSecret:     cfg.JWTSecret,
		StoragePath:   cfg.StoragePath,
		Objects:       newObjectStore(cfg, logger),
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.LoginRateLimitPerMinute > 0 && cfg.RedisAddr != "" {
		limiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "", cfg.LoginRateLimitPerMinute, time.Minute)
		if err != nil {
			log.Fatalf("failed to init login rate limiter: %v", err)
		}
	}

	var proxies *util.TrustedProxies
	if cfg.TrustedProxyCIDRs != "" {
		proxies, err = util.NewTrustedProxies(strings.Split(cfg.TrustedProxyCIDRs, ","))
		if err != nil {
			log.Fatalf("failed to parse trusted proxies: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AMQPURL != "" {
		consumer, err := ingest.NewConsumer(cfg.AMQPURL, cfg.AMQPQueue, appCore, cfg.StoragePath, logger)
		if err != nil {
			log.Fatalf("failed to init upload consumer: %v", err)
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("upload consumer stopped", "err", err)
			}
		}()
	}

	httpServer := server.New(server.Config{
		App:          appCore,
		LoginLimiter: limiter,
		Proxies:      proxies,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("admin server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}

func newObjectStore(cfg config.FileConfig, logger *slog.Logger) storage.ObjectStore {
	if cfg.MinioEndpoint == "" {
		return nil
	}
	objects, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("failed to init object store: %v", err)
	}
	logger.Info("object store configured", "endpoint", cfg.MinioEndpoint, "bucket", cfg.MinioBucket)
	return objects
}
