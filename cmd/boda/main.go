package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"boda-web/internal/backup"
	"boda-web/internal/config"
	"boda-web/internal/kv"
	"boda-web/internal/logging"
	"boda-web/internal/server"
	"boda-web/internal/store"
)

func main() {
	// Missing .env is fine; the environment may be set by the platform.
	godotenv.Load()

	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	pool := kv.NewPool(kv.PoolConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		UseTLS:   cfg.RedisTLS,
	})
	defer pool.Close()

	kvStore := kv.NewRedis(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := kvStore.Ping(ctx); err != nil {
		cancel()
		logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}
	cancel()

	groups := buildGroupStore(cfg, kvStore, logger)
	logger.Info("storage configured", "mode", groups.Mode(), "dual_write", cfg.DualWrite)

	srv := server.New(server.Config{
		AllowedOrigin:  cfg.AllowedOrigin,
		AdminKey:       cfg.AdminKey,
		AdminKeyBcrypt: cfg.AdminKeyBcrypt,
		ImportMaxBytes: cfg.ImportMaxBytes,
		Debug:          cfg.Debug,
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  cfg.S3Endpoint,
				Bucket:    cfg.S3Bucket,
				Region:    cfg.S3Region,
				AccessKey: cfg.S3AccessKey,
				SecretKey: cfg.S3SecretKey,
			},
		},
	}, kvStore, groups, logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func buildGroupStore(cfg *config.Config, kvStore kv.Store, logger *slog.Logger) store.GroupStore {
	if cfg.StorageMode == store.ModeLegacy {
		return store.NewLegacyArrayStore(kvStore)
	}

	entity := store.NewEntityIndexedStore(kvStore)
	if cfg.DualWrite {
		return store.NewDualWriteStore(entity, logger.With("component", "dual-write"))
	}
	return entity
}
