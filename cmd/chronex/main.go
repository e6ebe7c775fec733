package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/xaenox/chronex/internal/assistant"
	"github.com/xaenox/chronex/internal/bot"
	"github.com/xaenox/chronex/internal/images"
	"github.com/xaenox/chronex/internal/library"
	"github.com/xaenox/chronex/internal/metrics"
	"github.com/xaenox/chronex/internal/provider"
	"github.com/xaenox/chronex/internal/server"
	"github.com/xaenox/chronex/internal/storage"
	"github.com/xaenox/chronex/pkg/config"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	fs := pflag.NewFlagSet("chronex", pflag.ExitOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	// Load configuration
	cfg, err := config.LoadConfig(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := newLogger(cfg.Server.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Initialize storage
	store, err := newStorage(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	lib := library.Open(ctx, store, logger, library.WithMetrics(m))

	settings := config.NewSettings(cfg.AI)
	if cfg.OverrideFile != "" {
		logger.Info("Watching config file", zap.String("path", cfg.OverrideFile))
		settings.Watch(cfg.OverrideFile, func(applied map[string]any, err error) {
			if err != nil {
				logger.Warn("Failed to reload config file", zap.Error(err))
				return
			}
			logger.Info("Config file reloaded", zap.Int("keys", len(applied)))
		})
	}

	gateway := provider.NewGateway(settings, logger, m)

	imgs, err := images.New(cfg.Images.Dir, logger,
		images.WithMaxSize(int64(cfg.Images.MaxSizeMB)<<20),
		images.WithDescriber(gateway),
		images.WithMetrics(m))
	if err != nil {
		logger.Fatal("Failed to initialize image store", zap.Error(err))
	}

	a := assistant.New(gateway, lib, logger, assistant.WithMetrics(m))

	srv := server.NewServer(server.Deps{
		Assistant: a,
		Library:   lib,
		Images:    imgs,
		Gateway:   gateway,
		Settings:  settings,
		Metrics:   m,
	}, &cfg.Server, logger)

	if cfg.Telegram.Token != "" {
		b, err := bot.New(cfg.Telegram.Token, a, imgs, logger)
		if err != nil {
			logger.Fatal("Failed to create bot", zap.Error(err))
		}
		go func() {
			if err := b.Start(ctx); err != nil {
				logger.Error("Bot error", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("Server error", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	switch cfg.Library.Backend {
	case "memory":
		logger.Info("Using in-memory library storage")
		return storage.NewMemoryStorage(), nil
	case "postgres":
		logger.Info("Using PostgreSQL library storage")
		return storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		}, logger)
	case "file", "":
		logger.Info("Using file library storage", zap.String("path", cfg.Library.Path))
		return storage.NewFileStorage(cfg.Library.Path), nil
	default:
		return nil, errors.New("unknown library backend: " + cfg.Library.Backend)
	}
}
