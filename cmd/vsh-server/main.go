package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vsh/internal/server/api"
	"vsh/internal/server/config"
	"vsh/internal/server/database"
	"vsh/internal/server/service"
	"vsh/internal/server/storage"
	"vsh/internal/vfs"
)

func main() {
	// Structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg := config.Load()
	slog.Info("configuration loaded",
		"port", cfg.Port,
		"vfs_path", cfg.VFSPath,
		"image_path", cfg.ImagePath,
		"max_image_size", cfg.MaxImageSize,
		"session_ttl", cfg.SessionTTL,
	)

	// Connect to database
	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations complete")

	// Initialize image storage
	store := storage.NewFileSystemStore(cfg.ImagePath)
	if err := store.EnsureDir(); err != nil {
		slog.Error("failed to initialize image storage", "error", err)
		os.Exit(1)
	}
	slog.Info("image storage initialized", "path", cfg.ImagePath)

	// Load the default virtual filesystem
	defaultTree, err := vfs.Load(cfg.VFSPath)
	if err != nil {
		slog.Error("failed to load default vfs", "path", cfg.VFSPath, "error", err)
		os.Exit(1)
	}
	slog.Info("default vfs loaded", "path", cfg.VFSPath)

	// Initialize repository and services
	repo := database.NewRepository(db)
	images := service.NewImageService(store, cfg.MaxImageSize)
	sessions := service.NewSessionService(repo, images, defaultTree)

	// Start idle-session reaper
	reaperCtx, reaperCancel := context.WithCancel(context.Background())
	reaper := service.NewReaper(sessions, cfg.SessionTTL, cfg.ReapInterval)
	reaper.Start(reaperCtx)

	// Setup HTTP router
	handler := api.NewHandler(sessions, images, db, cfg.HistoryLimit)
	e := api.SetupRouter(handler, cfg)

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		slog.Info("starting server", "addr", addr)
		if err := e.Start(addr); err != nil {
			slog.Info("server stopped", "reason", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down", "signal", sig)

	// Stop accepting new requests, finish in-flight with 30s timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Stop reaper
	reaperCancel()
	reaper.Wait()

	slog.Info("server exited cleanly")
}
