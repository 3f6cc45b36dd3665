package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tablekeep/config"
	"tablekeep/config/database"
	"tablekeep/internal/image/mediahost"
	imageService "tablekeep/internal/image/service"
	tableService "tablekeep/internal/table/service"
	"tablekeep/pkg/logger"
	"tablekeep/router"
	"tablekeep/socket"
	"tablekeep/store"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	defer logger.Log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs, closeStore := openStore(ctx, cfg)
	defer closeStore()

	host := mediahost.NewCloudinary(cfg.Media.BaseURL, cfg.Media.CloudName, cfg.Media.UploadPreset, cfg.Media.Folder)
	if missing := host.Missing(); len(missing) > 0 {
		logger.Sugar.Warnf("Image uploads disabled until configured: %v", missing)
	}

	tables := tableService.NewTableService(docs)
	images := imageService.NewImageService(docs, host, cfg.ImageListID)

	hub := socket.NewHub()
	go hub.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Setup(router.Options{JWTSecret: cfg.JWTSecret, CORSOrigins: cfg.CORSOrigins}, tables, images, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownOnCancel(ctx, srv, 10*time.Second)

	logger.Sugar.Infof("Backend listening on :%s (store: %s)", cfg.Port, cfg.StoreBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Sugar.Fatalf("Server failed: %v", err)
	}
}

// shutdownOnCancel stops srv once ctx is done, allowing in-flight requests
// up to timeout. The shutdown result is delivered on the returned channel.
func shutdownOnCancel(ctx context.Context, srv *http.Server, timeout time.Duration) <-chan error {
	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if err != nil {
			logger.Sugar.Errorf("Server shutdown failed: %v", err)
		}
		done <- err
	}()
	return done
}

func openStore(ctx context.Context, cfg config.Config) (store.Client, func()) {
	if cfg.StoreBackend == config.BackendMemory {
		logger.Sugar.Warn("Using in-memory document store; data is lost on restart")
		return store.NewMemory(), func() {}
	}

	db, err := database.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Sugar.Fatalf("Could not connect to database: %v", err)
	}
	pg := store.NewPostgres(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		logger.Sugar.Fatalf("Could not prepare documents table: %v", err)
	}
	return pg, func() { db.Close() }
}
