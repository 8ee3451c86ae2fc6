package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dreambees-be/internal/bootstrap"
	"dreambees-be/internal/config"
	"dreambees-be/internal/model"
	"dreambees-be/internal/pkg/logger"
	"dreambees-be/internal/repository/memory"
	"dreambees-be/internal/repository/unitofwork"
	"dreambees-be/internal/server"
	"dreambees-be/internal/tracer"
	"dreambees-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer func() { _ = sysLogger.Sync() }()

	// 2. Initialize Tracer (no-op unless OTEL_ENABLED)
	shutdownTracer := tracer.InitTracer(cfg.Observability)
	defer func() { _ = shutdownTracer(context.Background()) }()

	// 3. Initialize Storage
	uowFactory, err := newRepositoryFactory(cfg)
	if err != nil {
		log.Panicf("Unable to initialize %s storage: %v", cfg.Database.Driver, err)
	}
	sysLogger.Info("MAIN", "Storage ready", map[string]interface{}{"driver": cfg.Database.Driver})

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg, uowFactory, sysLogger)
	if err != nil {
		log.Panicf("Unable to bootstrap container: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		if err := srv.Run(); err != nil {
			sysLogger.Error("MAIN", "Server stopped", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 6. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sysLogger.Info("MAIN", "Shutting down", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		sysLogger.Error("MAIN", "HTTP shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	// waits for running image edits to settle
	if err := container.Close(); err != nil {
		sysLogger.Error("MAIN", "Container close failed", map[string]interface{}{"error": err.Error()})
	}
}

func newRepositoryFactory(cfg *config.Config) (unitofwork.RepositoryFactory, error) {
	switch cfg.Database.Driver {
	case "", "memory":
		return unitofwork.NewMemoryRepositoryFactory(memory.NewStore()), nil
	default:
		db, err := database.Open(cfg.Database.Driver, cfg.Database.Connection)
		if err != nil {
			return nil, err
		}
		if err := model.AutoMigrate(db); err != nil {
			return nil, err
		}
		return unitofwork.NewRepositoryFactory(db), nil
	}
}
