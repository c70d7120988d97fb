package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-memory-capture/internal/bootstrap"
	"ai-memory-capture/internal/config"
	"ai-memory-capture/internal/model"
	"ai-memory-capture/internal/server"
	"ai-memory-capture/internal/tracer"
	"ai-memory-capture/pkg/database"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDB(database.GormConfig{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.Connection,
		LogLevel: cfg.Database.LogLevel,
	})
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if err := gormDB.AutoMigrate(model.AllModels()...); err != nil {
		log.Panicf("AutoMigrate failed: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	go container.WebSocketHub.Run(ctx)
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	if cfg.App.SyncOnStart {
		go func() {
			report, err := container.SyncService.SyncFromCloud(ctx)
			if err != nil {
				log.Printf("[WARN] Startup sync skipped: %v", err)
				return
			}
			log.Printf("[INFO] Startup sync: %d remote, %d imported, %d skipped, %d failed",
				report.Remote, report.Imported, report.Skipped, report.Failed)
		}()
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		if err := srv.Run(); err != nil {
			log.Printf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(); err != nil {
		log.Printf("[WARN] Server shutdown: %v", err)
	}
	container.SessionService.Shutdown(shutdownCtx)
	container.Close()
}
