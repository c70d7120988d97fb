package main

import (
	"log"

	"ai-memory-capture/internal/config"
	"ai-memory-capture/internal/model"
	"ai-memory-capture/pkg/database"
)

func main() {
	cfg := config.Load()

	// 1. Connect to Database using existing GORM helpers
	db, err := database.NewGormDB(database.GormConfig{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.Connection,
		LogLevel: cfg.Database.LogLevel,
	})
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	models := model.AllModels()
	log.Printf("Running AutoMigrate for %d tables (%s)...", len(models), cfg.Database.Driver)

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
