package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"vetcore/m/internal/api"
	"vetcore/m/internal/config"
	"vetcore/m/internal/database"
	"vetcore/m/internal/migrations"
	"vetcore/m/internal/notify"
	"vetcore/m/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	seed.EnsureAdmin(db)
	if cfg.SeedDemoData {
		seed.LoadDemoData(db)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("unable to build logger: %v", err)
	}
	defer logger.Sync()

	notifier := notify.New(db, logger)
	handler := api.New(db, cfg, notifier)

	logger.Info("clinic backend starting", zap.String("port", cfg.HTTPPort))
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
