package main

import (
	"fmt"
	"log"

	"github.com/AndreCode112/FinanceMartins/internal/blob"
	"github.com/AndreCode112/FinanceMartins/internal/config"
	"github.com/AndreCode112/FinanceMartins/internal/database"
	"github.com/AndreCode112/FinanceMartins/internal/logger"
	"github.com/AndreCode112/FinanceMartins/internal/router"

	"go.uber.org/zap"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zapLogger.Sync()

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		zapLogger.Fatal("init database", zap.Error(err))
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		zapLogger.Fatal("migrate database", zap.Error(err))
	}

	// receipt storage
	blobs, err := blob.NewDiskStore(cfg.Storage.Dir)
	if err != nil {
		zapLogger.Fatal("init receipt storage", zap.Error(err))
	}

	// setup router
	r := router.SetupRouter(cfg, db, blobs, zapLogger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	zapLogger.Info("server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		zapLogger.Fatal("run server", zap.Error(err))
	}
}
