package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/vikas186/cts-optimizer-backend/internal/common/database"
	"github.com/vikas186/cts-optimizer-backend/internal/common/logger"
	"github.com/vikas186/cts-optimizer-backend/internal/config"
	"github.com/vikas186/cts-optimizer-backend/migrations"
)

func main() {
	cmd := flag.String("cmd", "up", "migration command: up | down | status")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.NewLogger(cfg.Log.Level, "console", "cts-migrate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Cannot connect to database", zap.Error(err))
	}
	defer database.Close(db)

	switch *cmd {
	case "up":
		err = migrations.Up(db)
	case "down":
		err = migrations.Down(db)
	case "status":
		err = migrations.Status(db)
	default:
		log.Fatal("Unknown migration command", zap.String("cmd", *cmd))
	}
	if err != nil {
		log.Fatal("Migration failed", zap.String("cmd", *cmd), zap.Error(err))
	}
	log.Info("Migration finished", zap.String("cmd", *cmd), zap.String("database", cfg.Database.Database))
}
