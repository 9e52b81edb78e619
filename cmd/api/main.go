package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"studymate/internal/app"
	"studymate/internal/config"
	"studymate/internal/logging"
)

// @title StudyMate API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(os.Stdout, logging.Location(cfg.Timezone))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, log, cfg.ListenAddr()); err != nil {
		log.Error("server_failed", err, nil)
		stop()
		os.Exit(1)
	}
}
