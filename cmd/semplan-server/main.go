package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/existflow/semplan/internal/app"
	"github.com/existflow/semplan/internal/config"
	"github.com/existflow/semplan/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Listen = ":" + port
	}

	if err := logger.Init(logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		FilePath:   cfg.LogFile,
		MaxSize:    10 * 1024 * 1024, // 10MB
		MaxAge:     7,
		MaxBackups: 5,
		Console:    true,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger.L(), func(err error) {
		logger.Error("Storage error", logger.F("error", err))
	})
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}()

	log.Printf("SemPlan API server starting on %s", cfg.Listen)
	if err := a.Serve(ctx, cfg.Listen); err != nil {
		logger.Error("Server failed", logger.F("error", err))
	}
}
