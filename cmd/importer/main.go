package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"crimestats/internal/logger"
)

func main() {
	_ = godotenv.Load()
	logger.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := RootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
