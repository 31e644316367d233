package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"govwatcher/internal/app"
	"govwatcher/internal/config"
	"govwatcher/internal/logging"
)

func main() {
	mode := flag.String("mode", "all", "watch mode: all, urls, or videos")
	flag.Parse()

	switch app.Mode(*mode) {
	case app.ModeAll, app.ModeURLs, app.ModeVideos:
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q (want all, urls, or videos)\n", *mode)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.General.LogLevel)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Run(ctx, app.Mode(*mode)); err != nil {
		logger.Error("watch pass failed", "error", err)
		os.Exit(1)
	}
}
