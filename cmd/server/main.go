package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/codingworldcup/internal/cli"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Settings come from STORAGE_TYPE, REDIS_URL, CWC_CODEC,
	// CWC_AGENT_TIMEOUT and CWC_PORT
	opts := cli.DefaultServeOptions()
	opts.OnListening = func(addr string) {
		logger.Info("server started", slog.String("addr", addr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Serve(ctx, opts, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}
