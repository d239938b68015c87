package main

import (
	"context"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/honeycarbs/hirepipe/internal/config"
	"github.com/honeycarbs/hirepipe/internal/mcp"
	"github.com/honeycarbs/hirepipe/pkg/logging"
	"github.com/honeycarbs/hirepipe/pkg/shutdown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, cleanup, err := mcp.InitializeResources(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize resources", "err", err)
		os.Exit(1)
	}

	srv := mcp.NewServer(logger, cfg, res)

	releaseResources := shutdown.StopFunc(func(context.Context) error {
		cleanup()
		return nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		shutdown.Graceful(
			[]os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP},
			shutdownTimeout,
			logger,
			srv,
			releaseResources,
		)
	}()

	logger.Info("MCP server initialized and starting", "addr", cfg.Addr(), "api", cfg.API.BaseURL)

	if err := srv.Run(); err != nil {
		logger.Error("MCP server exited with error", "err", err)
		shutdown.Stop(shutdownTimeout, logger, releaseResources)
		_ = logger.Sync()
		os.Exit(1)
	}

	<-done
	logger.Info("MCP server stopped")
}
