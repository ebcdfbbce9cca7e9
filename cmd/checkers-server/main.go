// Package main serves the draughts engine over a JSON API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"checkers/cmd/checkers-server/cli"
	"checkers/internal/config"
	"checkers/internal/service"
	"checkers/internal/storage"
	httptransport "checkers/internal/transport/http"
)

const gracefulShutdownTimeout = 5 * time.Second

func main() {
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "CLI error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	var (
		configPath = flag.String("config", "", "Path to a YAML config file (default ./checkers.yaml if present)")
		host       = flag.String("host", "", "API server host override")
		port       = flag.Int("port", 0, "API server port override")
		dev        = flag.Bool("dev", false, "Development mode (relaxed rate limits)")
		backend    = flag.String("storage", "", "Storage backend override: sqlite, file or none")
		pidPath    = flag.String("pid", "", "Optional path to write PID file")
		pidLock    = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dev {
		cfg.Server.Dev = true
	}
	if *backend != "" {
		cfg.Storage.Backend = *backend
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := config.SetupLogging(cfg.Log.Level, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	if *pidLock && *pidPath == "" {
		log.Fatal().Msg("-pid-lock requires -pid")
	}
	if *pidPath != "" {
		cleanup, err := managePIDFile(*pidPath, *pidLock)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to manage PID file")
		}
		defer cleanup()
		log.Info().Str("path", *pidPath).Bool("lock", *pidLock).Msg("PID file created")
	}

	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path, cfg.Storage.Dir, cfg.Server.Dev)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}

	svc, err := service.New(store, cfg.Search.Depth)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize service")
	}

	app := httptransport.NewFiberApp(svc, httptransport.Config{
		DevMode:   cfg.Server.Dev,
		Defaults:  cfg.BoardOptions(),
		RateLimit: cfg.Server.RateLimit,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		log.Info().
			Str("addr", "http://"+addr).
			Str("storage", cfg.Storage.Backend).
			Int("depth", cfg.Search.Depth).
			Bool("dev", cfg.Server.Dev).
			Msg("checkers API server starting")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("API server listen error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Warn().Err(err).Msg("server forced to shutdown")
	}
	if err := svc.Close(); err != nil {
		log.Warn().Err(err).Msg("service shutdown error")
	}

	log.Info().Msg("server exited")
}
