// Package main runs an interactive draughts game in the terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"

	"checkers/internal/cli"
	"checkers/internal/config"
	"checkers/internal/service"
	"checkers/internal/storage"
	clitransport "checkers/internal/transport/cli"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML config file (default ./checkers.yaml if present)")
		backend    = flag.String("storage", "", "Storage backend override: sqlite, file or none")
		depth      = flag.Int("depth", 0, "Search depth override")
		logLevel   = flag.String("log-level", "", "Log level override")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *backend != "" {
		cfg.Storage.Backend = *backend
	}
	if *depth > 0 {
		cfg.Search.Depth = *depth
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := config.SetupLogging(cfg.Log.Level, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path, cfg.Storage.Dir, false)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}

	svc, err := service.New(store, cfg.Search.Depth)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Warn().Err(err).Msg("service close")
		}
	}()

	var (
		input cli.LineReader = cli.NewScannerReader(os.Stdin, os.Stdout)
		out   io.Writer      = os.Stdout
	)
	if config.IsTerminal(os.Stdin) {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "> ",
			HistoryFile:     ".checkers_history",
			InterruptPrompt: "^C",
			EOFPrompt:       "quit",
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialise console")
		}
		defer rl.Close()
		input, out = rl, rl.Stdout()
	}

	view := cli.New(input, out)
	if config.IsTerminal(os.Stdout) {
		_ = view.SetTheme(cli.ThemeBrown)
	}
	handler := clitransport.New(svc, view, cfg.BoardOptions())

	view.ShowWelcome()
	if err := handler.Run(); err != nil {
		log.Error().Err(err).Msg("console stopped")
	}
}
