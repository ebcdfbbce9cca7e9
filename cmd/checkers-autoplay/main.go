// Package main plays the engine against itself and reports the tally.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"checkers/internal/autoplay"
	"checkers/internal/config"
	"checkers/internal/core"
	"checkers/internal/storage"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML config file (default ./checkers.yaml if present)")
		games      = flag.Int("games", 0, "Number of games override")
		workers    = flag.Int("workers", 0, "Concurrent games override")
		depth      = flag.Int("depth", 0, "Search depth override")
		record     = flag.Bool("record", false, "Save every game to the configured storage")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *games > 0 {
		cfg.Autoplay.Games = *games
	}
	if *workers > 0 {
		cfg.Autoplay.Workers = *workers
	}
	if *depth > 0 {
		cfg.Search.Depth = *depth
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := config.SetupLogging(cfg.Log.Level, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, sum, err := autoplay.Run(ctx, autoplay.Config{
		Games:       cfg.Autoplay.Games,
		Workers:     cfg.Autoplay.Workers,
		RandomPlies: cfg.Autoplay.RandomPlies,
		MaxPlies:    cfg.Autoplay.MaxPlies,
		Depth:       cfg.Search.Depth,
		Options:     cfg.BoardOptions(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("autoplay failed")
	}
	fmt.Println(sum)

	if !*record {
		return
	}
	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path, cfg.Storage.Dir, false)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	if store == nil {
		log.Fatal().Msg("-record needs a storage backend")
	}
	defer store.Close()

	for _, r := range results {
		if err := save(store, cfg, r); err != nil {
			log.Error().Err(err).Int("game", r.Index).Msg("failed to record game")
		}
	}
	log.Info().Int("games", len(results)).Msg("games recorded")
}

func save(store storage.Repository, cfg *config.Config, r autoplay.Result) error {
	now := time.Now().UTC()
	gameID := uuid.New().String()
	rec := storage.GameRecord{
		GameID:        gameID,
		Options:       cfg.BoardOptions(),
		WhitePlayerID: uuid.New().String(),
		WhiteName:     "autoplay-white",
		WhiteType:     int(core.PlayerComputer),
		WhiteDepth:    cfg.Search.Depth,
		BlackPlayerID: uuid.New().String(),
		BlackName:     "autoplay-black",
		BlackType:     int(core.PlayerComputer),
		BlackDepth:    cfg.Search.Depth,
		StartTimeUTC:  now.Add(-r.Duration),
	}
	if err := store.RecordNewGame(rec); err != nil {
		return err
	}
	if err := store.RecordState(storage.StateRecord{GameID: gameID, Snapshot: r.Final, UpdatedUTC: now}); err != nil {
		return err
	}
	switch r.State {
	case core.StateWhiteWins:
		return store.RecordGameOver(gameID, core.ColorWhite, now)
	case core.StateBlackWins:
		return store.RecordGameOver(gameID, core.ColorBlack, now)
	}
	return nil
}
