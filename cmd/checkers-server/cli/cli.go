package cli

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"checkers/internal/core"
	"checkers/internal/storage"
)

// Run is the entry point for the db sub-commands
func Run(args []string) error {
	return run(args, os.Stdin, os.Stdout)
}

func run(args []string, in *os.File, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, options")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:], out)
	case "delete":
		return runDelete(args[1:], in, out)
	case "query":
		return runQuery(args[1:], out)
	case "options":
		return runOptions(args[1:], out)
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func openStore(fs *flag.FlagSet, args []string, path *string) (*storage.Store, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *path == "" {
		return nil, fmt.Errorf("database path required")
	}
	store, err := storage.NewStore(*path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func runInit(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	store, err := openStore(fs, args, path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Fprintf(out, "Database initialized at: %s\n", *path)
	return nil
}

func runDelete(args []string, in *os.File, out io.Writer) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")

	store, err := openStore(fs, args, path)
	if err != nil {
		return err
	}

	if !*yes {
		if !term.IsTerminal(int(in.Fd())) {
			store.Close()
			return fmt.Errorf("refusing to delete without a terminal; pass -yes")
		}
		fmt.Fprintf(out, "Delete %s and every saved game in it? [y/N] ", *path)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			store.Close()
			fmt.Fprintln(out, "Aborted")
			return nil
		}
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Fprintf(out, "Database deleted: %s\n", *path)
	return nil
}

func runQuery(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	gameID := fs.String("gameId", "", "Game ID to filter (optional, * for all)")
	player := fs.String("player", "", "Player ID or name to filter (optional, * for all)")

	store, err := openStore(fs, args, path)
	if err != nil {
		return err
	}
	defer store.Close()

	games, err := store.QueryGames(*gameID, *player)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(games) == 0 {
		fmt.Fprintln(out, "No games found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tBoard\tWhite\tBlack\tStarted\tWinner")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, g := range games {
		winner := "-"
		if g.Winner != "" {
			if c, ok := core.ParseColor(g.Winner); ok {
				winner = c.Name()
			}
		}
		fmt.Fprintf(w, "%s\t%dx%d\t%s\t%s\t%s\t%s\n",
			short(g.GameID),
			g.Options.Width, g.Options.Height,
			playerInfo(g.WhiteName, g.WhiteType),
			playerInfo(g.BlackName, g.BlackType),
			g.StartTimeUTC.Format("2006-01-02 15:04:05"),
			winner,
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nFound %d game(s)\n", len(games))
	return nil
}

func runOptions(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("options", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	store, err := openStore(fs, args, path)
	if err != nil {
		return err
	}
	defer store.Close()

	presets, err := store.ListOptions()
	if err != nil {
		return fmt.Errorf("failed to list options: %w", err)
	}
	if len(presets) == 0 {
		fmt.Fprintln(out, "No option presets found")
		return nil
	}
	for _, o := range presets {
		fmt.Fprintln(out, o.String())
	}
	return nil
}

func playerInfo(name string, kind int) string {
	return fmt.Sprintf("%s (%s)", name, core.PlayerType(kind))
}

func short(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
