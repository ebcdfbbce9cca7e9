package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"checkers/internal/board"
	"checkers/internal/cli"
	"checkers/internal/core"
	"checkers/internal/engine"
	"checkers/internal/game"
	"checkers/internal/service"
	"checkers/internal/transport"
)

type CLIHandler struct {
	svc    *service.Service
	view   transport.View
	gameID string
	opts   board.Options // used by the next "new"
}

func New(svc *service.Service, view transport.View, opts board.Options) *CLIHandler {
	return &CLIHandler{
		svc:  svc,
		view: view,
		opts: opts,
	}
}

// Run is the main loop. It returns when the user quits or input fails.
func (h *CLIHandler) Run() error {
	for {
		cmd, err := h.view.GetCommand(h.getPrompt())
		if err != nil {
			if errors.Is(err, cli.ErrUnparsable) {
				h.view.ShowError(err)
				continue
			}
			return err
		}
		if !h.ProcessCommand(cmd) {
			return nil
		}
	}
}

// getPrompt shows whose turn it is in the active game.
func (h *CLIHandler) getPrompt() string {
	prompt := "> "
	if h.gameID == "" {
		return prompt
	}
	g, err := h.svc.GetGame(h.gameID)
	if err != nil || g.State() != core.StateOngoing {
		return prompt
	}
	prompt = fmt.Sprintf("[%s]> ", g.NextTurn())
	if g.NextPlayer().Type == core.PlayerComputer {
		prompt = "ENTER to execute computer move\n" + prompt
	}
	return prompt
}

// ProcessCommand handles one command and reports whether to keep going.
func (h *CLIHandler) ProcessCommand(cmd *cli.Command) bool {
	switch cmd.Type {
	case cli.CmdQuit:
		return false

	case cli.CmdNone:
		if g := h.activeGame(); g != nil && g.NextPlayer().Type == core.PlayerComputer {
			h.executeComputerMove()
		}

	case cli.CmdComputer:
		if h.activeGame() == nil {
			h.view.ShowMessage("No active game. Use 'new' or 'load <id>'.")
			return true
		}
		h.executeComputerMove()

	case cli.CmdNew:
		h.handleNewGame(strings.Join(cmd.Args, " "))

	case cli.CmdLoad:
		if len(cmd.Args) != 1 {
			h.view.ShowMessage("Usage: load <game id>")
			return true
		}
		h.handleLoad(cmd.Args[0])

	case cli.CmdGames:
		games, err := h.svc.ListSavedGames()
		if err != nil {
			h.view.ShowError(err)
			return true
		}
		h.view.ShowGames(games)

	case cli.CmdDelete:
		if len(cmd.Args) != 1 {
			h.view.ShowMessage("Usage: delete <game id>")
			return true
		}
		if err := h.svc.DeleteGame(cmd.Args[0]); err != nil {
			h.view.ShowError(err)
			return true
		}
		if cmd.Args[0] == h.gameID {
			h.gameID = ""
		}
		h.view.ShowMessage("Game deleted.")

	case cli.CmdMove:
		h.handleMove(cmd.Args[0])

	case cli.CmdMoves:
		if h.activeGame() == nil || len(cmd.Args) != 1 {
			h.view.ShowMessage("Usage: moves <square> (during a game)")
			return true
		}
		pm, err := h.svc.PieceMoves(h.gameID, cmd.Args[0])
		if err != nil {
			h.view.ShowError(err)
			return true
		}
		h.view.ShowPieceMoves(pm.Square, pm.Moves)

	case cli.CmdOptions:
		h.handleOptions(cmd.Args)

	case cli.CmdColor:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: color <off|brown|green|gray>")
			return true
		}
		theme := cli.ColorTheme(cmd.Args[0])
		if err := h.view.SetTheme(theme); err != nil {
			h.view.ShowError(err)
			return true
		}
		h.view.ShowMessage(fmt.Sprintf("Color theme set to: %s", theme))
		if g := h.currentGame(); g != nil {
			h.display(g)
		}

	case cli.CmdVerbose:
		verbose := h.view.ToggleVerbose()
		h.view.ShowMessage(fmt.Sprintf("Verbose mode: %t", verbose))

	case cli.CmdHelp:
		h.view.ShowHelp()
	}

	return true
}

func (h *CLIHandler) currentGame() *game.Game {
	if h.gameID == "" {
		return nil
	}
	g, err := h.svc.GetGame(h.gameID)
	if err != nil {
		return nil
	}
	return g
}

// activeGame returns the current game if it is still being played.
func (h *CLIHandler) activeGame() *game.Game {
	g := h.currentGame()
	if g == nil || g.State() != core.StateOngoing {
		return nil
	}
	return g
}

func (h *CLIHandler) display(g *game.Game) {
	g.Lock()
	b := g.Engine().Board().Clone()
	g.Unlock()
	h.view.DisplayBoard(b)
}

func (h *CLIHandler) handleMove(notation string) {
	g := h.activeGame()
	if g == nil {
		h.view.ShowMessage("No active game. Use 'new' or 'load <id>'.")
		return
	}
	if g.NextPlayer().Type != core.PlayerHuman {
		h.view.ShowMessage("It's not a human player's turn. Press ENTER to execute computer move.")
		return
	}

	result, err := h.svc.MakeHumanMove(h.gameID, notation)
	switch {
	case errors.Is(err, engine.ErrCaptureRequired):
		h.view.ShowMessage("A capture is available and must be taken.")
		return
	case err != nil:
		h.view.ShowError(fmt.Errorf("invalid move: %v", err))
		return
	}

	h.view.ShowHumanMove(result)
	h.afterMove(g, result)
}

func (h *CLIHandler) executeComputerMove() {
	g := h.activeGame()
	if g == nil {
		return
	}
	result, err := h.svc.MakeComputerMove(h.gameID)
	if err != nil {
		h.view.ShowError(fmt.Errorf("engine error: %v", err))
		return
	}

	h.view.ShowComputerMove(result)
	h.afterMove(g, result)
}

func (h *CLIHandler) afterMove(g *game.Game, result *game.MoveResult) {
	h.display(g)

	if result.GameState != core.StateOngoing {
		h.view.ShowGameOver(result.GameState)
		h.gameID = ""
		return
	}
	if g.NextTurn() == result.Player {
		h.view.ShowMessage(fmt.Sprintf("%s continues capturing from %s.", result.Player.Name(), result.Move.To()))
	}
}

// handleNewGame asks for both players and starts a game with the current
// options.
func (h *CLIHandler) handleNewGame(name string) {
	opts := h.opts
	if name != "" {
		opts.Name = name
	}

	white := h.askPlayer(core.ColorWhite)
	black := h.askPlayer(core.ColorBlack)

	g, err := h.svc.NewGame(service.NewGameParams{Options: opts, White: white, Black: black})
	if err != nil {
		h.view.ShowError(fmt.Errorf("could not start the game: %v", err))
		return
	}
	h.gameID = g.ID

	h.view.ShowMessage(fmt.Sprintf("Game %s started. %s moves first.", g.ID, g.NextTurn().Name()))
	h.display(g)
}

func (h *CLIHandler) askPlayer(color core.Color) core.PlayerConfig {
	pc := core.PlayerConfig{Type: core.PlayerHuman}
	pc.Name = strings.TrimSpace(h.view.Ask(fmt.Sprintf("%s player name [%s]: ", color.Name(), color.Name())))
	if pc.Name == "" {
		pc.Name = color.Name()
	}
	if t, ok := core.ParsePlayerType(strings.ToLower(h.view.Ask(fmt.Sprintf("%s player (h/c): ", color.Name())))); ok {
		pc.Type = t
	}
	return pc
}

func (h *CLIHandler) handleLoad(id string) {
	g, err := h.svc.ResumeGame(id)
	if err != nil {
		h.view.ShowError(err)
		return
	}
	h.gameID = g.ID
	log.Debug().Str("game", g.ID).Msg("console resumed game")

	h.view.ShowMessage(fmt.Sprintf("Resumed %q: %s vs %s.", g.Name,
		g.Player(core.ColorWhite).Name, g.Player(core.ColorBlack).Name))
	h.display(g)
	if g.State() != core.StateOngoing {
		h.view.ShowGameOver(g.State())
		h.gameID = ""
	}
}

func (h *CLIHandler) handleOptions(args []string) {
	if len(args) == 0 || args[0] == "show" {
		h.view.ShowOptions(h.opts)
		return
	}

	arg := func(i int) (string, bool) {
		if len(args) <= i {
			h.view.ShowMessage(fmt.Sprintf("Usage: options %s <value>", args[0]))
			return "", false
		}
		return args[i], true
	}

	switch args[0] {
	case "set":
		key, ok := arg(1)
		if !ok {
			return
		}
		value, ok := arg(2)
		if !ok {
			return
		}
		opts, err := setOption(h.opts, key, value)
		if err != nil {
			h.view.ShowError(err)
			return
		}
		h.opts = opts
		h.view.ShowOptions(h.opts)

	case "save":
		name, ok := arg(1)
		if !ok {
			return
		}
		opts := h.opts
		opts.Name = name
		if err := h.svc.SaveOptions(opts); err != nil {
			h.view.ShowError(err)
			return
		}
		h.opts = opts
		h.view.ShowMessage(fmt.Sprintf("Options saved as %q.", name))

	case "load":
		name, ok := arg(1)
		if !ok {
			return
		}
		opts, err := h.svc.LoadOptions(name)
		if err != nil {
			h.view.ShowError(err)
			return
		}
		h.opts = opts
		h.view.ShowOptions(h.opts)

	case "list":
		presets, err := h.svc.ListOptions()
		if err != nil {
			h.view.ShowError(err)
			return
		}
		if len(presets) == 0 {
			h.view.ShowMessage("No saved options.")
		}
		for _, o := range presets {
			h.view.ShowOptions(o)
		}

	case "delete":
		name, ok := arg(1)
		if !ok {
			return
		}
		if err := h.svc.DeleteOptions(name); err != nil {
			h.view.ShowError(err)
			return
		}
		h.view.ShowMessage(fmt.Sprintf("Options %q deleted.", name))

	default:
		h.view.ShowMessage("Usage: options [show|set <key> <value>|save <name>|load <name>|list|delete <name>]")
	}
}

// setOption returns opts with one field changed, rejecting values that
// would make the options invalid.
func setOption(opts board.Options, key, value string) (board.Options, error) {
	key = strings.ToLower(key)
	switch key {
	case "name":
		opts.Name = value
	case "width", "height":
		n, err := strconv.Atoi(value)
		if err != nil {
			return opts, fmt.Errorf("%s must be a number", key)
		}
		if key == "width" {
			opts.Width = n
		} else {
			opts.Height = n
		}
	case "mandatory_take", "black_starts":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return opts, fmt.Errorf("%s must be true or false", key)
		}
		if key == "mandatory_take" {
			opts.MandatoryTake = v
		} else {
			opts.BlackStarts = v
		}
	default:
		return opts, fmt.Errorf("unknown option %q", key)
	}
	return opts, opts.Validate()
}
