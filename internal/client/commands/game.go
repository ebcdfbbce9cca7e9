package commands

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"checkers/internal/client/display"
	"checkers/internal/core"
)

func (r *Registry) registerGameCommands() {
	for _, cmd := range []*Command{
		{Name: "new", ShortName: "n", Description: "Create a new game", Usage: "new [name]", Handler: newGameHandler},
		{Name: "join", ShortName: "j", Description: "Set the current game", Usage: "join <gameId>", Handler: joinGameHandler},
		{Name: "games", ShortName: "g", Description: "List saved games", Usage: "games", Handler: listGamesHandler},
		{Name: "load", ShortName: "l", Description: "Load a saved game on the server", Usage: "load <gameId>", Handler: loadGameHandler},
		{Name: "move", ShortName: "m", Description: "Make a move", Usage: "move <from> <to>  (e.g. move AB3 AC4)", Handler: moveHandler},
		{Name: "computer", ShortName: "c", Description: "Trigger computer move", Usage: "computer", Handler: computerMoveHandler},
		{Name: "show", ShortName: "h", Description: "Show board and game state", Usage: "show [gameId]", Handler: showBoardHandler},
		{Name: "state", ShortName: "s", Description: "Show raw game JSON", Usage: "state [gameId]", Handler: gameStateHandler},
		{Name: "pieces", ShortName: "p", Description: "List a piece's legal moves", Usage: "pieces <square>", Handler: piecesHandler},
		{Name: "delete", ShortName: "d", Description: "Delete a game", Usage: "delete [gameId]", Handler: deleteGameHandler},
		{Name: "poll", ShortName: "w", Description: "Long-poll for game updates", Usage: "poll", Handler: pollHandler},
	} {
		cmd.Group = "Game"
		r.Register(cmd)
	}
}

func (r *Registry) askPlayer(side string) (core.PlayerConfig, error) {
	kind := strings.ToLower(r.prompt(fmt.Sprintf("%s player type (h/c) [h]: ", side), "h"))
	pt, ok := core.ParsePlayerType(kind)
	if !ok {
		return core.PlayerConfig{}, fmt.Errorf("unknown player type %q", kind)
	}

	cfg := core.PlayerConfig{Type: pt}
	cfg.Name = r.prompt(fmt.Sprintf("%s player name [%s]: ", side, strings.ToLower(side)), strings.ToLower(side))
	if pt == core.PlayerComputer {
		d := r.prompt("Search depth (1-8) [server default]: ", "")
		if d != "" {
			depth, err := strconv.Atoi(d)
			if err != nil {
				return core.PlayerConfig{}, fmt.Errorf("invalid depth %q", d)
			}
			cfg.Depth = depth
		}
	}
	return cfg, nil
}

func newGameHandler(r *Registry, args []string) error {
	fmt.Fprintf(r.out, "\n%sCreating new game...%s\n", display.Cyan, display.Reset)

	white, err := r.askPlayer("White")
	if err != nil {
		return err
	}
	black, err := r.askPlayer("Black")
	if err != nil {
		return err
	}

	req := &core.CreateGameRequest{White: white, Black: black}
	if len(args) > 0 {
		req.Name = strings.Join(args, " ")
	}

	size := r.prompt("Board size WxH [server default]: ", "")
	if size != "" {
		w, h, ok := strings.Cut(strings.ToLower(size), "x")
		width, errW := strconv.Atoi(w)
		height, errH := strconv.Atoi(h)
		if !ok || errW != nil || errH != nil {
			return fmt.Errorf("invalid board size %q", size)
		}
		req.Options = &core.OptionsConfig{
			Width:         width,
			Height:        height,
			MandatoryTake: strings.HasPrefix(strings.ToLower(r.prompt("Mandatory take (y/n) [n]: ", "n")), "y"),
			BlackStarts:   strings.HasPrefix(strings.ToLower(r.prompt("Black starts (y/n) [y]: ", "y")), "y"),
		}
	}

	resp, err := r.session.Client.CreateGame(req)
	if err != nil {
		return err
	}
	r.session.Track(resp)
	fmt.Fprintf(r.out, "%sGame created: %s%s\n", display.Green, resp.GameID, display.Reset)
	return r.showGame(resp)
}

func joinGameHandler(r *Registry, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: join <gameId>")
	}
	resp, err := r.session.Client.GetGame(args[0])
	if err != nil {
		return err
	}
	r.session.Track(resp)
	return r.showGame(resp)
}

func listGamesHandler(r *Registry, _ []string) error {
	games, err := r.session.Client.ListGames()
	if err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Fprintln(r.out, "No saved games")
		return nil
	}

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tName\tWhite\tBlack\tStarted\tWinner")
	for _, g := range games {
		winner := "-"
		if g.Winner != "" {
			winner = display.ColorForTurn(g.Winner)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", g.GameID, g.Name, g.White, g.Black,
			time.Unix(g.StartedAt, 0).Format("2006-01-02 15:04"), winner)
	}
	return w.Flush()
}

func loadGameHandler(r *Registry, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: load <gameId>")
	}
	resp, err := r.session.Client.LoadGame(args[0])
	if err != nil {
		return err
	}
	r.session.Track(resp)
	return r.showGame(resp)
}

func moveHandler(r *Registry, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: move <from> <to>")
	}
	gameID, err := r.requireGame(nil)
	if err != nil {
		return err
	}
	resp, err := r.session.Client.MakeMove(gameID, strings.Join(args, " "))
	if err != nil {
		return err
	}
	r.session.Track(resp)
	return r.showGame(resp)
}

func computerMoveHandler(r *Registry, _ []string) error {
	gameID, err := r.requireGame(nil)
	if err != nil {
		return err
	}
	resp, err := r.session.Client.ComputerMove(gameID)
	if err != nil {
		return err
	}
	r.session.Track(resp)
	return r.showGame(resp)
}

func showBoardHandler(r *Registry, args []string) error {
	gameID, err := r.requireGame(args)
	if err != nil {
		return err
	}
	resp, err := r.session.Client.GetGame(gameID)
	if err != nil {
		return err
	}
	if gameID == r.session.CurrentGame {
		r.session.Track(resp)
	}
	return r.showGame(resp)
}

func gameStateHandler(r *Registry, args []string) error {
	gameID, err := r.requireGame(args)
	if err != nil {
		return err
	}
	resp, err := r.session.Client.GetGame(gameID)
	if err != nil {
		return err
	}
	display.PrettyPrintJSON(r.out, resp)
	return nil
}

func piecesHandler(r *Registry, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: pieces <square>")
	}
	gameID, err := r.requireGame(nil)
	if err != nil {
		return err
	}
	resp, err := r.session.Client.PieceMoves(gameID, args[0])
	if err != nil {
		return err
	}
	if !resp.HasMoves {
		fmt.Fprintf(r.out, "%s has no legal moves\n", resp.Square)
		return nil
	}
	fmt.Fprintf(r.out, "%s can move to: %s\n", resp.Square, strings.Join(resp.Destinations, ", "))
	return nil
}

func deleteGameHandler(r *Registry, args []string) error {
	gameID, err := r.requireGame(args)
	if err != nil {
		return err
	}
	if err := r.session.Client.DeleteGame(gameID); err != nil {
		return err
	}
	if gameID == r.session.CurrentGame {
		r.session.Forget()
	}
	fmt.Fprintf(r.out, "%sGame deleted: %s%s\n", display.Green, gameID, display.Reset)
	return nil
}

func pollHandler(r *Registry, _ []string) error {
	gameID, err := r.requireGame(nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%sWaiting for a move after ply %d...%s\n", display.Cyan, r.session.LastPlies, display.Reset)
	resp, err := r.session.Client.WaitForGame(gameID, r.session.LastPlies)
	if err != nil {
		return err
	}
	if resp.Plies == r.session.LastPlies {
		fmt.Fprintln(r.out, "No change")
		return nil
	}
	r.session.Track(resp)
	return r.showGame(resp)
}

func (r *Registry) showGame(g *core.GameResponse) error {
	b, err := r.session.Client.GetBoard(g.GameID)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out)
	display.RenderBoard(r.out, b.Board)

	if g.LastMove != nil {
		fmt.Fprintf(r.out, "Last move: %s by %s", g.LastMove.Move, display.ColorForTurn(g.LastMove.PlayerColor))
		if g.LastMove.Depth > 0 {
			fmt.Fprintf(r.out, " (score %.1f, depth %d, %d nodes)", g.LastMove.Score, g.LastMove.Depth, g.LastMove.Nodes)
		}
		fmt.Fprintln(r.out)
	}
	if g.State != core.StateOngoing.Code() {
		fmt.Fprintf(r.out, "%sGame over: %s%s\n", display.Magenta, g.State, display.Reset)
		return nil
	}
	fmt.Fprintf(r.out, "Ply %d, %s to move\n", g.Plies, display.ColorForTurn(g.Turn))
	return nil
}
