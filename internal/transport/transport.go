package transport

import (
	"checkers/internal/board"
	"checkers/internal/cli"
	"checkers/internal/core"
	"checkers/internal/game"
	"checkers/internal/storage"
)

// View abstracts the interactive console a handler drives. *cli.CLI is
// the terminal implementation.
type View interface {
	GetCommand(prompt string) (*cli.Command, error)
	Ask(prompt string) string
	SetTheme(theme cli.ColorTheme) error
	ToggleVerbose() bool

	DisplayBoard(b *board.Board)
	ShowMessage(msg string)
	ShowError(err error)
	ShowHelp()
	ShowComputerMove(result *game.MoveResult)
	ShowHumanMove(result *game.MoveResult)
	ShowGameOver(state core.State)
	ShowGames(games []storage.GameRecord)
	ShowOptions(opts board.Options)
	ShowPieceMoves(square board.Position, moves []board.Move)
}

var _ View = (*cli.CLI)(nil)
