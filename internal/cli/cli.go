package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/game"
	"checkers/internal/storage"
)

type CommandType int

const (
	CmdNone CommandType = iota
	CmdNew
	CmdLoad
	CmdGames
	CmdDelete
	CmdMove
	CmdComputer
	CmdMoves
	CmdOptions
	CmdColor
	CmdVerbose
	CmdHelp
	CmdQuit
)

// ErrUnparsable marks a line that could not be split into words.
var ErrUnparsable = errors.New("cannot parse command")

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

// LineReader is satisfied by *readline.Instance and by the plain reader
// returned from NewScannerReader.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

type scannerReader struct {
	scanner *bufio.Scanner
	output  io.Writer
	prompt  string
}

// NewScannerReader reads lines from input, writing prompts to output. It
// serves non-interactive input and tests.
func NewScannerReader(input io.Reader, output io.Writer) LineReader {
	return &scannerReader{scanner: bufio.NewScanner(input), output: output}
}

func (r *scannerReader) SetPrompt(prompt string) { r.prompt = prompt }

func (r *scannerReader) Readline() (string, error) {
	fmt.Fprint(r.output, r.prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

type themeColors struct {
	lightBg string
	darkBg  string
	white   string
	black   string
	reset   string
}

var themes = map[ColorTheme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg: "\033[48;5;230m", // Beige
		darkBg:  "\033[48;5;94m",  // Brown
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGreen: {
		lightBg: "\033[48;5;157m",
		darkBg:  "\033[48;5;22m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGray: {
		lightBg: "\033[48;5;251m",
		darkBg:  "\033[48;5;240m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
}

type CLI struct {
	input   LineReader
	output  io.Writer
	theme   ColorTheme
	verbose bool
}

func New(input LineReader, output io.Writer) *CLI {
	return &CLI{
		input:  input,
		output: output,
		theme:  ThemeOff,
	}
}

// GetCommand shows prompt and reads one command. End of input and Ctrl-C
// both quit.
func (c *CLI) GetCommand(prompt string) (*Command, error) {
	c.input.SetPrompt(prompt)
	line, err := c.input.Readline()
	if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
		return &Command{Type: CmdQuit}, nil
	}
	if err != nil {
		return nil, err
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return &Command{Type: CmdNone}, nil
	}
	return ParseCommand(line)
}

// ParseCommand tokenises a line shell-style so game and preset names may be
// quoted. Anything that is not a known command is taken as a move.
func ParseCommand(input string) (*Command, error) {
	parts, err := shellquote.Split(input)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnparsable, input, err)
	}
	if len(parts) == 0 {
		return &Command{Type: CmdNone, Raw: input}, nil
	}

	args := parts[1:]
	cmd := &Command{Args: args, Raw: input}
	switch strings.ToLower(parts[0]) {
	case "new":
		cmd.Type = CmdNew
	case "load", "resume":
		cmd.Type = CmdLoad
	case "games", "list":
		cmd.Type = CmdGames
	case "delete":
		cmd.Type = CmdDelete
	case "ai", "computer":
		cmd.Type = CmdComputer
	case "moves":
		cmd.Type = CmdMoves
	case "options", "opt":
		cmd.Type = CmdOptions
	case "color":
		cmd.Type = CmdColor
	case "verbose":
		cmd.Type = CmdVerbose
	case "help", "?":
		cmd.Type = CmdHelp
	case "quit", "exit":
		cmd.Type = CmdQuit
	default:
		cmd.Type = CmdMove
		cmd.Args = []string{input}
	}
	return cmd, nil
}

// Ask prompts for a single answer. End of input yields an empty answer.
func (c *CLI) Ask(prompt string) string {
	c.input.SetPrompt(prompt)
	line, err := c.input.Readline()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func (c *CLI) SetTheme(theme ColorTheme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	c.theme = theme
	return nil
}

func (c *CLI) ToggleVerbose() bool {
	c.verbose = !c.verbose
	return c.verbose
}

func (c *CLI) IsVerbose() bool {
	return c.verbose
}

func (c *CLI) ShowMessage(msg string) {
	fmt.Fprintln(c.output, msg)
}

func (c *CLI) ShowError(err error) {
	c.ShowMessage(fmt.Sprintf("Error: %v", err))
}

func glyph(cell board.Cell) string {
	switch cell {
	case board.WhiteMan:
		return "w"
	case board.WhiteKing:
		return "W"
	case board.BlackMan:
		return "b"
	case board.BlackKing:
		return "B"
	case board.EmptyDark:
		return "."
	default:
		return " "
	}
}

// RenderBoard draws the board with black's back rank on top. Columns carry
// two-letter labels and rows are numbered from 1.
func RenderBoard(b *board.Board, theme ColorTheme) string {
	colors := themes[theme]
	var sb strings.Builder

	header := func() {
		sb.WriteString("   ")
		for x := 0; x < b.Width(); x++ {
			sb.WriteString(" " + board.ColumnLabel(x))
		}
		sb.WriteString("\n")
	}

	header()
	for y := b.Height() - 1; y >= 0; y-- {
		fmt.Fprintf(&sb, "%2d ", y+1)
		for x := 0; x < b.Width(); x++ {
			cell := b.At(x, y)
			g := glyph(cell)
			if theme == ThemeOff {
				sb.WriteString(" " + g + " ")
				continue
			}

			bg := colors.lightBg
			if board.IsDark(x, y) {
				bg = colors.darkBg
			}
			fg := colors.white
			if cell.Is(core.ColorBlack) {
				fg = colors.black
			}
			if cell == board.EmptyDark {
				g = " "
			}
			sb.WriteString(bg + fg + " " + g + " " + colors.reset)
		}
		fmt.Fprintf(&sb, " %d\n", y+1)
	}
	header()
	return sb.String()
}

func (c *CLI) DisplayBoard(b *board.Board) {
	c.ShowMessage("\n" + RenderBoard(b, c.theme))
}

func (c *CLI) ShowHelp() {
	help := `Commands:
  new [name]            - Start a new game, choosing each player
  load <id>             - Resume a saved game
  games                 - List saved games
  delete <id>           - Delete a saved game
  <from> <to>           - Make a move (e.g., AB3 AC4)
  ai                    - Let the computer play the side to move
  moves <square>        - Show where the piece on a square can go
  options [show]        - Show options for the next game
  options set <key> <v> - Change width, height, mandatory_take, black_starts or name
  options save <name>   - Save the current options as a preset
  options load <name>   - Use a saved preset
  options list          - List presets
  options delete <name> - Delete a preset
  color <theme>         - Set board color theme (off|brown|green|gray)
  verbose               - Toggle search details
  quit/exit             - Exit the program
  help/?                - Show this help message

During any game:
  Press ENTER           - Execute computer move (when it's computer's turn)`

	c.ShowMessage(help)
}

func (c *CLI) ShowWelcome() {
	c.ShowMessage("Welcome to Checkers!")
	c.ShowMessage("Commands: new, load <id>, games, <from> <to>, ai, moves <square>, options, help/?, quit")
	c.ShowMessage("Press ENTER to execute computer moves when it's computer's turn.")
	c.ShowMessage("")
}

func (c *CLI) ShowComputerMove(result *game.MoveResult) {
	if c.verbose {
		c.ShowMessage(fmt.Sprintf("Computer (%s): %s (depth=%d, score=%.1f, nodes=%d)",
			result.Player.Name(), result.Move, result.Depth, result.Score, result.Nodes))
		return
	}
	c.ShowMessage(fmt.Sprintf("Computer (%s): %s", result.Player.Name(), result.Move))
}

func (c *CLI) ShowHumanMove(result *game.MoveResult) {
	if c.verbose {
		c.ShowMessage(fmt.Sprintf("%s: %s", result.Player.Name(), result.Move))
	}
}

func (c *CLI) ShowGameOver(state core.State) {
	c.ShowMessage(fmt.Sprintf("\nGame Over: %s", state))
	c.ShowMessage("Start a new game with 'new' or 'load <id>'.")
}

func (c *CLI) ShowGames(games []storage.GameRecord) {
	if len(games) == 0 {
		c.ShowMessage("No saved games.")
		return
	}

	w := tabwriter.NewWriter(c.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tName\tWhite\tBlack\tStarted\tResult")
	for _, g := range games {
		result := "ongoing"
		if color, ok := core.ParseColor(g.Winner); ok {
			result = color.Name() + " won"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			g.GameID, g.Options.Name, g.WhiteName, g.BlackName,
			g.StartTimeUTC.Local().Format(time.DateTime), result)
	}
	w.Flush()
}

func (c *CLI) ShowOptions(opts board.Options) {
	c.ShowMessage(fmt.Sprintf("Options: %s", opts))
}

func (c *CLI) ShowPieceMoves(square board.Position, moves []board.Move) {
	if len(moves) == 0 {
		c.ShowMessage(fmt.Sprintf("%s has no moves.", square))
		return
	}
	dests := make([]string, len(moves))
	for i, m := range moves {
		dests[i] = m.To().String()
	}
	c.ShowMessage(fmt.Sprintf("%s can move to: %s", square, strings.Join(dests, ", ")))
}
