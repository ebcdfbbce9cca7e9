// Package commands implements the debug client's command set.
package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"

	"checkers/internal/client/display"
	"checkers/internal/client/session"
)

// ErrExit is returned by Execute when the user asks to leave.
var ErrExit = errors.New("exit requested")

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Group       string
	Handler     func(r *Registry, args []string) error
}

// Registry manages command registration and execution
type Registry struct {
	session  *session.Session
	out      io.Writer
	ask      func(prompt string) string
	commands map[string]*Command
}

// NewRegistry wires every command. ask reads one line of user input for
// interactive prompts.
func NewRegistry(s *session.Session, out io.Writer, ask func(string) string) *Registry {
	r := &Registry{
		session:  s,
		out:      out,
		ask:      ask,
		commands: make(map[string]*Command),
	}

	r.registerGameCommands()
	r.registerDebugCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Group:       "Utility",
		Handler:     helpHandler,
	})
	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Group:       "Utility",
		Handler: func(r *Registry, _ []string) error {
			fmt.Fprintf(r.out, "%sGoodbye!%s\n", display.Cyan, display.Reset)
			return ErrExit
		},
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

// Execute runs one input line. A trailing -v turns on verbose output for
// that command. Handler errors are printed; only ErrExit is returned.
func (r *Registry) Execute(input string) error {
	parts, err := shellquote.Split(input)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %s%s\n", display.Red, err.Error(), display.Reset)
		return nil
	}
	if len(parts) == 0 {
		return nil
	}

	verbose := r.session.Verbose
	if parts[len(parts)-1] == "-v" {
		verbose = true
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return nil
	}

	cmd, exists := r.commands[parts[0]]
	if !exists {
		fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", display.Red, parts[0], display.Reset)
		fmt.Fprintln(r.out, "Type 'help' for available commands")
		return nil
	}

	r.session.Client.Verbose = verbose
	defer func() { r.session.Client.Verbose = r.session.Verbose }()

	if err := cmd.Handler(r, parts[1:]); err != nil {
		if errors.Is(err, ErrExit) {
			return err
		}
		fmt.Fprintf(r.out, "%sError: %s%s\n", display.Red, err.Error(), display.Reset)
	}
	return nil
}

func helpHandler(r *Registry, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(r.out, "\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			fmt.Fprintf(r.out, "Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Fprintf(r.out, "Usage: %s\n", cmd.Usage)
		return nil
	}

	groups := map[string][]*Command{}
	for name, cmd := range r.commands {
		if name == cmd.Name {
			groups[cmd.Group] = append(groups[cmd.Group], cmd)
		}
	}

	fmt.Fprintf(r.out, "\n%sAvailable Commands:%s\n", display.Cyan, display.Reset)
	for _, group := range []string{"Game", "Utility"} {
		cmds := groups[group]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
		fmt.Fprintf(r.out, "\n%s%s Commands:%s\n", display.Yellow, group, display.Reset)
		for _, cmd := range cmds {
			short := "   "
			if cmd.ShortName != "" {
				short = "[" + cmd.ShortName + "]"
			}
			fmt.Fprintf(r.out, "  %s %-10s %s\n", short, cmd.Name, cmd.Description)
		}
	}

	fmt.Fprintln(r.out, "\nType 'help <command>' for detailed usage")
	fmt.Fprintln(r.out, "Add '-v' to any command for verbose output")
	return nil
}

func (r *Registry) requireGame(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if r.session.CurrentGame == "" {
		return "", fmt.Errorf("no current game; use 'new' or 'join <gameId>'")
	}
	return r.session.CurrentGame, nil
}

func (r *Registry) prompt(text, def string) string {
	answer := strings.TrimSpace(r.ask(display.Yellow + text + display.Reset))
	if answer == "" {
		return def
	}
	return answer
}
