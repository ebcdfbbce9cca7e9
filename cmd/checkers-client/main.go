// Package main is an interactive debugging client for the checkers API.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"checkers/internal/client/api"
	"checkers/internal/client/commands"
	"checkers/internal/client/display"
	"checkers/internal/client/session"
	"checkers/internal/core"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "API base URL")
	flag.Parse()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("checkers"),
		HistoryFile:     ".checkers_client_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	out := rl.Stdout()
	s := session.New(*baseURL, api.New(*baseURL, out))

	ask := func(prompt string) string {
		rl.SetPrompt(prompt)
		defer rl.SetPrompt(buildPrompt(s))
		line, err := rl.Readline()
		if err != nil {
			return ""
		}
		return line
	}

	fmt.Fprintf(out, "%sCheckers Debug Client%s\n", display.Cyan, display.Reset)
	fmt.Fprintf(out, "%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Fprintf(out, "Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s, out, ask)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}

		if err := registry.Execute(strings.TrimSpace(line)); errors.Is(err, commands.ErrExit) {
			break
		}
	}
}

func buildPrompt(s *session.Session) string {
	prompt := "checkers"
	if s.CurrentGame != "" {
		id := s.CurrentGame
		if len(id) > 8 {
			id = id[:8]
		}
		prompt += display.Yellow + " [" + display.White + id + display.Yellow + "]" + display.Reset
	}
	if g := s.State; g != nil && g.GameID == s.CurrentGame {
		player := g.Players.White
		if g.Turn == "b" {
			player = g.Players.Black
		}
		kind := "h"
		if player != nil && player.Type == core.PlayerComputer {
			kind = "c"
		}
		prompt += fmt.Sprintf(" - Turn:%s(%s)", display.ColorForTurn(g.Turn), kind)
	}
	return display.Prompt(prompt)
}
