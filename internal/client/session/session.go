// Package session holds the debug client's state between commands.
package session

import (
	"checkers/internal/client/api"
	"checkers/internal/core"
)

type Session struct {
	APIBaseURL  string
	Client      *api.Client
	CurrentGame string
	LastPlies   int
	State       *core.GameResponse
	Verbose     bool
}

func New(baseURL string, client *api.Client) *Session {
	return &Session{APIBaseURL: baseURL, Client: client}
}

// Track makes g the current game and remembers its ply count for polling.
func (s *Session) Track(g *core.GameResponse) {
	s.CurrentGame = g.GameID
	s.LastPlies = g.Plies
	s.State = g
}

func (s *Session) Forget() {
	s.CurrentGame = ""
	s.LastPlies = 0
	s.State = nil
}
