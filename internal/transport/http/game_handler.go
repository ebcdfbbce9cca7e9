package http

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"checkers/internal/cli"
	"checkers/internal/core"
	"checkers/internal/game"
	"checkers/internal/service"
)

// CreateGame starts a game from a validated CreateGameRequest
func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, ok := c.Locals(validatedBodyKey).(*core.CreateGameRequest)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "missing request body")
	}

	opts := h.defaults
	if req.Options != nil {
		opts.Width = req.Options.Width
		opts.Height = req.Options.Height
		opts.MandatoryTake = req.Options.MandatoryTake
		opts.BlackStarts = req.Options.BlackStarts
	}
	if req.Name != "" {
		opts.Name = req.Name
	}

	g, err := h.svc.NewGame(service.NewGameParams{Options: opts, White: req.White, Black: req.Black})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "failed to create game",
			Code:    core.ErrCodeInvalidRequest,
			Details: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(buildGameResponse(g))
}

// ListGames returns the saved games known to storage
func (h *HTTPHandler) ListGames(c *fiber.Ctx) error {
	records, err := h.svc.ListSavedGames()
	if err != nil {
		return sendError(c, err)
	}

	out := make([]core.SavedGameResponse, 0, len(records))
	for _, r := range records {
		out = append(out, core.SavedGameResponse{
			GameID:    r.GameID,
			Name:      r.Options.Name,
			White:     r.WhiteName,
			Black:     r.BlackName,
			StartedAt: r.StartTimeUTC.Unix(),
			Winner:    r.Winner,
		})
	}
	return c.JSON(out)
}

// GetGame returns the current state. With ?wait=true&plies=N it blocks
// until the game has moved past N plies or the wait times out.
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	if c.QueryBool("wait") {
		plies, err := strconv.Atoi(c.Query("plies", "0"))
		if err != nil || plies < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "plies must be a non-negative integer")
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), service.WaitTimeout)
		defer cancel()
		if err := h.svc.WaitForChange(ctx, gameID, plies); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return sendError(c, err)
		}
	}

	g, err := h.svc.GetGame(gameID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(buildGameResponse(g))
}

// DeleteGame removes a game from memory and storage
func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	if err := h.svc.DeleteGame(c.Params("gameId")); err != nil {
		return sendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LoadGame brings a saved game back into memory
func (h *HTTPHandler) LoadGame(c *fiber.Ctx) error {
	g, err := h.svc.ResumeGame(c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(buildGameResponse(g))
}

// MakeMove plays a human move, then lets a computer opponent answer.
func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	req, ok := c.Locals(validatedBodyKey).(*core.MoveRequest)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "missing request body")
	}

	result, err := h.svc.MakeHumanMove(gameID, req.Move)
	if err != nil {
		return sendError(c, err)
	}

	g, err := h.svc.GetGame(gameID)
	if err != nil {
		return sendError(c, err)
	}

	// Answer for a computer opponent, including any capture chain.
	for computerToMove(g) {
		reply, err := h.svc.MakeComputerMove(gameID)
		if err != nil {
			log.Warn().Err(err).Str("game", gameID).Msg("computer reply failed")
			break
		}
		result = reply
	}

	resp := buildGameResponse(g)
	resp.LastMove = moveInfo(result)
	return c.JSON(resp)
}

// ComputerMove asks the engine to play the side to move
func (h *HTTPHandler) ComputerMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	result, err := h.svc.MakeComputerMove(gameID)
	if err != nil {
		return sendError(c, err)
	}

	g, err := h.svc.GetGame(gameID)
	if err != nil {
		return sendError(c, err)
	}
	resp := buildGameResponse(g)
	resp.LastMove = moveInfo(result)
	return c.JSON(resp)
}

// GetBoard returns an ASCII drawing of the board
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	g, err := h.svc.GetGame(gameID)
	if err != nil {
		return sendError(c, err)
	}

	g.Lock()
	ascii := cli.RenderBoard(g.Engine().Board(), cli.ThemeOff)
	g.Unlock()

	return c.JSON(core.BoardResponse{GameID: gameID, Board: ascii})
}

// PieceMoves lists the destinations of the piece on :square
func (h *HTTPHandler) PieceMoves(c *fiber.Ctx) error {
	pm, err := h.svc.PieceMoves(c.Params("gameId"), c.Params("square"))
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			return sendError(c, err)
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	dests := make([]string, 0, len(pm.Moves))
	for _, m := range pm.Moves {
		dests = append(dests, m.To().String())
	}
	return c.JSON(core.PieceMovesResponse{
		Square:       pm.Square.String(),
		HasMoves:     pm.HasMoves,
		Destinations: dests,
	})
}

func computerToMove(g *game.Game) bool {
	g.Lock()
	defer g.Unlock()
	return g.State() == core.StateOngoing && g.NextPlayer().Type == core.PlayerComputer
}

func buildGameResponse(g *game.Game) core.GameResponse {
	g.Lock()
	defer g.Unlock()

	snap := g.Snapshot()
	grid := make([][]string, len(snap.Board))
	for x, col := range snap.Board {
		grid[x] = make([]string, len(col))
		for y, cell := range col {
			grid[x][y] = cell.String()
		}
	}

	resp := core.GameResponse{
		GameID: g.ID,
		Name:   g.Name,
		Width:  g.Options.Width,
		Height: g.Options.Height,
		Board:  grid,
		Turn:   g.NextTurn().String(),
		State:  g.State().Code(),
		Plies:  g.Plies(),
		Players: core.PlayersResponse{
			White: g.Player(core.ColorWhite),
			Black: g.Player(core.ColorBlack),
		},
	}
	if last := g.LastResult(); last != nil {
		resp.LastMove = moveInfo(last)
	}
	return resp
}

func moveInfo(r *game.MoveResult) *core.MoveInfo {
	if r == nil {
		return nil
	}
	return &core.MoveInfo{
		Move:        r.Move.String(),
		PlayerColor: r.Player.String(),
		Score:       r.Score,
		Depth:       r.Depth,
		Nodes:       r.Nodes,
	}
}
