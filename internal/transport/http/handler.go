package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/engine"
	"checkers/internal/service"
	"checkers/internal/storage"
)

type HTTPHandler struct {
	svc      *service.Service
	defaults board.Options
}

func NewHTTPHandler(svc *service.Service, defaults board.Options) *HTTPHandler {
	return &HTTPHandler{svc: svc, defaults: defaults}
}

// Config carries the server knobs the app is built with.
type Config struct {
	DevMode  bool
	Defaults board.Options
	// RateLimit is requests per second per client on /api/v1; zero picks
	// 1, or 10 in dev mode.
	RateLimit int
}

func NewFiberApp(svc *service.Service, cfg Config) *fiber.App {
	h := NewHTTPHandler(svc, cfg.Defaults)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second, // covers long-poll waits
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	app.Get("/health", h.Health)

	api := app.Group("/api/v1")

	maxReq := cfg.RateLimit
	if maxReq <= 0 {
		maxReq = 1
		if cfg.DevMode {
			maxReq = 10
		}
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			// First hop of X-Forwarded-For, else the peer address
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrCodeRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	api.Post("/games", h.CreateGame)
	api.Get("/games", h.ListGames)
	api.Get("/games/:gameId", h.GetGame)
	api.Delete("/games/:gameId", h.DeleteGame)
	api.Post("/games/:gameId/load", h.LoadGame)
	api.Post("/games/:gameId/moves", h.MakeMove)
	api.Post("/games/:gameId/computer", h.ComputerMove)
	api.Get("/games/:gameId/board", h.GetBoard)
	api.Get("/games/:gameId/pieces/:square", h.PieceMoves)

	return app
}

// contentTypeValidator ensures POST requests carry JSON when they have a body
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get(fiber.HeaderContentType)
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrCodeInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrCodeInternalError,
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		response.Error = fe.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrCodeGameNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrCodeInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrCodeRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// sendError maps service and engine errors onto HTTP statuses and codes.
func sendError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	resp := core.ErrorResponse{Details: err.Error()}

	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, storage.ErrNotFound):
		status = fiber.StatusNotFound
		resp.Error, resp.Code = "game not found", core.ErrCodeGameNotFound
	case errors.Is(err, service.ErrGameOver):
		resp.Error, resp.Code = "game is over", core.ErrCodeGameOver
	case errors.Is(err, service.ErrNotHumanTurn):
		resp.Error, resp.Code = "not human player's turn", core.ErrCodeNotHumanTurn
	case errors.Is(err, service.ErrNotComputerTurn):
		resp.Error, resp.Code = "not computer player's turn", core.ErrCodeNotComputerTurn
	case errors.Is(err, engine.ErrWrongTurn):
		resp.Error, resp.Code = "wrong turn", core.ErrCodeWrongTurn
	case errors.Is(err, engine.ErrIllegalMove), errors.Is(err, engine.ErrCaptureRequired):
		resp.Error, resp.Code = "invalid move", core.ErrCodeInvalidMove
	case errors.Is(err, service.ErrNoStorage):
		status = fiber.StatusServiceUnavailable
		resp.Error, resp.Code = "storage is disabled", core.ErrCodeInternalError
	default:
		status = fiber.StatusInternalServerError
		resp.Error, resp.Code = "internal server error", core.ErrCodeInternalError
	}

	return c.Status(status).JSON(resp)
}

// Health check endpoint
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"storage": h.svc.StorageHealth(),
		"time":    time.Now().Unix(),
	})
}
