package core

// Request types

type OptionsConfig struct {
	Width         int  `json:"width" validate:"required,min=4,max=26,even"`
	Height        int  `json:"height" validate:"required,min=8,max=26,even"`
	MandatoryTake bool `json:"mandatoryTake"`
	BlackStarts   bool `json:"blackStarts"`
}

type CreateGameRequest struct {
	Name    string         `json:"name,omitempty" validate:"omitempty,max=64"`
	White   PlayerConfig   `json:"white" validate:"required"`
	Black   PlayerConfig   `json:"black" validate:"required"`
	Options *OptionsConfig `json:"options,omitempty"`
}

type MoveRequest struct {
	Move string `json:"move" validate:"required,min=5,max=16"` // "AB3 AC4"
}

// Response types

type GameResponse struct {
	GameID   string          `json:"gameId"`
	Name     string          `json:"name"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Board    [][]string      `json:"board"` // [column][row] cell tags
	Turn     string          `json:"turn"`  // "w" or "b"
	State    string          `json:"state"` // "ongoing", "white_wins", "black_wins"
	Plies    int             `json:"plies"`
	Players  PlayersResponse `json:"players"`
	LastMove *MoveInfo       `json:"lastMove,omitempty"`
}

type PlayersResponse struct {
	White *Player `json:"white"`
	Black *Player `json:"black"`
}

type MoveInfo struct {
	Move        string  `json:"move"`
	PlayerColor string  `json:"playerColor"` // "w" or "b"
	Score       float64 `json:"score,omitempty"`
	Depth       int     `json:"depth,omitempty"`
	Nodes       int     `json:"nodes,omitempty"`
}

type BoardResponse struct {
	GameID string `json:"gameId"`
	Board  string `json:"board"` // ASCII representation
}

type PieceMovesResponse struct {
	Square       string   `json:"square"`
	HasMoves     bool     `json:"hasMoves"`
	Destinations []string `json:"destinations"`
}

type SavedGameResponse struct {
	GameID    string `json:"gameId"`
	Name      string `json:"name"`
	White     string `json:"white"`
	Black     string `json:"black"`
	StartedAt int64  `json:"startedAt"`
	Winner    string `json:"winner,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// Error codes
const (
	ErrCodeGameNotFound      = "GAME_NOT_FOUND"
	ErrCodeInvalidMove       = "INVALID_MOVE"
	ErrCodeWrongTurn         = "WRONG_TURN"
	ErrCodeNotHumanTurn      = "NOT_HUMAN_TURN"
	ErrCodeNotComputerTurn   = "NOT_COMPUTER_TURN"
	ErrCodeGameOver          = "GAME_OVER"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)
