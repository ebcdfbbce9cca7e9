// Package api is a thin JSON client for the checkers HTTP API.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"checkers/internal/client/display"
	"checkers/internal/core"
)

// Error is a non-2xx reply from the server.
type Error struct {
	Status   int
	Response core.ErrorResponse
}

func (e *Error) Error() string {
	if e.Response.Details != "" {
		return fmt.Sprintf("%d %s: %s (%s)", e.Status, e.Response.Code, e.Response.Error, e.Response.Details)
	}
	if e.Response.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Response.Code, e.Response.Error)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Time    int64  `json:"time"`
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Out        io.Writer
	Verbose    bool
}

func New(baseURL string, out io.Writer) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second, // must exceed the server's long-poll wait
		},
		Out: out,
	}
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(u string) {
	c.BaseURL = strings.TrimRight(u, "/")
}

func (c *Client) doRequest(method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(data)
		if c.Verbose {
			fmt.Fprintf(c.Out, "%s[API] %s %s%s\n%s\n", display.Blue, method, path, display.Reset, data)
		}
	} else if c.Verbose {
		fmt.Fprintf(c.Out, "%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if c.Verbose {
		statusColor := display.Green
		if resp.StatusCode >= 400 {
			statusColor = display.Red
		}
		fmt.Fprintf(c.Out, "%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)
		if len(respBody) > 0 {
			display.PrettyPrintRaw(c.Out, respBody)
		}
	}

	if resp.StatusCode >= 400 {
		apiErr := &Error{Status: resp.StatusCode}
		_ = json.Unmarshal(respBody, &apiErr.Response)
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func gamePath(gameID string, rest ...string) string {
	p := "/api/v1/games/" + url.PathEscape(gameID)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest(http.MethodGet, "/health", nil, &resp)
	return &resp, err
}

func (c *Client) CreateGame(req *core.CreateGameRequest) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(http.MethodPost, "/api/v1/games", req, &resp)
	return &resp, err
}

func (c *Client) ListGames() ([]core.SavedGameResponse, error) {
	var resp []core.SavedGameResponse
	err := c.doRequest(http.MethodGet, "/api/v1/games", nil, &resp)
	return resp, err
}

func (c *Client) GetGame(gameID string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(http.MethodGet, gamePath(gameID), nil, &resp)
	return &resp, err
}

// WaitForGame long-polls until the game has moved past plies or the
// server's wait expires.
func (c *Client) WaitForGame(gameID string, plies int) (*core.GameResponse, error) {
	var resp core.GameResponse
	path := fmt.Sprintf("%s?wait=true&plies=%d", gamePath(gameID), plies)
	err := c.doRequest(http.MethodGet, path, nil, &resp)
	return &resp, err
}

func (c *Client) DeleteGame(gameID string) error {
	return c.doRequest(http.MethodDelete, gamePath(gameID), nil, nil)
}

func (c *Client) LoadGame(gameID string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(http.MethodPost, gamePath(gameID, "load"), nil, &resp)
	return &resp, err
}

func (c *Client) MakeMove(gameID, move string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(http.MethodPost, gamePath(gameID, "moves"), &core.MoveRequest{Move: move}, &resp)
	return &resp, err
}

func (c *Client) ComputerMove(gameID string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(http.MethodPost, gamePath(gameID, "computer"), nil, &resp)
	return &resp, err
}

func (c *Client) GetBoard(gameID string) (*core.BoardResponse, error) {
	var resp core.BoardResponse
	err := c.doRequest(http.MethodGet, gamePath(gameID, "board"), nil, &resp)
	return &resp, err
}

func (c *Client) PieceMoves(gameID, square string) (*core.PieceMovesResponse, error) {
	var resp core.PieceMovesResponse
	err := c.doRequest(http.MethodGet, gamePath(gameID, "pieces", url.PathEscape(square)), nil, &resp)
	return &resp, err
}

// RawRequest sends body as-is when it is valid JSON, or as a JSON string
// otherwise, and prints whatever comes back.
func (c *Client) RawRequest(method, path, body string) error {
	var payload any
	if body != "" {
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			payload = body
		}
	}
	var result json.RawMessage
	if err := c.doRequest(method, path, payload, &result); err != nil {
		return err
	}
	if !c.Verbose && len(result) > 0 {
		display.PrettyPrintRaw(c.Out, result)
	}
	return nil
}
