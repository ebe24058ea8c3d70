package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"unibase/internal/api"
	"unibase/internal/game"
	"unibase/internal/logbook"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response. Unwrap yields the matching game sentinel
// when the server reported a known kind.
type APIError struct {
	Status  int
	Message string
	Kind    string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("api status %d (%s): %s", e.Status, e.Kind, e.Message)
	}
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Kind {
	case "InsufficientUsers":
		return game.ErrInsufficientUsers
	case "NotUnlocked":
		return game.ErrNotUnlocked
	case "InsufficientFund":
		return game.ErrInsufficientFund
	case "IPORequirementsNotMet":
		return game.ErrIPORequirementsNotMet
	case "UnknownUnit":
		return game.ErrUnknownUnit
	}
	return nil
}

type LogResponse struct {
	Entries []logbook.Entry `json:"entries"`
	Lines   []string        `json:"lines"`
}

func (c *Client) State(ctx context.Context) (game.View, error) {
	var out game.View
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/state", &out)
	return out, err
}

func (c *Client) Log(ctx context.Context, limit int) (LogResponse, error) {
	var out LogResponse
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/log?limit="+strconv.Itoa(limit), &out)
	return out, err
}

func (c *Client) ManualPost(ctx context.Context) (api.CommandResponse, error) {
	return c.command(ctx, "/v1/post")
}

func (c *Client) PitchInvestors(ctx context.Context) (api.CommandResponse, error) {
	return c.command(ctx, "/v1/pitch")
}

func (c *Client) PurchaseUnit(ctx context.Context, unitID string) (api.CommandResponse, error) {
	return c.command(ctx, "/v1/units/"+url.PathEscape(unitID)+"/buy")
}

func (c *Client) Prestige(ctx context.Context) (api.CommandResponse, error) {
	return c.command(ctx, "/v1/ipo")
}

func (c *Client) command(ctx context.Context, path string) (api.CommandResponse, error) {
	var out api.CommandResponse
	err := c.jsonRequest(ctx, http.MethodPost, path, &out)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var body struct {
			Error string `json:"error"`
			Kind  string `json:"kind"`
		}
		if json.Unmarshal(raw, &body) == nil && body.Error != "" {
			apiErr.Message = body.Error
			apiErr.Kind = body.Kind
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
