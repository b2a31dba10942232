// Package client is a Go client for the pet HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vovakirdan/tui-pet/internal/api"
	"github.com/vovakirdan/tui-pet/internal/pet"
	"github.com/vovakirdan/tui-pet/internal/storage"
)

// DefaultBaseURL points at a locally running `pet serve`.
const DefaultBaseURL = "http://localhost:3001/api/pet"

// APIError is a non-success response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: %s (status %d)", e.Message, e.Status)
}

// Is matches pet.ErrBoundary for 400 responses carrying a boundary reason.
// Malformed requests are 400 too but are not boundary errors.
func (e *APIError) Is(target error) bool {
	return target == pet.ErrBoundary &&
		e.Status == http.StatusBadRequest &&
		pet.IsBoundaryReason(e.Message)
}

// Result is a successful state response.
type Result struct {
	State   pet.State
	Message string
}

// Client talks to one pet server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a client for baseURL, e.g. "http://localhost:3001/api/pet".
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: base URL %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetState fetches the current state.
func (c *Client) GetState(ctx context.Context) (Result, error) {
	return c.state(ctx, http.MethodGet, api.RouteState, nil)
}

// AddHeart adds one heart.
func (c *Client) AddHeart(ctx context.Context) (Result, error) {
	return c.state(ctx, http.MethodPost, api.RouteAddHeart, nil)
}

// RemoveHeart removes one heart.
func (c *Client) RemoveHeart(ctx context.Context) (Result, error) {
	return c.state(ctx, http.MethodPost, api.RouteRemoveHeart, nil)
}

// ToggleAudio flips the muted flag.
func (c *Client) ToggleAudio(ctx context.Context) (Result, error) {
	return c.state(ctx, http.MethodPost, api.RouteToggleAudio, nil)
}

// UpdateState sends a partial update; nil fields are omitted from the body.
func (c *Client) UpdateState(ctx context.Context, u pet.Update) (Result, error) {
	body, err := json.Marshal(u)
	if err != nil {
		return Result{}, fmt.Errorf("client: encode update: %w", err)
	}
	return c.state(ctx, http.MethodPut, api.RouteState, body)
}

// Reset restores the defaults.
func (c *Client) Reset(ctx context.Context) (Result, error) {
	return c.state(ctx, http.MethodPost, api.RouteReset, nil)
}

// History lists recent journal entries. limit <= 0 uses the server default.
func (c *Client) History(ctx context.Context, limit int) ([]storage.ChangeEntry, error) {
	path := api.RouteHistory
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var env api.Envelope[[]storage.ChangeEntry]
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, nil
	}
	return *env.Data, nil
}

func (c *Client) state(ctx context.Context, method, path string, body []byte) (Result, error) {
	var env api.Envelope[pet.State]
	if err := c.do(ctx, method, path, body, &env); err != nil {
		return Result{}, err
	}
	if env.Data == nil {
		return Result{}, fmt.Errorf("client: %s %s: response has no data", method, path)
	}
	return Result{State: *env.Data, Message: env.Message}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}

	// Decode the failure fields first so non-2xx bodies surface their message.
	var status struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &status); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("client: decode response: %w", err)
	}
	if resp.StatusCode >= 300 || !status.Success {
		msg := status.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}
