// Package panelclient talks to the token-gated panel API of a diary.
package panelclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"queridodiario/internal/models"
	"queridodiario/internal/service"
)

const accessTokenHeader = "X-Access-Token"

var (
	// ErrUnauthorized is returned when the server rejects the access token
	ErrUnauthorized = errors.New("panel access token rejected")
	// ErrNotFound is returned for activities or routines outside the diary
	ErrNotFound = errors.New("panel resource not found")
)

// APIError is a non-2xx response from the panel API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("panel api: %d %s", e.Status, e.Message)
}

// Unwrap maps auth and lookup failures to the package sentinels
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Client is a thin wrapper over the panel endpoints
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the diary identified by token
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TokenFromURL extracts the access token from a shared panel link
// (https://host/painel#token=...). A bare token is returned unchanged.
func TokenFromURL(link string) (string, error) {
	if !strings.Contains(link, "://") {
		return strings.TrimSpace(link), nil
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("failed to parse panel link: %w", err)
	}
	values, err := url.ParseQuery(u.Fragment)
	if err != nil {
		return "", fmt.Errorf("failed to parse panel link fragment: %w", err)
	}
	token := values.Get("token")
	if token == "" {
		token = u.Query().Get("token")
	}
	if token == "" {
		return "", errors.New("panel link has no token")
	}
	return token, nil
}

// Snapshot fetches the panel for date. An empty date lets the server pick the
// last active day.
func (c *Client) Snapshot(ctx context.Context, date string) (*models.DaySnapshot, error) {
	path := "/api/painel"
	if date != "" {
		path += "?" + url.Values{"date": {date}}.Encode()
	}

	var snap models.DaySnapshot
	if err := c.do(ctx, http.MethodGet, path, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Complete records a mark or tap
func (c *Client) Complete(ctx context.Context, in service.CompletionInput) (*service.CompletionResult, error) {
	var result service.CompletionResult
	if err := c.do(ctx, http.MethodPost, "/api/painel/complete", in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveNote stores the note of date. A nil note means it was cleared.
func (c *Client) SaveNote(ctx context.Context, date, content string) (*models.DayNote, error) {
	var out struct {
		Note *models.DayNote `json:"note"`
	}
	body := map[string]string{"date": date, "content": content}
	if err := c.do(ctx, http.MethodPost, "/api/painel/notes", body, &out); err != nil {
		return nil, err
	}
	return out.Note, nil
}

// CreateExtraActivity adds a one-off activity for a date
func (c *Client) CreateExtraActivity(ctx context.Context, in service.ExtraActivityInput) (*models.ExtraActivity, error) {
	var out struct {
		ExtraActivity *models.ExtraActivity `json:"extraActivity"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/painel/extra-activity", in, &out); err != nil {
		return nil, err
	}
	return out.ExtraActivity, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dst any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set(accessTokenHeader, c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&errBody)
		if errBody.Error == "" {
			errBody.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
