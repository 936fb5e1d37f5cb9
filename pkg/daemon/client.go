// Package daemon is the HTTP client for the dashboard API that fronts a
// component daemon. Every reply is a JSON object carrying
// {"success": bool, "message": string} next to its payload; any reply
// without success=true is returned as a *ServerError holding the message.
package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/pluqqy/crux-terminal/pkg/models"
)

// ServerError is a failed reply from the API
type ServerError struct {
	Op      string
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed", e.Op)
	}
	return e.Message
}

// Config configures a Client
type Config struct {
	// BaseURL is the API root, e.g. "http://localhost:8080/api". Required.
	BaseURL string

	// HTTPClient defaults to a client with Timeout (no timeout if zero)
	HTTPClient *http.Client
	Timeout    time.Duration

	Logger *slog.Logger
}

// Client talks to the dashboard API. It holds no connection state; the
// daemon it operates on is selected server-side by ConnectDaemon.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("daemon client: base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, errors.Wrapf(err, "daemon client: invalid base URL %q", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}, nil
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// call performs one request and decodes the reply into out (if non-nil)
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body any, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "%s: encoding request", op)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return errors.Wrapf(err, "%s: building request", op)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("api request", "op", op, "method", method, "url", target)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s: request failed", op)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "%s: reading response", op)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return errors.Wrapf(err, "%s: decoding response (HTTP %d)", op, resp.StatusCode)
	}
	if !env.Success {
		c.logger.Debug("api request rejected", "op", op, "status", resp.StatusCode, "message", env.Message)
		return &ServerError{Op: op, Message: env.Message}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return errors.Wrapf(err, "%s: decoding payload", op)
		}
	}
	return nil
}

// ConnectDaemon points the API server at the daemon listening on addr
func (c *Client) ConnectDaemon(ctx context.Context, addr string) error {
	return c.call(ctx, "connect daemon", http.MethodGet, "/daemon/connect",
		url.Values{"daemon": {addr}}, nil, nil)
}

// GetDaemon returns the address of the connected daemon, or "" if none
func (c *Client) GetDaemon(ctx context.Context) (string, error) {
	var out struct {
		Address *string `json:"address"`
	}
	if err := c.call(ctx, "get daemon", http.MethodGet, "/daemon/get", nil, nil, &out); err != nil {
		return "", err
	}
	if out.Address == nil {
		return "", nil
	}
	return *out.Address, nil
}

// ListComponents returns every loaded component keyed by address
func (c *Client) ListComponents(ctx context.Context) (map[string]models.Descriptor, error) {
	var out struct {
		Components map[string]models.Descriptor `json:"components"`
	}
	if err := c.call(ctx, "list components", http.MethodGet, "/components/list", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Components == nil {
		out.Components = map[string]models.Descriptor{}
	}
	return out.Components, nil
}

// GetComponent returns the descriptor of the component at address
func (c *Client) GetComponent(ctx context.Context, address string) (models.Descriptor, error) {
	var out struct {
		Component models.Descriptor `json:"component"`
	}
	err := c.call(ctx, "get component", http.MethodGet, "/components/get",
		url.Values{"address": {address}}, nil, &out)
	return out.Component, err
}

// LoadComponent starts the component at path (relative to the daemon) and
// returns the address it was given.
func (c *Client) LoadComponent(ctx context.Context, path string) (string, error) {
	var out struct {
		Address string `json:"address"`
	}
	err := c.call(ctx, "load component", http.MethodGet, "/components/load",
		url.Values{"path": {path}}, nil, &out)
	return out.Address, err
}

// SendToComponent sends a message to a component and returns its response.
// The message must carry a "name"; otherwise nothing is sent and
// models.ErrMissingMessageName is returned.
func (c *Client) SendToComponent(ctx context.Context, address string, message map[string]any) (any, error) {
	if _, ok := message["name"]; !ok {
		return nil, models.ErrMissingMessageName
	}

	var out struct {
		Response any `json:"response"`
	}
	err := c.call(ctx, "send to component", http.MethodPost, "/components/send",
		url.Values{"address": {address}}, message, &out)
	return out.Response, err
}
