// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api is a typed HTTP client for the SLR backend. Request and
// response shapes mirror the backend's endpoints verbatim; the client adds
// nothing beyond transport concerns (timeouts, auth, 429 retry).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aidul23/multiagent-slr-system/internal/httputil"
	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

const defaultTimeout = 60 * time.Second

// Client calls the SLR backend API.
type Client struct {
	cfg    types.BackendConfig
	client *http.Client
}

// New creates a Client for the backend described by cfg.
func New(cfg types.BackendConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// url joins the base URL and an endpoint path.
func (c *Client) url(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// do sends the request with auth headers and 429 retry, and returns the
// response after checking for a non-2xx status. On error responses the
// backend's {"error": ...} envelope is folded into the returned error.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, c.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("backend request %s: %w", req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

// getJSON issues a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing %s response: %w", path, err)
	}
	return nil
}

// postJSON issues a POST with a JSON body and decodes the JSON response into
// out. A nil out discards the response body.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing %s response: %w", path, err)
	}
	return nil
}

// delete issues a DELETE to the given path (query string included).
func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.url(path), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

// decodeError turns a non-2xx response into an error, preferring the
// backend's error envelope when it parses.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error != "" {
			return fmt.Errorf("backend returned HTTP %d: %s", resp.StatusCode, envelope.Error)
		}
		if envelope.Detail != "" {
			return fmt.Errorf("backend returned HTTP %d: %s", resp.StatusCode, envelope.Detail)
		}
	}
	return fmt.Errorf("backend returned HTTP %d", resp.StatusCode)
}
