// Package api is the client for the storefront's REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alextreichler/embroiderystore/internal/cache"
	"github.com/alextreichler/embroiderystore/internal/metrics"
)

type Client struct {
	BaseURL     string
	HTTP        *http.Client
	Cache       cache.Cache
	CategoryTTL time.Duration

	token string
}

func NewClient(baseURL string, timeout time.Duration, c cache.Cache, categoryTTL time.Duration) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		HTTP:        &http.Client{Timeout: timeout},
		Cache:       c,
		CategoryTTL: categoryTTL,
	}
}

// As returns a copy of the client that sends token as the bearer.
func (c *Client) As(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, endpoint, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, endpoint string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}
	return c.do(ctx, method, endpoint, endpoint, body, "application/json", out)
}

// do performs one call. label names the endpoint in metrics without ids.
func (c *Client) do(ctx context.Context, method, endpoint, label string, body []byte, contentType string, out any) (err error) {
	defer metrics.ObserveUpstream(method, label, time.Now(), &err)

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, rdr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, label, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, label, err)
	}
	slog.Debug("Backend call", "method", method, "endpoint", endpoint, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, label, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, label, err)
	}
	return nil
}

// decodeList accepts either a bare JSON array or an object that holds the
// array under one of keys.
func decodeList(raw json.RawMessage, dest any, keys ...string) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, dest)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return err
	}
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return decodeList(v, dest)
		}
	}
	return fmt.Errorf("response has none of %v", keys)
}

// decodeObject unwraps {"<key>": {...}} when present.
func decodeObject(raw json.RawMessage, dest any, key string) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		if v, ok := obj[key]; ok && len(v) > 0 && v[0] == '{' {
			return json.Unmarshal(v, dest)
		}
	}
	return json.Unmarshal(raw, dest)
}

// Message is the plain acknowledgement most mutations return.
type Message struct {
	Message string `json:"message"`
}
