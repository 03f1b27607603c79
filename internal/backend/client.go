// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/ragdesk/internal/model"
)

// Endpoint paths.
const (
	EndpointReset  = "/reset"
	EndpointIngest = "/ingest"
	EndpointChat   = "/chat"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 16 << 20

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Config holds configuration options for the backend client.
type Config struct {
	// BaseURL is the backend base URL (default: http://127.0.0.1:8000)
	BaseURL string

	// Timeout bounds a single call, including reading the body (default: 120s).
	// Zero after defaults means no client-side limit.
	Timeout time.Duration

	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
}

// DefaultBaseURL is where the backend listens unless configured otherwise.
const DefaultBaseURL = "http://127.0.0.1:8000"

// DefaultTimeout bounds a single call. Embedding large documents is slow.
const DefaultTimeout = 120 * time.Second

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client issues JSON POST requests to the backend.
//
// The Client is safe for concurrent use.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a client with the default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with a custom configuration.
func NewClientWithConfig(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		config:     &cfg,
		httpClient: httpClient,
	}
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Call POSTs payload as JSON to endpoint and returns the parsed response
// body. A nil payload sends no body. Exactly one attempt is made.
func (c *Client) Call(ctx context.Context, endpoint string, payload interface{}) (json.RawMessage, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		body = bytes.NewReader(data)
	}

	url := c.config.BaseURL + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, &ConnectionError{Endpoint: endpoint, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("REQUEST_ERROR | endpoint=%s type=connection err=%v", endpoint, err)
		return nil, connectionError(ctx, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Printf("REQUEST_ERROR | endpoint=%s type=connection stage=read err=%v", endpoint, err)
		return nil, connectionError(ctx, endpoint, err)
	}

	log.Printf("REQUEST | endpoint=%s status=%d bytes=%d elapsed=%s",
		endpoint, resp.StatusCode, len(raw), time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(raw),
		}
	}

	if !json.Valid(raw) {
		return nil, &MalformedResponseError{Endpoint: endpoint, Reason: "body is not valid JSON"}
	}
	return json.RawMessage(raw), nil
}

// connectionError wraps a transport failure, naming timeouts and
// cancellations explicitly.
func connectionError(ctx context.Context, endpoint string, err error) *ConnectionError {
	msg := "backend unreachable"
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		msg = "request timed out"
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		msg = "request cancelled"
	}
	return &ConnectionError{Endpoint: endpoint, Message: msg, Cause: err}
}

// =============================================================================
// TYPED OPERATIONS
// =============================================================================

// Reset wipes the backend's knowledge store. The response body is ignored,
// so a success status with an unparseable body still counts as success.
func (c *Client) Reset(ctx context.Context) error {
	_, err := c.Call(ctx, EndpointReset, nil)
	var badErr *MalformedResponseError
	if errors.As(err, &badErr) {
		return nil
	}
	return err
}

// Ingest submits text for chunking and indexing.
func (c *Client) Ingest(ctx context.Context, text string) (model.IngestResult, error) {
	raw, err := c.Call(ctx, EndpointIngest, IngestRequest{Text: text})
	if err != nil {
		return model.IngestResult{}, err
	}

	var p ingestPayload
	if err := decodeInto(EndpointIngest, raw, &p); err != nil {
		return model.IngestResult{}, err
	}
	return model.IngestResult{Chunks: *p.Chunks, Status: p.Status}, nil
}

// Chat asks a question against the indexed knowledge.
func (c *Client) Chat(ctx context.Context, question string) (model.ChatResponse, error) {
	raw, err := c.Call(ctx, EndpointChat, ChatRequest{Question: question})
	if err != nil {
		return model.ChatResponse{}, err
	}

	var p chatPayload
	if err := decodeInto(EndpointChat, raw, &p); err != nil {
		var badErr *MalformedResponseError
		if errors.As(err, &badErr) {
			badErr.Detail = p.Detail
		}
		return model.ChatResponse{}, err
	}
	return model.ChatResponse{
		Answer:    p.Answer,
		Citations: p.Citations,
		TimeTaken: p.TimeTaken,
	}, nil
}
