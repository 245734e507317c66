// Package flapjack is the HTTP adapter for the search engine: query execution and rule storage.
package flapjack

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

	"go.uber.org/zap"

	"github.com/kailas-cloud/merchstudio/internal/domain"
	"github.com/kailas-cloud/merchstudio/internal/metrics"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultHitsPerPage = 50
	maxErrorBody       = 4 << 10

	headerAppID  = "x-algolia-application-id"
	headerAPIKey = "x-algolia-api-key"
)

// Config holds the engine connection settings.
type Config struct {
	BaseURL     string
	AppID       string
	APIKey      string
	Timeout     time.Duration
	HitsPerPage int
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// Client talks to the engine REST API.
type Client struct {
	baseURL     string
	appID       string
	apiKey      string
	hitsPerPage int
	http        *http.Client
	logger      *zap.Logger
}

// New creates an engine client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, errors.New("engine base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid engine base url: %w", err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	hpp := cfg.HitsPerPage
	if hpp <= 0 {
		hpp = defaultHitsPerPage
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:     base,
		appID:       cfg.AppID,
		apiKey:      cfg.APIKey,
		hitsPerPage: hpp,
		http:        hc,
		logger:      logger,
	}, nil
}

// APIError is a non-success engine response that maps to no domain error.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("engine returned %d: %s", e.Status, e.Message)
}

// call describes one engine request.
type call struct {
	op       string
	method   string
	path     string
	body     any
	out      any
	notFound error // returned on 404; nil means treat 404 like any other client error
}

func (c *Client) do(ctx context.Context, cl call) error {
	start := time.Now()
	err := c.roundTrip(ctx, cl)
	metrics.EngineRequestDuration.WithLabelValues(cl.op).Observe(time.Since(start).Seconds())

	status := "success"
	switch {
	case err == nil:
	case cl.notFound != nil && errors.Is(err, cl.notFound):
		status = "not_found"
	default:
		status = "error"
		c.logger.Warn("engine request failed",
			zap.String("operation", cl.op),
			zap.String("path", cl.path),
			zap.Error(err),
		)
	}
	metrics.EngineRequestsTotal.WithLabelValues(cl.op, status).Inc()
	return err
}

func (c *Client) roundTrip(ctx context.Context, cl call) error {
	var body io.Reader = http.NoBody
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", cl.op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.appID != "" {
		req.Header.Set(headerAppID, c.appID)
	}
	if c.apiKey != "" {
		req.Header.Set(headerAPIKey, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", cl.op, ctx.Err())
		}
		return fmt.Errorf("%s: %w: %v", cl.op, domain.ErrEngineUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return c.statusError(cl, resp)
	}
	if cl.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		return fmt.Errorf("%s: decode response: %w: %v", cl.op, domain.ErrEngineUnavailable, err)
	}
	return nil
}

func (c *Client) statusError(cl call, resp *http.Response) error {
	msg := readMessage(resp.Body)
	switch {
	case resp.StatusCode == http.StatusNotFound && cl.notFound != nil:
		return fmt.Errorf("%s: %w", cl.op, cl.notFound)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%s: %w: status %d: %s", cl.op, domain.ErrEngineUnavailable, resp.StatusCode, msg)
	default:
		return fmt.Errorf("%s: %w", cl.op, &APIError{Status: resp.StatusCode, Message: msg})
	}
}

// readMessage extracts the "message" field of an engine error body, falling back to the raw text.
func readMessage(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var parsed struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &parsed) == nil && parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(data))
}

// HealthCheck verifies the engine answers its health endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.do(ctx, call{op: "health", method: http.MethodGet, path: "/health"})
}

func indexPath(index string, parts ...string) string {
	var b strings.Builder
	b.WriteString("/1/indexes/")
	b.WriteString(url.PathEscape(index))
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(p)
	}
	return b.String()
}
