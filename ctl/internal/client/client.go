// Package client is a typed HTTP client for the pipeline-server API.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/datapipeline/pipelinemanager/pkg/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultTimeout bounds every request when the caller does not set one.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a non-2xx body is kept for the error message.
const maxErrorBody = 4 << 10

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	// Message is the server's {"error": ...} text, or the raw body when the
	// response was not an error object.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to one pipeline-server.
type Client struct {
	base *url.URL
	http *http.Client
}

// New returns a Client for the server at baseURL (e.g. http://localhost:8080).
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: server url %q must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}}, nil
}

// Health returns GET /api/actuator/health.
func (c *Client) Health(ctx context.Context) (types.Health, error) {
	var out types.Health
	return out, c.get(ctx, "/api/actuator/health", &out)
}

// Pipelines returns every pipeline.
func (c *Client) Pipelines(ctx context.Context) ([]types.Pipeline, error) {
	var out []types.Pipeline
	return out, c.get(ctx, "/api/pipelines", &out)
}

// Pipeline returns one pipeline. An unknown id yields an *APIError with
// StatusCode 404.
func (c *Client) Pipeline(ctx context.Context, id int) (types.Pipeline, error) {
	var out types.Pipeline
	return out, c.get(ctx, "/api/pipelines/"+strconv.Itoa(id), &out)
}

// CreatePipeline posts a draft; nil fields are left for the server to default.
func (c *Client) CreatePipeline(ctx context.Context, d types.PipelineDraft) (types.Pipeline, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return types.Pipeline{}, fmt.Errorf("client: encode draft: %w", err)
	}
	var out types.Pipeline
	return out, c.do(ctx, http.MethodPost, "/api/pipelines", bytes.NewReader(body), &out)
}

// DashboardStats returns GET /api/dashboard/stats.
func (c *Client) DashboardStats(ctx context.Context) (types.DashboardStats, error) {
	var out types.DashboardStats
	return out, c.get(ctx, "/api/dashboard/stats", &out)
}

// RecentExecutions returns GET /api/executions/recent.
func (c *Client) RecentExecutions(ctx context.Context) ([]types.Execution, error) {
	var out []types.Execution
	return out, c.get(ctx, "/api/executions/recent", &out)
}

// Alerts returns GET /api/alerts.
func (c *Client) Alerts(ctx context.Context) ([]types.Alert, error) {
	var out []types.Alert
	return out, c.get(ctx, "/api/alerts", &out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	resp, err := c.send(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

// send issues the request and converts non-2xx responses into *APIError.
// On success the caller owns resp.Body.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	var e types.ErrorResponse
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		apiErr.Message = e.Error
	}
	return nil, apiErr
}
