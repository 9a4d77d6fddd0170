package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/sqlchat/pkg/logger"
)

// DefaultEndpoint is the local text-to-SQL server.
const DefaultEndpoint = "http://localhost:8000/query"

// HTTPClient is the subset of *http.Client used by Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client asks the query endpoint for SQL.
type Client struct {
	endpoint   string
	httpClient HTTPClient
	timeout    time.Duration
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP transport.
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each request, whatever the HTTP transport. Zero means
// no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the client's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a Client for endpoint. An empty endpoint uses DefaultEndpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Endpoint returns the URL questions are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Ask posts question to the endpoint and decodes the generated SQL.
// A non-2xx status yields a *RequestFailure.
func (c *Client) Ask(ctx context.Context, question string) (*Response, error) {
	startTime := time.Now()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reqBody, err := json.Marshal(Request{Question: question})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending question",
		zap.String("url", c.endpoint),
		zap.String("question_preview", logger.Truncate(question, 100)),
	)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		c.logger.Debug("query endpoint returned error",
			zap.Int("status", httpResp.StatusCode),
			zap.String("body", logger.Truncate(string(body), 200)),
		)
		return nil, &RequestFailure{
			StatusCode: httpResp.StatusCode,
			StatusText: statusText(httpResp),
		}
	}

	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if wire.SQL == nil {
		return nil, ErrMissingSQL
	}

	c.logger.Debug("received sql",
		zap.String("sql_preview", logger.Truncate(*wire.SQL, 100)),
		zap.Int("ddl_context_size", len(wire.DDLContext)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return &Response{SQL: *wire.SQL, DDLContext: wire.DDLContext}, nil
}

// statusText extracts the reason phrase from a status line like
// "500 Internal Server Error", falling back to the canonical text.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}

	return text
}
