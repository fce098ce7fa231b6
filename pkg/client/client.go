// Package client provides the HTTP client for the polls API: single-page
// listing, full-collection draining, and user registration.
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

	"github.com/Sternrassler/polls-client/pkg/logging"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for polls API requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polls_client_requests_total",
		Help: "Total polls API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "polls_client_request_duration_seconds",
		Help:    "Polls API request duration in seconds by endpoint",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polls_client_errors_total",
		Help: "Total polls API errors by kind",
	}, []string{"kind"})
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultPageLimit is the page size used by callers that do not pick one.
	DefaultPageLimit = 10

	// DefaultBatchSize is the page size used when draining the collection.
	DefaultBatchSize = 10

	// DefaultUserAgent identifies the client to the API.
	DefaultUserAgent = "polls-client/0.1.0"

	maxResponseBodySize = 10 << 20 // 10MB

	pollsEndpoint    = "/polls"
	registerEndpoint = "/register"
)

// Client is the polls API client. It holds no per-call state and is safe
// for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API, e.g. "http://localhost:8000". A trailing slash is ignored.
	BaseURL string `validate:"required,url"`

	// User-Agent header sent with every request.
	UserAgent string `validate:"required"`

	// Timeout per HTTP request. Zero means no client-side timeout.
	Timeout time.Duration `validate:"gte=0"`

	// DefaultBatchSize is used by FetchAllPolls when called with batchSize 0.
	DefaultBatchSize int `validate:"gt=0"`

	// HTTPClient overrides the underlying client (optional).
	HTTPClient *http.Client `validate:"-"`

	// Logger overrides the component logger (optional).
	Logger *zerolog.Logger `validate:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:          DefaultBaseURL,
		UserAgent:        DefaultUserAgent,
		Timeout:          30 * time.Second,
		DefaultBatchSize: DefaultBatchSize,
	}
}

// New creates a new polls API client.
func New(cfg Config) (*Client, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	logger := logging.NewLogger("polls-client")
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "polls-client").Logger()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
		}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		config:     cfg,
		logger:     logger,
	}, nil
}

// response is a fully read HTTP response.
type response struct {
	StatusCode int
	Body       []byte
}

// do performs a single HTTP request and reads the body. Only transport
// failures are returned as errors; status handling is left to the caller.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body []byte) (*response, error) {
	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", method).
		Str("request_id", requestID).
		Msg("Executing request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		return nil, c.fail(endpoint, &TransportError{Err: err})
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		requestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		return nil, c.fail(endpoint, &TransportError{Err: fmt.Errorf("read response body: %w", err)})
	}

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(startTime)).
		Msg("Request completed")

	return &response{StatusCode: resp.StatusCode, Body: data}, nil
}

// fail records err for observability and returns it unchanged.
func (c *Client) fail(endpoint string, err error) error {
	kind := KindOf(err)
	errorsTotal.WithLabelValues(string(kind)).Inc()
	c.logger.Warn().
		Err(err).
		Str("endpoint", endpoint).
		Str("kind", string(kind)).
		Msg("Polls API request failed")
	return err
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections. The client stays usable afterwards.
func (c *Client) Close() error {
	if c == nil || c.httpClient == nil {
		return nil
	}
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
