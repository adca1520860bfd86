package services

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

	"github.com/google/uuid"

	"signal-dashboard/config"
	"signal-dashboard/observability"
)

// apiPrefix is the versioned root every resource path lives under
const apiPrefix = "/api/v1"

// Transport performs one signals API call and normalizes the response envelope.
// It neither retries nor caches.
type Transport struct {
	baseURL    string
	configErr  error
	httpClient *http.Client
	breakers   *CircuitBreakerRegistry
	listPolicy string
	metrics    *observability.Metrics
}

// TransportOption customizes a Transport
type TransportOption func(*Transport)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) TransportOption {
	return func(t *Transport) {
		t.httpClient = client
	}
}

// WithBreakers routes every call through the given circuit breaker registry
func WithBreakers(registry *CircuitBreakerRegistry) TransportOption {
	return func(t *Transport) {
		t.breakers = registry
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(metrics *observability.Metrics) TransportOption {
	return func(t *Transport) {
		t.metrics = metrics
	}
}

// NewTransport creates a Transport from configuration.
// A malformed base URL is kept as a configuration error and returned by every call.
func NewTransport(cfg *config.Config, opts ...TransportOption) *Transport {
	baseURL, err := cfg.BaseURL()

	timeout := time.Duration(cfg.API.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	t := &Transport{
		baseURL:    baseURL,
		configErr:  err,
		httpClient: &http.Client{Timeout: timeout},
		listPolicy: cfg.API.ListShapePolicy,
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.metrics == nil {
		t.metrics = observability.GetMetrics()
	}
	if t.breakers == nil && cfg.Breaker.Enabled {
		t.breakers = NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig, t.metrics)
	}
	if t.listPolicy == "" {
		t.listPolicy = config.ListShapeLenient
	}

	return t
}

// BaseURL returns the normalized base URL, or an error when it is unusable
func (t *Transport) BaseURL() (string, error) {
	if t.configErr != nil {
		return "", t.configErr
	}
	return t.baseURL, nil
}

// Breakers returns the circuit breaker registry, nil when breakers are disabled
func (t *Transport) Breakers() *CircuitBreakerRegistry {
	return t.breakers
}

// Do issues method on path (relative to /api/v1) and returns the raw data payload of a
// successful envelope. Every failure is an *APIError.
func (t *Transport) Do(ctx context.Context, resource, method, path string, query url.Values, body any) (json.RawMessage, error) {
	timer := t.metrics.NewTimer()

	data, err := t.do(ctx, resource, method, path, query, body)

	timer.ObserveAPI(resource)
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok {
			t.metrics.RecordAPIError(resource, string(apiErr.Kind))
		}
		return nil, err
	}
	return data, nil
}

func (t *Transport) do(ctx context.Context, resource, method, path string, query url.Values, body any) (json.RawMessage, error) {
	if t.configErr != nil {
		return nil, newConfigurationError(t.configErr)
	}
	if path == "" || !strings.HasPrefix(path, "/") {
		return nil, newValidationError("resource path %q must start with /", path)
	}

	reqURL := t.baseURL + apiPrefix + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, newUnknownError(fmt.Errorf("failed to encode request body: %w", err))
		}
		payload = encoded
	}

	if t.breakers == nil {
		return t.roundTrip(ctx, resource, method, reqURL, payload)
	}

	return WithCircuitBreaker(ctx, t.breakers, breakerName(resource), func() (json.RawMessage, error) {
		return t.roundTrip(ctx, resource, method, reqURL, payload)
	})
}

// roundTrip performs the HTTP exchange and classifies the outcome
func (t *Transport) roundTrip(ctx context.Context, resource, method, reqURL string, payload []byte) (json.RawMessage, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, newUnknownError(fmt.Errorf("failed to create request: %w", err))
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	logger := observability.WithRequestID(requestID).With("resource", resource)
	start := time.Now()

	resp, err := t.httpClient.Do(req)
	if err != nil {
		logger.Debug("signals API request failed",
			"method", method,
			"url", reqURL,
			"error", err)
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError(fmt.Errorf("failed to read response body: %w", err))
	}

	data, meta, err := classifyResponse(resp.StatusCode, resp.Status, respBody)

	attrs := []any{
		"method", method,
		"url", reqURL,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if meta != nil && meta.CacheHit != nil {
		attrs = append(attrs, "cache_hit", *meta.CacheHit)
	}
	logger.Debug("signals API request", attrs...)

	return data, err
}

// classifyTransportError maps a failed http.Client.Do to an APIError
func classifyTransportError(err error) *APIError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewNetworkError(err)
	}
	return newUnknownError(err)
}
