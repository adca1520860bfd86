// Package e2e provides end-to-end testing infrastructure for signal-dashboard.
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"signal-dashboard/config"
	"signal-dashboard/internal/api"
	"signal-dashboard/internal/app"
	"signal-dashboard/mockapi"
	"signal-dashboard/observability"
)

// TestHarness runs the dashboard router against a fake signals API
type TestHarness struct {
	t          *testing.T
	ctx        context.Context
	cancel     context.CancelFunc
	mockServer *mockapi.Server
	registry   *prometheus.Registry
	app        *app.App
	router     http.Handler
	config     *config.Config
}

// NewTestHarness creates a new test harness. Call Setup before making requests.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)

	return &TestHarness{
		t:      t,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Setup starts the fake signals API and wires the application to it.
// fixtures may be nil to use the default data set.
func (h *TestHarness) Setup(fixtures *mockapi.Fixtures, configure ...func(*config.Config)) {
	h.t.Helper()

	h.mockServer = mockapi.NewTestServer(fixtures)

	h.config = config.NewTestConfig()
	h.config.API.RawBaseURL = h.mockServer.URL()
	for _, fn := range configure {
		fn(h.config)
	}

	h.registry = prometheus.NewRegistry()
	metrics := observability.NewMetrics(h.registry)

	h.app = app.New(h.config, metrics)
	h.app.Startup(h.ctx)

	handler := api.NewHandler(h.app, h.config)
	h.router = api.NewRouter(handler, h.config, api.WithRouterMetrics(metrics, h.registry))

	h.t.Cleanup(h.Teardown)
}

// Teardown releases all test resources. It is safe to call more than once.
func (h *TestHarness) Teardown() {
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}

	if h.app != nil {
		h.app.Shutdown(context.Background())
		h.app = nil
	}

	if h.mockServer != nil {
		h.mockServer.Close()
		h.mockServer = nil
	}
}

// Context returns the test context.
func (h *TestHarness) Context() context.Context {
	return h.ctx
}

// MockServer returns the fake signals API for configuring responses.
func (h *TestHarness) MockServer() *mockapi.Server {
	return h.mockServer
}

// App returns the application instance.
func (h *TestHarness) App() *app.App {
	return h.app
}

// Router returns the HTTP router for making requests.
func (h *TestHarness) Router() http.Handler {
	return h.router
}

// Config returns the test configuration.
func (h *TestHarness) Config() *config.Config {
	return h.config
}

// Registry returns the metrics registry the application records into.
func (h *TestHarness) Registry() *prometheus.Registry {
	return h.registry
}

// DoRequest performs an HTTP request and returns the response.
func (h *TestHarness) DoRequest(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// DoHTMXRequest performs an HTMX request and returns the response.
func (h *TestHarness) DoHTMXRequest(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("HX-Request", "true")

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// GetJSON performs a GET request and decodes the JSON body into out.
// It fails the test when the status differs from wantStatus.
func (h *TestHarness) GetJSON(path string, wantStatus int, out any) {
	h.t.Helper()

	w := h.DoRequest(http.MethodGet, path)
	if w.Code != wantStatus {
		h.t.Fatalf("GET %s: expected status %d, got %d: %s", path, wantStatus, w.Code, w.Body.String())
	}
	if out == nil {
		return
	}
	if err := json.NewDecoder(w.Body).Decode(out); err != nil {
		h.t.Fatalf("GET %s: failed to decode response: %v", path, err)
	}
}

// UpstreamRequests returns how many requests the fake signals API received for path,
// relative to /api/v1.
func (h *TestHarness) UpstreamRequests(path string) int {
	count := 0
	for _, entry := range h.mockServer.RequestLog() {
		if entry.Path == "/api/v1"+path {
			count++
		}
	}
	return count
}
