package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"signal-dashboard/observability"
)

func TestResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	// Test default status code
	if rw.statusCode != http.StatusOK {
		t.Errorf("Expected default status code to be 200, got %d", rw.statusCode)
	}

	// Test WriteHeader
	rw.WriteHeader(http.StatusNotFound)
	if rw.statusCode != http.StatusNotFound {
		t.Errorf("Expected status code to be 404, got %d", rw.statusCode)
	}

	// Test Write
	data := []byte("Hello, World!")
	n, err := rw.Write(data)
	if err != nil {
		t.Errorf("Write returned error: %v", err)
	}
	if n != len(data) {
		t.Errorf("Expected to write %d bytes, wrote %d", len(data), n)
	}
	if rw.responseSize != len(data) {
		t.Errorf("Expected response size to be %d, got %d", len(data), rw.responseSize)
	}

	// Test multiple writes
	n2, _ := rw.Write(data)
	if rw.responseSize != len(data)+n2 {
		t.Errorf("Expected cumulative response size to be %d, got %d", len(data)+n2, rw.responseSize)
	}
}

func TestMetricsMiddleware_RoutePattern(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(metrics))
	r.Get("/stocks/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	for _, symbol := range []string{"AAPL", "KO"} {
		req := httptest.NewRequest(http.MethodGet, "/stocks/"+symbol, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	}

	if got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/stocks/{symbol}", "200")); got != 2 {
		t.Errorf("Expected 2 requests under the route pattern, got %f", got)
	}
}

func TestMetricsMiddleware_WithoutRouter(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/error", nil)
	w := httptest.NewRecorder()
	MetricsMiddleware(metrics)(handler).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	if got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/error", "500")); got != 1 {
		t.Errorf("Expected the raw path as label, got %f", got)
	}
}

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware("https://dashboard.example.com")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/watchlist/AAPL", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://dashboard.example.com" {
			t.Errorf("Unexpected allowed origin %q", got)
		}
	})

	t.Run("passes through other methods", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/overview", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusTeapot {
			t.Errorf("Expected handler status, got %d", w.Code)
		}
	})
}
