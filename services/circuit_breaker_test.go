package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"signal-dashboard/observability"
)

func newTestRegistry(config CircuitBreakerConfig) (*CircuitBreakerRegistry, *observability.Metrics) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	return NewCircuitBreakerRegistry(config, metrics), metrics
}

var fastTripConfig = CircuitBreakerConfig{
	MaxRequests: 1,
	Interval:    1 * time.Minute,
	Timeout:     1 * time.Minute,
	MinRequests: 3,
}

func TestNewCircuitBreakerRegistry(t *testing.T) {
	registry, _ := newTestRegistry(fastTripConfig)

	if registry == nil {
		t.Fatal("expected registry to be created")
	}
	if registry.breakers == nil {
		t.Error("expected breakers map to be initialized")
	}
	if registry.config != fastTripConfig {
		t.Error("expected config to be set")
	}
}

func TestCircuitBreakerRegistry_GetBreaker(t *testing.T) {
	registry, _ := newTestRegistry(DefaultCircuitBreakerConfig)

	breaker1 := registry.GetBreaker("signals_api:stock")
	if breaker1 == nil {
		t.Fatal("expected breaker to be created")
	}

	breaker2 := registry.GetBreaker("signals_api:stock")
	if breaker1 != breaker2 {
		t.Error("expected same breaker instance")
	}

	breaker3 := registry.GetBreaker("signals_api:prices")
	if breaker1 == breaker3 {
		t.Error("expected different breaker for different name")
	}
}

func TestCircuitBreakerRegistry_Execute_Success(t *testing.T) {
	registry, _ := newTestRegistry(DefaultCircuitBreakerConfig)

	result, err := registry.Execute(context.Background(), "test-service", func() (any, error) {
		return "success", nil
	})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %v", result)
	}
}

func TestCircuitBreakerRegistry_Execute_ContextCanceled(t *testing.T) {
	registry, _ := newTestRegistry(DefaultCircuitBreakerConfig)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := registry.Execute(ctx, "test-service", func() (any, error) {
		return "should not reach", nil
	})

	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Kind != KindNetwork {
		t.Errorf("Kind = %v, want network", apiErr.Kind)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("expected context.Canceled in the error chain")
	}
}

func TestCircuitBreakerRegistry_Status(t *testing.T) {
	registry, _ := newTestRegistry(DefaultCircuitBreakerConfig)
	ctx := context.Background()

	_, _ = registry.Execute(ctx, "service-a", func() (any, error) {
		return "ok", nil
	})
	_, _ = registry.Execute(ctx, "service-b", func() (any, error) {
		return nil, &APIError{Kind: KindHTTP, Status: http.StatusBadGateway}
	})

	status := registry.Status()

	if len(status) != 2 {
		t.Errorf("expected 2 breakers in status, got %d", len(status))
	}
	if status["service-a"].TotalSuccesses != 1 {
		t.Errorf("expected 1 success for service-a, got %d", status["service-a"].TotalSuccesses)
	}
	if status["service-b"].TotalFailures != 1 {
		t.Errorf("expected 1 failure for service-b, got %d", status["service-b"].TotalFailures)
	}
}

func TestCircuitBreakerRegistry_TripsOnServerErrors(t *testing.T) {
	registry, metrics := newTestRegistry(fastTripConfig)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = registry.Execute(ctx, "failing-service", func() (any, error) {
			return nil, &APIError{Kind: KindHTTP, Status: http.StatusServiceUnavailable}
		})
	}

	status := registry.Status()
	if status["failing-service"].State != "open" {
		t.Errorf("expected breaker to be open, got %s", status["failing-service"].State)
	}

	called := false
	_, err := registry.Execute(ctx, "failing-service", func() (any, error) {
		called = true
		return "should not execute", nil
	})

	if called {
		t.Error("open breaker should not run the call")
	}
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Kind != KindNetwork || apiErr.Code != CodeCircuitOpen || apiErr.Status != 0 {
		t.Errorf("unexpected error: %+v", apiErr)
	}
	if apiErr.Temporary() {
		t.Error("circuit open should not be retried")
	}

	if got := testutil.ToFloat64(metrics.CircuitBreakerTrips.WithLabelValues("failing-service")); got != 1 {
		t.Errorf("Expected 1 trip, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("failing-service")); got != 2 {
		t.Errorf("Expected state 2, got %f", got)
	}
}

func TestCircuitBreakerRegistry_ClientErrorsDoNotTrip(t *testing.T) {
	registry, _ := newTestRegistry(fastTripConfig)
	ctx := context.Background()

	failures := []error{
		&APIError{Kind: KindHTTP, Status: http.StatusNotFound},
		&APIError{Kind: KindLogical, Status: http.StatusOK, Code: "NOT_FOUND"},
		&APIError{Kind: KindValidation, Code: CodeInvalidInput},
		&APIError{Kind: KindLogical, Status: http.StatusBadRequest},
		&APIError{Kind: KindHTTP, Status: http.StatusTooManyRequests},
	}

	for _, failure := range failures {
		_, _ = registry.Execute(ctx, "client-errors", func() (any, error) {
			return nil, failure
		})
	}

	if got := registry.Status()["client-errors"].State; got != "closed" {
		t.Errorf("expected breaker to stay closed, got %s", got)
	}
}

func TestCountsAsSuccess(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"canceled", NewNetworkError(context.Canceled), true},
		{"network", NewNetworkError(errors.New("connection refused")), false},
		{"http 500", &APIError{Kind: KindHTTP, Status: 500}, false},
		{"logical 503", &APIError{Kind: KindLogical, Status: 503}, false},
		{"http 404", &APIError{Kind: KindHTTP, Status: 404}, true},
		{"logical 200", &APIError{Kind: KindLogical, Status: 200}, true},
		{"validation", &APIError{Kind: KindValidation}, true},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countsAsSuccess(tt.err); got != tt.want {
				t.Errorf("countsAsSuccess(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWithCircuitBreaker_TypedResults(t *testing.T) {
	registry, _ := newTestRegistry(DefaultCircuitBreakerConfig)

	type testResult struct {
		Value int
		Name  string
	}

	result, err := WithCircuitBreaker(context.Background(), registry, "typed-test", func() (*testResult, error) {
		return &testResult{Value: 42, Name: "test"}, nil
	})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result.Value != 42 || result.Name != "test" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestWithCircuitBreaker_Error(t *testing.T) {
	registry, _ := newTestRegistry(DefaultCircuitBreakerConfig)

	result, err := WithCircuitBreaker(context.Background(), registry, "test", func() ([]int, error) {
		return nil, errors.New("test error")
	})

	if err == nil {
		t.Error("expected error")
	}
	if result != nil {
		t.Errorf("expected nil slice, got %v", result)
	}
}

func TestDefaultCircuitBreakerConfig(t *testing.T) {
	if DefaultCircuitBreakerConfig.MaxRequests != 5 {
		t.Errorf("expected MaxRequests=5, got %d", DefaultCircuitBreakerConfig.MaxRequests)
	}
	if DefaultCircuitBreakerConfig.Interval != 1*time.Minute {
		t.Errorf("expected Interval=1m, got %v", DefaultCircuitBreakerConfig.Interval)
	}
	if DefaultCircuitBreakerConfig.Timeout != 30*time.Second {
		t.Errorf("expected Timeout=30s, got %v", DefaultCircuitBreakerConfig.Timeout)
	}
}

func TestBreakerName(t *testing.T) {
	if got := breakerName(ResourceTopSignals); got != "signals_api:top_signals" {
		t.Errorf("breakerName = %s, want signals_api:top_signals", got)
	}
}

func TestCircuitBreakerRegistry_Concurrent(t *testing.T) {
	registry, _ := newTestRegistry(DefaultCircuitBreakerConfig)
	ctx := context.Background()

	var wg sync.WaitGroup
	errChan := make(chan error, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, err := registry.Execute(ctx, "concurrent-test", func() (any, error) {
				return id, nil
			})
			if err != nil {
				errChan <- err
			}
		}(i)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		t.Errorf("unexpected error: %v", err)
	}
	if got := registry.Status()["concurrent-test"].TotalSuccesses; got != 10 {
		t.Errorf("expected 10 successes, got %d", got)
	}
}
