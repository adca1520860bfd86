// Package watchlist holds the symbols a user is watching for the lifetime of the process.
package watchlist

import (
	"slices"
	"sync"

	"signal-dashboard/observability"
)

// Store is an in-memory, insertion-ordered set of stock symbols.
// Every mutation is atomic with respect to the others. Nothing is persisted.
type Store struct {
	mu      sync.RWMutex
	symbols []string
	metrics *observability.Metrics
}

// New creates an empty Store
func New(metrics *observability.Metrics) *Store {
	if metrics == nil {
		metrics = observability.GetMetrics()
	}
	s := &Store{symbols: []string{}, metrics: metrics}
	s.metrics.SetWatchlistSize(0)
	return s
}

// Add appends symbol unless it is already present. It reports whether the store changed.
func (s *Store) Add(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.symbols, symbol) {
		return false
	}
	s.symbols = append(s.symbols, symbol)
	s.metrics.SetWatchlistSize(len(s.symbols))
	return true
}

// Remove deletes every occurrence of symbol. It reports whether the store changed.
func (s *Store) Remove(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.symbols)
	s.symbols = slices.DeleteFunc(s.symbols, func(existing string) bool {
		return existing == symbol
	})
	s.metrics.SetWatchlistSize(len(s.symbols))
	return len(s.symbols) != before
}

// Contains reports whether symbol is watched
func (s *Store) Contains(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.symbols, symbol)
}

// Symbols returns a copy of the watched symbols in insertion order
func (s *Store) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.symbols)
}

// Len returns the number of watched symbols
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.symbols)
}
