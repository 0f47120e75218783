// Package matcher implements the reconciliation matching engine: a
// registry of named strategies, each capable of joining a source and a
// target dataset on a canonical reference and classifying every joined
// row into one of four partitions.
package matcher

import (
	"fmt"
	"sort"
	"sync"

	"github.com/reconflow/reconflow/internal/domain/dataset"
)

// Strategy is the single capability a matching strategy exposes.
type Strategy interface {
	// Name returns the registry key for this strategy.
	Name() string

	// Match joins source against target and classifies every row.
	Match(source, target *dataset.Dataset, cfg Config) (*Result, error)
}

// Registry maps strategy names to implementations. It is constructed
// explicitly at startup and passed to the engine; there is no global
// registry.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry creates an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
	}
}

// DefaultRegistry returns a registry with the built-in strategies
// registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(NewExactReferenceStrategy())
	return r
}

// Register adds a strategy to the registry.
func (r *Registry) Register(s Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.strategies[name]; exists {
		return fmt.Errorf("strategy %s already registered", name)
	}

	r.strategies[name] = s
	return nil
}

// Get returns a strategy by name. An unregistered name is a
// configuration error.
func (r *Registry) Get(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.strategies[name]
	if !exists {
		return nil, fmt.Errorf("unknown matching strategy: %s", name)
	}

	return s, nil
}

// Names returns the registered strategy names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
