package predictor

import (
	"sync"

	"marketlens/internal/types"
)

// Registry keeps the last successful forecast per symbol. Failed
// invocations never touch it, so readers always see the most recent
// success.
type Registry struct {
	mu sync.RWMutex
	m  map[string]*types.Forecast
}

func NewRegistry() *Registry {
	return &Registry{m: make(map[string]*types.Forecast)}
}

func (r *Registry) Put(symbol string, f *types.Forecast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[symbol] = f
}

// Get returns the last forecast for the symbol, or nil when none exists.
func (r *Registry) Get(symbol string) *types.Forecast {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.m[symbol]
}
