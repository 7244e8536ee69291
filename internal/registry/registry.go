// Package registry accumulates relocated asset references across loader
// invocations for the packaging stage.
package registry

import (
	"sync"

	"github.com/phobologic/templateloader/internal/model"
	"github.com/phobologic/templateloader/internal/toon"
)

// Registry is an append-only, ordered list of assets. It is safe for
// concurrent use. The zero value is ready to use.
type Registry struct {
	mu     sync.Mutex
	assets []model.Asset
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Add appends one asset. Repeated references are kept.
func (r *Registry) Add(a model.Asset) {
	r.mu.Lock()
	r.assets = append(r.assets, a)
	r.mu.Unlock()
}

// Append adds assets as one contiguous run, so concurrent callers never
// interleave within a batch.
func (r *Registry) Append(assets ...model.Asset) {
	r.mu.Lock()
	r.assets = append(r.assets, assets...)
	r.mu.Unlock()
}

// Assets returns a copy of the registered assets in insertion order.
func (r *Registry) Assets() []model.Asset {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Asset, len(r.assets))
	copy(out, r.assets)
	return out
}

// Len returns the number of registered assets.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.assets)
}

// Encode renders the registry as a TOON manifest.
func (r *Registry) Encode(prefix string) string {
	return toon.Encode(prefix, r.Assets())
}
