package manifest

import (
	"sync"

	"github.com/strataframe/strata/internal/errors"
	"github.com/strataframe/strata/pkg/render"
)

// ComponentLoader resolves a component id to its compiled module.
//
// Production deployments back this with a prebuilt registry populated by
// generated code; the dev server backs it with freshly compiled modules.
type ComponentLoader interface {
	Load(componentID string) (*render.Module, error)
}

// ModuleRegistry is a ComponentLoader over a fixed module map.
type ModuleRegistry struct {
	mu      sync.RWMutex
	modules map[string]*render.Module
}

// NewRegistry creates an empty module registry.
func NewRegistry() *ModuleRegistry {
	return &ModuleRegistry{modules: make(map[string]*render.Module)}
}

// Register adds a compiled module under its stable id.
func (r *ModuleRegistry) Register(componentID string, mod *render.Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[componentID] = mod
}

// Load implements ComponentLoader. A miss is a config error: the manifest
// and the registry were not generated by the same build.
func (r *ModuleRegistry) Load(componentID string) (*render.Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if mod, ok := r.modules[componentID]; ok {
		return mod, nil
	}
	return nil, errors.New("S201").WithDetail("component %q", componentID)
}

// Len returns the number of registered modules.
func (r *ModuleRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}
