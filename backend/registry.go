package backend

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/ggame/gpucore"
	"github.com/gogpu/ggame/internal/logging"
)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	// GPU backends come before the CPU fallback.
	backendPriority = []string{BackendWGPU, BackendEbiten, BackendSoftware}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	if factory == nil {
		panic("backend: Register factory is nil for " + name)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the sorted names of registered backends.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Open opens the named backend.
func Open(name string, cfg Config) (gpucore.Device, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrBackendNotAvailable, name, Available())
	}
	dev, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("backend: open %s: %w", name, err)
	}
	logging.Logger().Info("backend: opened", "name", name, "device", dev.Name())
	return dev, nil
}

// Default opens the best available backend based on priority.
// Priority order: wgpu > ebiten > software, then any other registered
// backend. A backend whose factory fails is skipped.
func Default(cfg Config) (gpucore.Device, error) {
	registryMu.RLock()
	names := make([]string, 0, len(backends))
	for _, name := range backendPriority {
		if _, ok := backends[name]; ok {
			names = append(names, name)
		}
	}
	for _, name := range sortedNames() {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	registryMu.RUnlock()

	var errs []error
	for _, name := range names {
		dev, err := Open(name, cfg)
		if err == nil {
			return dev, nil
		}
		logging.Logger().Warn("backend: unavailable, trying next", "name", name, "err", err)
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrBackendNotAvailable
	}
	return nil, fmt.Errorf("%w: %v", ErrBackendNotAvailable, errs)
}

// MustDefault returns the default backend or panics.
func MustDefault(cfg Config) gpucore.Device {
	dev, err := Default(cfg)
	if err != nil {
		panic(err)
	}
	return dev
}

// sortedNames must be called with registryMu held.
func sortedNames() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
