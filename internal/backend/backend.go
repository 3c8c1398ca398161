package backend

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"loom/internal/codec"
	"loom/internal/config"
	"loom/internal/dataset"
	"loom/internal/dist"
	"loom/internal/sampler"
	"loom/internal/services"
)

// Backend bundles the model-side capabilities one generation run binds:
// media decoding, latent encoding, and sampling.
type Backend struct {
	Loader  dataset.Loader
	Codec   codec.LatentCodec
	Sampler sampler.Sampler
}

// Factory constructs a backend for one run. The distributed context tells the
// factory which device this rank owns.
type Factory func(cfg *config.Config, dctx dist.Context, logger *slog.Logger) (*Backend, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a backend available under name. Typically called from an
// init function in the backend's package.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	if factory == nil {
		panic("backend: nil factory for " + name)
	}
	if _, dup := factories[name]; dup {
		panic("backend: duplicate registration of " + name)
	}
	factories[name] = factory
}

// Names lists the registered backends in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open constructs the backend named by the pipeline configuration.
func Open(cfg *config.Config, dctx dist.Context, logger *slog.Logger) (*Backend, error) {
	mu.RLock()
	factory, ok := factories[cfg.Pipeline.Backend]
	mu.RUnlock()
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "startup", "open backend",
			fmt.Sprintf("unknown backend %q (registered: %v)", cfg.Pipeline.Backend, Names()), nil)
	}
	b, err := factory(cfg, dctx, logger)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "startup", "open backend", cfg.Pipeline.Backend, err)
	}
	return b, nil
}
