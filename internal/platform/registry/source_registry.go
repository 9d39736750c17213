// internal/platform/registry/source_registry.go
package registry

import (
	"fmt"
	"sort"
	"sync"

	"subsweep/internal/core/ports"
	"subsweep/internal/platform/httpclient"
	"subsweep/internal/platform/logx"
)

// SourceRegistry manages source registration and construction. It implements
// the registry + factory pattern so application code never constructs a
// concrete source directly.
type SourceRegistry struct {
	mu        sync.RWMutex
	factories map[string]SourceFactory
	metadata  map[string]ports.SourceMetadata
	logger    logx.Logger
}

// Deps carries the shared dependencies injected into every source. All
// sources use the same pooled HTTP client.
type Deps struct {
	Client *httpclient.Client
	Config ports.SourceConfig
	Logger logx.Logger
}

// SourceFactory creates a Source instance from shared dependencies.
type SourceFactory func(deps Deps) (ports.Source, error)

var globalRegistry *SourceRegistry
var once sync.Once

// Global returns the process-wide registry instance.
func Global() *SourceRegistry {
	once.Do(func() {
		globalRegistry = NewSourceRegistry(logx.New())
	})
	return globalRegistry
}

// NewSourceRegistry creates a new source registry.
func NewSourceRegistry(logger logx.Logger) *SourceRegistry {
	return &SourceRegistry{
		factories: make(map[string]SourceFactory),
		metadata:  make(map[string]ports.SourceMetadata),
		logger:    logger.With("component", "source-registry"),
	}
}

// Register records a source factory with its metadata. Typically called from
// each source package's init().
func (r *SourceRegistry) Register(name string, factory SourceFactory, meta ports.SourceMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return fmt.Errorf("source name cannot be empty")
	}

	if factory == nil {
		return fmt.Errorf("factory cannot be nil for source %s", name)
	}

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("source %s is already registered", name)
	}

	r.factories[name] = factory
	r.metadata[name] = meta
	r.logger.Debug("source registered", "name", name, "requires_auth", meta.RequiresAuth)

	return nil
}

// BuildResult pairs a constructed source with its resolved config.
type BuildResult struct {
	Source ports.Source
	Config ports.SourceConfig
}

// Skipped names a registered source that was not built and why.
type Skipped struct {
	Name   string
	Reason string
}

// Build constructs every enabled source. Sources whose metadata requires
// auth but whose config carries no credential are reported as skipped, not
// failed; a single misconfigured source never blocks the rest.
func (r *SourceRegistry) Build(configs map[string]ports.SourceConfig, client *httpclient.Client, logger logx.Logger) ([]BuildResult, []Skipped, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if configs == nil {
		return nil, nil, fmt.Errorf("configs cannot be nil")
	}
	if client == nil {
		return nil, nil, fmt.Errorf("client cannot be nil")
	}
	if logger == nil {
		return nil, nil, fmt.Errorf("logger cannot be nil")
	}

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	built := make([]BuildResult, 0, len(names))
	skipped := make([]Skipped, 0)

	for _, name := range names {
		cfg := configs[name]
		if !cfg.Enabled {
			continue
		}

		factory, exists := r.factories[name]
		if !exists {
			r.logger.Warn("source not registered, skipping", "source", name)
			skipped = append(skipped, Skipped{Name: name, Reason: "not registered"})
			continue
		}

		if r.metadata[name].RequiresAuth && cfg.Credential.IsZero() {
			r.logger.Debug("source requires credentials, skipping", "source", name)
			skipped = append(skipped, Skipped{Name: name, Reason: "missing credential"})
			continue
		}

		source, err := factory(Deps{
			Client: client,
			Config: cfg,
			Logger: logger.With("source", name),
		})
		if err != nil {
			r.logger.Warn("source build error", "source", name, "error", err.Error())
			skipped = append(skipped, Skipped{Name: name, Reason: err.Error()})
			continue
		}

		built = append(built, BuildResult{Source: source, Config: cfg})
		r.logger.Debug("source built", "name", name)
	}

	if len(built) == 0 && len(configs) > 0 {
		return nil, skipped, fmt.Errorf("no sources could be built")
	}

	logger.Debug("sources built", "count", len(built), "requested", len(configs), "skipped", len(skipped))
	return built, skipped, nil
}

// List returns the names of all registered sources, sorted.
func (r *SourceRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetMetadata returns the metadata of a registered source.
func (r *SourceRegistry) GetMetadata(name string) (ports.SourceMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, exists := r.metadata[name]
	return meta, exists
}

// GetAllMetadata returns a copy of the metadata for every registered source.
func (r *SourceRegistry) GetAllMetadata() map[string]ports.SourceMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]ports.SourceMetadata, len(r.metadata))
	for name, meta := range r.metadata {
		result[name] = meta
	}
	return result
}

// IsRegistered reports whether a source is registered.
func (r *SourceRegistry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}

// Clear removes every registered source. Intended for tests.
func (r *SourceRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories = make(map[string]SourceFactory)
	r.metadata = make(map[string]ports.SourceMetadata)
}
