package scoringconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wonny/scout/internal/contracts"
)

// Registry holds loaded configurations by id
type Registry struct {
	mu   sync.RWMutex
	byID map[string]*Config
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Config)}
}

// Register adds a sealed configuration. Unsealed configs are sealed first.
func (r *Registry) Register(cfg *Config) error {
	if cfg.ID() == "" {
		if err := Seal(cfg); err != nil {
			return &contracts.InvalidWeightConfigError{Source: cfg.Meta.ID, Err: err}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[cfg.ID()] = cfg
	return nil
}

// Get returns the configuration with an exact id
func (r *Registry) Get(id string) (*Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contracts.ErrUnknownConfig, id)
	}
	return cfg, nil
}

// Resolve accepts a full id or a meta id that matches exactly one configuration
func (r *Registry) Resolve(ref string) (*Config, error) {
	if cfg, err := r.Get(ref); err == nil {
		return cfg, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *Config
	for _, cfg := range r.byID {
		if cfg.Meta.ID != ref {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: %s matches several configurations", contracts.ErrUnknownConfig, ref)
		}
		found = cfg
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", contracts.ErrUnknownConfig, ref)
	}
	return found, nil
}

// IDs returns the registered ids sorted
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered configurations
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// LoadDir loads every *.yaml / *.yml file of dir into a new registry.
// Any invalid file aborts the whole load.
func LoadDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scoring config dir: %w", err)
	}

	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		cfg, _, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if err := reg.Register(cfg); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
