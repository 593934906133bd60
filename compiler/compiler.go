package compiler

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/staticbay/assetpipe/common/logger"
)

// Plugin pre-compiles one kind of asset bundle for a group.
type Plugin interface {
	// Type names the plugin, unique within a registry.
	Type() string

	// Compile materializes the group's bundles and returns their URLs.
	Compile(ctx context.Context, group string) ([]string, error)
}

// RegistrationError reports a plugin registration conflict.
type RegistrationError struct {
	Type       string
	Registered bool
}

func (e *RegistrationError) Error() string {
	if e.Registered {
		return fmt.Sprintf("asset plugin %q is already registered", e.Type)
	}
	return fmt.Sprintf("asset plugin %q is not registered", e.Type)
}

// Registry holds the active compile plugins.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
	log     *logger.Logger
}

// NewRegistry creates an empty plugin registry
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
		log:     log,
	}
}

// Register adds a plugin. Registering a type twice is an error.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plugins[p.Type()]; ok {
		return &RegistrationError{Type: p.Type(), Registered: true}
	}
	r.plugins[p.Type()] = p
	return nil
}

// Unregister removes a plugin by type
func (r *Registry) Unregister(typ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plugins[typ]; !ok {
		return &RegistrationError{Type: typ}
	}
	delete(r.plugins, typ)
	return nil
}

// Has reports whether a plugin type is registered
func (r *Registry) Has(typ string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.plugins[typ]
	return ok
}

// Plugins returns the registered plugins in type order
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.plugins))
	for t := range r.plugins {
		types = append(types, t)
	}
	sort.Strings(types)

	out := make([]Plugin, len(types))
	for i, t := range types {
		out[i] = r.plugins[t]
	}
	return out
}

// CompileAll runs every plugin against every group concurrently and waits
// for all of them. The first failure cancels the rest.
func (r *Registry) CompileAll(ctx context.Context, groups []string) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, plugin := range r.Plugins() {
		for _, group := range groups {
			plugin, group := plugin, group
			g.Go(func() error {
				urls, err := plugin.Compile(ctx, group)
				if err != nil {
					return fmt.Errorf("failed to compile %s bundle for group %s: %w", plugin.Type(), group, err)
				}
				r.log.Info("compiled asset group",
					"plugin", plugin.Type(),
					"group", group,
					"bundles", len(urls))
				return nil
			})
		}
	}

	return g.Wait()
}
