package core

import "fmt"

// DefaultProvider is used when a chat request names no provider.
const DefaultProvider = "openai"

// Registry maps provider names to adapters. Only providers with a configured
// API credential are registered, so a lookup failure is a configuration
// error raised before any network call.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Lookup resolves a provider by name, falling back to DefaultProvider for
// the empty string.
func (r *Registry) Lookup(name string) (Provider, error) {
	if name == "" {
		name = DefaultProvider
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, &ConfigError{Message: fmt.Sprintf("%s API key not configured", name)}
	}
	return p, nil
}

// Names lists the registered providers.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
