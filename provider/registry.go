package provider

import (
	"fmt"
	"slices"
	"sync"

	"github.com/brettbedarf/memfs/internal/util"
)

// Registry ties URI schemes to the providers serving them
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: map[string]*Provider{}}
}

// Register adds p under its scheme. The first provider registered for a scheme
// wins; later registrations are ignored and reported as false.
func (r *Registry) Register(p *Provider) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[p.Scheme()]; exists {
		logger := util.GetLogger("Registry")
		logger.Warn().Str("scheme", p.Scheme()).Msg("Provider already registered; ignoring")
		return false
	}
	r.providers[p.Scheme()] = p
	return true
}

// Get returns the provider registered for scheme
func (r *Registry) Get(scheme string) (*Provider, error) {
	r.mu.RLock()
	p, ok := r.providers[scheme]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no provider for scheme %q", scheme)
	}
	return p, nil
}

// Resolve parses raw and returns the provider serving its scheme
func (r *Registry) Resolve(raw string) (*Provider, URI, error) {
	uri, err := ParseURI(raw)
	if err != nil {
		return nil, URI{}, err
	}
	p, err := r.Get(uri.Scheme)
	if err != nil {
		return nil, URI{}, &FileSystemError{Code: Unavailable, URI: uri, Err: err}
	}
	return p, uri, nil
}

// Schemes lists the registered schemes in sorted order
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemes := make([]string, 0, len(r.providers))
	for s := range r.providers {
		schemes = append(schemes, s)
	}
	slices.Sort(schemes)
	return schemes
}
