package parsing

import (
	"fmt"
	"sort"

	"ShutdownScanner/internal/domain"
)

// Registry keeps a mapping from service identifiers to their parser
// implementations. A new service plugs in by calling Register at startup; no
// existing parser changes.
type Registry struct {
	parsers map[domain.Service]Parser
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: map[domain.Service]Parser{}}
}

// Register adds or replaces a parser implementation under its own service id.
func (r *Registry) Register(p Parser) {
	if r.parsers == nil {
		r.parsers = map[domain.Service]Parser{}
	}
	r.parsers[p.Service()] = p
}

// Resolve returns the parser for a service or an error if it is absent.
func (r *Registry) Resolve(service domain.Service) (Parser, error) {
	if p, ok := r.parsers[service]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no parser registered for service %s", service)
}

// Services enumerates registered services: the known ones in the domain
// reporting order, then any others sorted by name, so a parser for a new
// service shows up without touching the fixed list.
func (r *Registry) Services() []domain.Service {
	known := map[domain.Service]bool{}
	var services []domain.Service
	for _, service := range domain.Services() {
		known[service] = true
		if _, ok := r.parsers[service]; ok {
			services = append(services, service)
		}
	}

	var extra []domain.Service
	for service := range r.parsers {
		if !known[service] {
			extra = append(extra, service)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(services, extra...)
}
