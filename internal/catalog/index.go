package catalog

import "sync"

// Index is the session-local endpoint lookup. It is populated from listing
// pages as they arrive and consulted by trigger preconditions and the preview
// classifier, so those paths never wait on the network.
type Index struct {
	mu        sync.RWMutex
	endpoints map[string]*Endpoint
}

// NewIndex creates an empty endpoint index.
func NewIndex() *Index {
	return &Index{
		endpoints: make(map[string]*Endpoint),
	}
}

// Upsert records or replaces endpoints in the index.
func (i *Index) Upsert(endpoints ...*Endpoint) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for _, ep := range endpoints {
		if ep != nil && ep.ID != "" {
			i.endpoints[ep.ID] = ep
		}
	}
}

// Endpoint returns the endpoint with the given id, if resolved.
func (i *Index) Endpoint(id string) (*Endpoint, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	ep, ok := i.endpoints[id]
	return ep, ok
}

// Snapshot returns a copy of the lookup map keyed by endpoint id.
func (i *Index) Snapshot() map[string]*Endpoint {
	i.mu.RLock()
	defer i.mu.RUnlock()

	snap := make(map[string]*Endpoint, len(i.endpoints))
	for id, ep := range i.endpoints {
		snap[id] = ep
	}
	return snap
}
