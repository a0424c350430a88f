// Package registry holds the process-scoped maps from object name to
// local representative (sink or source) and to the transport node(s)
// currently linking that object.
package registry

import (
	"sync"

	"github.com/tenzoki/agen/olink/public/link"
)

// ClientRegistry maps object names to the Sink proxying them, and to
// the single ClientHandle a client links through.
type ClientRegistry struct {
	mu    sync.RWMutex
	sinks map[string]link.Sink
	nodes map[string]link.ClientHandle
}

// NewClientRegistry returns an empty, ready-to-use registry. Tests
// should always construct their own rather than sharing DefaultClient.
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{
		sinks: make(map[string]link.Sink),
		nodes: make(map[string]link.ClientHandle),
	}
}

// AddSink registers sink under its own ObjectName. Re-registering the
// same name replaces the previous sink; this is idempotent in the
// sense that the registry's set of known names does not grow.
func (r *ClientRegistry) AddSink(s link.Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[s.ObjectName()] = s
}

// RemoveSink removes any sink registered under objectID.
func (r *ClientRegistry) RemoveSink(objectID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sinks, objectID)
	delete(r.nodes, objectID)
}

// GetSink returns the sink registered for objectID, if any.
func (r *ClientRegistry) GetSink(objectID string) (link.Sink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sinks[objectID]
	return s, ok
}

// SetNode records which ClientHandle objectID is currently linked
// through, so later SET_PROPERTY/INVOKE calls know where to send.
// Passing nil clears the pointer, marking the object unlinked.
func (r *ClientRegistry) SetNode(objectID string, node link.ClientHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if node == nil {
		delete(r.nodes, objectID)
		return
	}
	r.nodes[objectID] = node
}

// GetNode returns the ClientHandle objectID is currently linked through.
func (r *ClientRegistry) GetNode(objectID string) (link.ClientHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[objectID]
	return n, ok
}

var (
	defaultClientOnce sync.Once
	defaultClient     *ClientRegistry
)

// DefaultClient returns a process-wide ClientRegistry for callers (the
// demo binaries) that don't want to thread one through their call
// graph. Tests must not use this; construct a fresh registry instead.
func DefaultClient() *ClientRegistry {
	defaultClientOnce.Do(func() { defaultClient = NewClientRegistry() })
	return defaultClient
}

// ServerRegistry maps object names to the Source implementing them,
// and to the set of server nodes currently linking each name — a
// Source may be linked by more than one node at once, and
// PROPERTY_CHANGE/SIGNAL fan out to every one of them.
type ServerRegistry struct {
	mu      sync.RWMutex
	sources map[string]link.Source
	nodes   map[string]map[link.RemoteNode]struct{}
}

// NewServerRegistry returns an empty, ready-to-use registry.
func NewServerRegistry() *ServerRegistry {
	return &ServerRegistry{
		sources: make(map[string]link.Source),
		nodes:   make(map[string]map[link.RemoteNode]struct{}),
	}
}

// AddSource registers src under its own ObjectName.
func (r *ServerRegistry) AddSource(src link.Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[src.ObjectName()] = src
}

// RemoveSource removes the source registered under objectID and all
// node links for it.
func (r *ServerRegistry) RemoveSource(objectID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sources, objectID)
	delete(r.nodes, objectID)
}

// GetSource returns the source registered for objectID, if any.
func (r *ServerRegistry) GetSource(objectID string) (link.Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[objectID]
	return s, ok
}

// AttachNode records that node now links objectID.
func (r *ServerRegistry) AttachNode(objectID string, node link.RemoteNode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.nodes[objectID]
	if !ok {
		set = make(map[link.RemoteNode]struct{})
		r.nodes[objectID] = set
	}
	set[node] = struct{}{}
}

// DetachNode removes node from objectID's node set.
func (r *ServerRegistry) DetachNode(objectID string, node link.RemoteNode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.nodes[objectID]
	if !ok {
		return
	}
	delete(set, node)
	if len(set) == 0 {
		delete(r.nodes, objectID)
	}
}

// DetachAll removes node from every object's node set, for connection
// teardown where the peer can no longer send UNLINKs.
func (r *ServerRegistry) DetachAll(node link.RemoteNode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for objectID, set := range r.nodes {
		delete(set, node)
		if len(set) == 0 {
			delete(r.nodes, objectID)
		}
	}
}

// NodesOf returns a snapshot of the nodes currently linking objectID,
// safe to range over without holding the registry's lock (per the
// fan-out-snapshot invariant).
func (r *ServerRegistry) NodesOf(objectID string) []link.RemoteNode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.nodes[objectID]
	out := make([]link.RemoteNode, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	return out
}

var (
	defaultServerOnce sync.Once
	defaultServer     *ServerRegistry
)

// DefaultServer returns a process-wide ServerRegistry for the demo
// binaries. Tests must not use this; construct a fresh registry.
func DefaultServer() *ServerRegistry {
	defaultServerOnce.Do(func() { defaultServer = NewServerRegistry() })
	return defaultServer
}
