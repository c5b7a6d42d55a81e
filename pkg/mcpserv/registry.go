package mcpserv

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vikashloomba/mcp-session-pool-go/pkg/mcppool"
)

// Registry manages a set of server wrappers over one shared pool. It is pure
// bookkeeping: wrapper registration mirrors pool config presence, and
// lifecycle calls delegate to the pool.
type Registry struct {
	pool *mcppool.Pool

	mu      sync.Mutex
	servers map[string]*Wrapper
}

// NewRegistry builds a registry over an explicit pool.
func NewRegistry(pool *mcppool.Pool) (*Registry, error) {
	if pool == nil {
		return nil, fmt.Errorf("mcpserv: pool is required")
	}
	return &Registry{pool: pool, servers: make(map[string]*Wrapper)}, nil
}

// Pool returns the connection pool in use.
func (r *Registry) Pool() *mcppool.Pool { return r.pool }

// Add creates a wrapper for cfg, registers it with the pool, and records it.
func (r *Registry) Add(cfg mcppool.ServerConfig) (*Wrapper, error) {
	wrapper, err := NewWrapper(cfg, r.pool)
	if err != nil {
		return nil, err
	}
	if err := wrapper.Register(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.servers[cfg.Name] = wrapper
	r.mu.Unlock()
	return wrapper, nil
}

// Get returns the wrapper for name.
func (r *Registry) Get(name string) (*Wrapper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wrapper, ok := r.servers[name]
	if !ok {
		return nil, fmt.Errorf("mcpserv: server %q: %w", name, mcppool.ErrNotConfigured)
	}
	return wrapper, nil
}

// Remove unregisters and forgets the wrapper for name. Unknown names are a
// no-op; a server with live leases refuses removal.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	wrapper, ok := r.servers[name]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	if err := wrapper.Unregister(); err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.servers, name)
	r.mu.Unlock()
	return nil
}

// ServerNames returns the registered names in sorted order.
func (r *Registry) ServerNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.servers))
	for name := range r.servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAllTools aggregates tool listings from every registered server via the pool.
func (r *Registry) GetAllTools(ctx context.Context) map[string][]*mcp.Tool {
	return r.pool.GetAllTools(ctx)
}

// Start opens the underlying pool for session access.
func (r *Registry) Start() { r.pool.Start() }

// Stop closes every pooled connection.
func (r *Registry) Stop() { r.pool.Stop() }
