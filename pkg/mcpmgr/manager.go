package mcpmgr

import (
	"context"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vikashloomba/mcp-session-pool-go/pkg/mcppool"
	"github.com/vikashloomba/mcp-session-pool-go/pkg/mcpserv"
)

// Manager coordinates a connection pool and a server registry so multiple
// consumers share sessions instead of each spawning their own server
// processes. Pass an existing pool to share connections across managers;
// otherwise the manager owns a private one.
type Manager struct {
	pool     *mcppool.Pool
	registry *mcpserv.Registry

	mu      sync.Mutex
	running bool
}

// NewManager constructs a Manager. A nil pool creates a private one from
// opts; opts are ignored when a pool is supplied.
func NewManager(pool *mcppool.Pool, opts *mcppool.Options) *Manager {
	if pool == nil {
		pool = mcppool.New(opts)
	}
	// NewRegistry only fails on a nil pool.
	registry, _ := mcpserv.NewRegistry(pool)
	return &Manager{pool: pool, registry: registry}
}

// Pool returns the connection pool.
func (m *Manager) Pool() *mcppool.Pool { return m.pool }

// Registry returns the server registry.
func (m *Manager) Registry() *mcpserv.Registry { return m.registry }

// IsRunning reports whether Start has been called without a matching Stop.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// ServerNames returns the registered server names.
func (m *Manager) ServerNames() []string {
	return m.registry.ServerNames()
}

// AddServer registers a server configuration and returns its wrapper.
func (m *Manager) AddServer(cfg mcppool.ServerConfig) (*mcpserv.Wrapper, error) {
	return m.registry.Add(cfg)
}

// RemoveServer unregisters a server.
func (m *Manager) RemoveServer(name string) error {
	return m.registry.Remove(name)
}

// GetServer returns the wrapper for name.
func (m *Manager) GetServer(name string) (*mcpserv.Wrapper, error) {
	return m.registry.Get(name)
}

// GetSession leases a shared session for name directly from the pool.
func (m *Manager) GetSession(ctx context.Context, name string) (*mcppool.SessionLease, error) {
	return m.pool.GetSession(ctx, name)
}

// WithSession runs fn against a leased session, releasing it on every exit path.
func (m *Manager) WithSession(ctx context.Context, name string, fn func(context.Context, *mcp.ClientSession) error) error {
	return m.pool.WithSession(ctx, name, fn)
}

// GetAllTools aggregates tool listings from every configured server.
func (m *Manager) GetAllTools(ctx context.Context) map[string][]*mcp.Tool {
	return m.registry.GetAllTools(ctx)
}

// CallTool invokes a tool on a specific server.
func (m *Manager) CallTool(ctx context.Context, serverName, toolName string, args any) (*mcp.CallToolResult, error) {
	return m.pool.CallTool(ctx, serverName, toolName, args)
}

// Start opens the pool for session access. Idempotent.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.registry.Start()
	m.running = true
}

// Stop closes every pooled connection. Idempotent.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.registry.Stop()
	m.running = false
}
