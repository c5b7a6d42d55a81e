package mcppool

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Options configure a Pool instance.
type Options struct {
	// ClientName is advertised to servers during the initialize handshake.
	// Defaults to "mcppool".
	ClientName string
	// ClientVersion controls the semantic version reported to servers.
	ClientVersion string
	// MaxIdleTime is how long an idle connection may be kept alive. The value
	// is recorded but no eviction loop acts on it yet; connections live until
	// Stop or RemoveServer.
	MaxIdleTime time.Duration
	// Logger receives structured diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
	// NewTransport overrides transport construction for every configured
	// server. When nil, stdio servers are launched as subprocesses and all
	// other transports fail with ErrTransportUnsupported.
	NewTransport func(ServerConfig) (mcp.Transport, error)
}

func (o *Options) withDefaults() Options {
	if o == nil {
		o = &Options{}
	}
	opts := *o
	if opts.ClientName == "" {
		opts.ClientName = "mcppool"
	}
	if opts.ClientVersion == "" {
		opts.ClientVersion = "1.0.0"
	}
	if opts.MaxIdleTime <= 0 {
		opts.MaxIdleTime = 5 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts
}

// ServerStat is a point-in-time snapshot of one configured server.
type ServerStat struct {
	Name      string        `json:"name"`
	Transport TransportType `json:"transport"`
	Connected bool          `json:"connected"`
	RefCount  int           `json:"ref_count"`
}

// Pool owns the set of named server configurations and at most one shared
// connection per name. Creation is lazy and serialized under the pool lock;
// session access is reference counted per connection.
type Pool struct {
	opts Options

	mu      sync.Mutex
	configs map[string]ServerConfig
	conns   map[string]*sharedConn
	running bool
}

// New constructs a Pool. Callers can pass nil options to fall back to
// defaults. The pool refuses session access until Start is called.
func New(opts *Options) *Pool {
	return &Pool{
		opts:    opts.withDefaults(),
		configs: make(map[string]ServerConfig),
		conns:   make(map[string]*sharedConn),
	}
}

// AddServer registers a server configuration. Connection creation is deferred
// to the first GetSession for the name.
func (p *Pool) AddServer(cfg ServerConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.configs[cfg.Name]; ok {
		return fmt.Errorf("mcppool: server %q: %w", cfg.Name, ErrAlreadyConfigured)
	}
	p.configs[cfg.Name] = cfg
	p.opts.Logger.Info("added server configuration", "server", cfg.Name)
	return nil
}

// RemoveServer drops a server configuration and any idle connection for it.
// It fails when the name is unknown or when the connection still has
// outstanding leases. An idle connection is closed before it is dropped.
func (p *Pool) RemoveServer(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.configs[name]; !ok {
		return fmt.Errorf("mcppool: server %q: %w", name, ErrNotConfigured)
	}
	if conn, ok := p.conns[name]; ok {
		if conn.refCount() > 0 {
			return fmt.Errorf("mcppool: server %q: %w", name, ErrActiveReferences)
		}
		p.closeLocked(name)
	}
	delete(p.configs, name)
	p.opts.Logger.Info("removed server configuration", "server", name)
	return nil
}

// GetSession returns a lease on the shared session for name, creating the
// connection if no live one exists. The check-and-create step holds the pool
// lock, so concurrent first-time requests for the same name produce exactly
// one subprocess and one initialize handshake. Callers must Release the lease
// on every exit path; see WithSession for the scoped form.
func (p *Pool) GetSession(ctx context.Context, name string) (*SessionLease, error) {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil, fmt.Errorf("mcppool: %w", ErrNotRunning)
	}
	cfg, ok := p.configs[name]
	if !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("mcppool: server %q: %w", name, ErrNotConfigured)
	}
	conn, ok := p.conns[name]
	if !ok || !conn.isConnected() {
		created, err := p.connect(ctx, cfg)
		if err != nil {
			p.mu.Unlock()
			return nil, err
		}
		p.conns[name] = created
		conn = created
	}
	p.mu.Unlock()

	session, err := conn.acquire()
	if err != nil {
		return nil, err
	}
	return &SessionLease{name: name, conn: conn, session: session, logger: p.opts.Logger}, nil
}

// WithSession runs fn against a leased session and releases the lease on
// every exit path, including panics.
func (p *Pool) WithSession(ctx context.Context, name string, fn func(context.Context, *mcp.ClientSession) error) error {
	lease, err := p.GetSession(ctx, name)
	if err != nil {
		return err
	}
	defer lease.Release()
	return fn(ctx, lease.Session())
}

// connect is called with the pool lock held; it either fully creates a
// connection or leaves no trace.
func (p *Pool) connect(ctx context.Context, cfg ServerConfig) (*sharedConn, error) {
	transport, err := p.transportFor(cfg)
	if err != nil {
		return nil, err
	}
	client := mcp.NewClient(&mcp.Implementation{
		Name:    p.opts.ClientName,
		Version: p.opts.ClientVersion,
	}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("mcppool: connect to server %q: %w", cfg.Name, err)
	}
	conn := &sharedConn{config: cfg, session: session, connected: true}
	go p.monitorSession(cfg.Name, conn, session)
	p.opts.Logger.Info("created connection", "server", cfg.Name, "transport", string(cfg.transport()))
	return conn, nil
}

func (p *Pool) transportFor(cfg ServerConfig) (mcp.Transport, error) {
	if p.opts.NewTransport != nil {
		return p.opts.NewTransport(cfg)
	}
	switch cfg.transport() {
	case TransportStdio:
		return buildStdioTransport(cfg)
	default:
		return nil, fmt.Errorf("mcppool: server %q: transport %q: %w", cfg.Name, cfg.transport(), ErrTransportUnsupported)
	}
}

func buildStdioTransport(cfg ServerConfig) (mcp.Transport, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("mcppool: command missing for %q", cfg.Name)
	}
	cmd := exec.Command(cfg.Command, cfg.Args...)
	if len(cfg.Env) > 0 {
		env := os.Environ()
		for k, v := range cfg.Env {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		cmd.Env = env
	}
	return &mcp.CommandTransport{Command: cmd}, nil
}

// monitorSession marks the connection disconnected once its session ends, so
// the next GetSession for the name creates a fresh one.
func (p *Pool) monitorSession(name string, conn *sharedConn, session *mcp.ClientSession) {
	err := session.Wait()
	conn.markDisconnected()
	if err != nil {
		p.opts.Logger.Warn("connection terminated", "server", name, "error", err)
	}
}

// GetAllTools lists tools from every configured server. A failure for one
// server is logged and recorded as an empty list so the aggregate stays
// useful when a single server is unreachable.
func (p *Pool) GetAllTools(ctx context.Context) map[string][]*mcp.Tool {
	tools := make(map[string][]*mcp.Tool)
	for _, name := range p.ServerNames() {
		err := p.WithSession(ctx, name, func(ctx context.Context, session *mcp.ClientSession) error {
			res, err := session.ListTools(ctx, nil)
			if err != nil {
				return err
			}
			tools[name] = res.Tools
			return nil
		})
		if err != nil {
			p.opts.Logger.Error("failed to list tools", "server", name, "error", err)
			tools[name] = []*mcp.Tool{}
		}
	}
	return tools
}

// CallTool invokes a tool on the named server through a scoped session.
// Protocol-level errors propagate to the caller.
func (p *Pool) CallTool(ctx context.Context, serverName, toolName string, args any) (*mcp.CallToolResult, error) {
	var result *mcp.CallToolResult
	err := p.WithSession(ctx, serverName, func(ctx context.Context, session *mcp.ClientSession) error {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: toolName, Arguments: args})
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Start opens the pool for session access. Idempotent.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.opts.Logger.Info("connection pool started")
}

// Stop gates the pool and closes every connection. Individual teardown
// failures are logged and swallowed so one misbehaving server cannot block
// teardown of the others. Closing a session also reaps the underlying
// subprocess transport.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	for _, name := range sortedKeys(p.conns) {
		p.closeLocked(name)
	}
	p.opts.Logger.Info("connection pool stopped")
}

// closeLocked closes and removes one connection entry. Caller holds p.mu.
func (p *Pool) closeLocked(name string) {
	conn, ok := p.conns[name]
	if !ok {
		return
	}
	conn.markDisconnected()
	if session := conn.sessionRef(); session != nil {
		if err := session.Close(); err != nil {
			p.opts.Logger.Warn("error closing session", "server", name, "error", err)
		}
	}
	delete(p.conns, name)
	p.opts.Logger.Info("closed connection", "server", name)
}

// ServerNames returns the configured server names in sorted order.
func (p *Pool) ServerNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return sortedKeys(p.configs)
}

// ActiveConnections returns the number of live connections.
func (p *Pool) ActiveConnections() int {
	p.mu.Lock()
	conns := make([]*sharedConn, 0, len(p.conns))
	for _, conn := range p.conns {
		conns = append(conns, conn)
	}
	p.mu.Unlock()
	active := 0
	for _, conn := range conns {
		if conn.isConnected() {
			active++
		}
	}
	return active
}

// IsRunning reports whether the pool currently accepts session access.
func (p *Pool) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Stats returns a snapshot for every configured server, connected or not.
func (p *Pool) Stats() []ServerStat {
	p.mu.Lock()
	stats := make([]ServerStat, 0, len(p.configs))
	conns := make(map[string]*sharedConn, len(p.conns))
	for _, name := range sortedKeys(p.configs) {
		stats = append(stats, ServerStat{Name: name, Transport: p.configs[name].transport()})
		if conn, ok := p.conns[name]; ok {
			conns[name] = conn
		}
	}
	p.mu.Unlock()
	for i := range stats {
		if conn, ok := conns[stats[i].Name]; ok {
			stats[i].Connected = conn.isConnected()
			stats[i].RefCount = conn.refCount()
		}
	}
	return stats
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
