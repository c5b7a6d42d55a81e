package mcppool

import (
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// sharedConn tracks one live session and the number of outstanding leases on
// it. Its own mutex covers the reference count and connected flag, so lease
// traffic never contends on the pool-wide lock.
type sharedConn struct {
	config ServerConfig

	mu        sync.Mutex
	session   *mcp.ClientSession
	refs      int
	connected bool
}

// acquire hands out the session and bumps the reference count. The
// uninitialized check is defensive: the pool only stores fully created
// connections.
func (c *sharedConn) acquire() (*mcp.ClientSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, fmt.Errorf("mcppool: server %q: %w", c.config.Name, ErrNotConnected)
	}
	c.refs++
	return c.session, nil
}

// release drops one reference, flooring at zero, and returns the remaining
// count. It never closes the session; closing is the pool's job.
func (c *sharedConn) release() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refs > 0 {
		c.refs--
	}
	return c.refs
}

func (c *sharedConn) refCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refs
}

func (c *sharedConn) isConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected && c.session != nil
}

func (c *sharedConn) markDisconnected() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

func (c *sharedConn) sessionRef() *mcp.ClientSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}
