package mcppool

import (
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SessionLease is a reference-counted handle on a shared session. Release is
// safe to call more than once; only the first call drops the reference.
type SessionLease struct {
	name    string
	conn    *sharedConn
	session *mcp.ClientSession
	logger  *slog.Logger
	once    sync.Once
}

// Session returns the live session backing this lease. The session is shared
// with every other current lease holder; the SDK serializes its own requests.
func (l *SessionLease) Session() *mcp.ClientSession { return l.session }

// Name returns the server name the lease was acquired for.
func (l *SessionLease) Name() string { return l.name }

// Release returns the lease's reference to the pool. It never closes the
// session; connections stay alive until the pool stops.
func (l *SessionLease) Release() {
	l.once.Do(func() {
		remaining := l.conn.release()
		l.logger.Debug("released session lease", "server", l.name, "remaining", remaining)
	})
}
