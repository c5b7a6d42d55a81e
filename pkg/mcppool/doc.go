// Package mcppool provides a shared connection pool for Model Context
// Protocol (MCP) servers launched as stdio subprocesses. Instead of every
// consumer spawning and initializing its own server process, a Pool keeps at
// most one live session per configured server name, hands out
// reference-counted leases on it, and tears everything down in one place.
//
// # Core entry points
//
//   - Pool is the long-lived type. Construct it with New, register servers
//     with AddServer, then bracket all session access between Start and Stop.
//   - GetSession returns a SessionLease whose Release must run on every exit
//     path; WithSession wraps that pattern in a closure for convenience.
//   - ServerConfig declares how each server is launched. Only the stdio
//     transport is implemented today; sse and streamable_http configurations
//     are accepted but fail with ErrTransportUnsupported on first use.
//
// Connections are created lazily on the first GetSession for a name. The
// check-and-create step runs under the pool's own lock, so concurrent
// first-time requests for the same server produce exactly one subprocess and
// one initialize handshake. Connections are never evicted while the pool is
// running; Stop closes them all.
package mcppool
