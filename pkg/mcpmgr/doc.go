// Package mcpmgr provides the top-level Manager that binds a shared MCP
// connection pool to a server registry. It is the convenience surface for
// applications that want one object to configure servers against, start and
// stop, and route tool calls through, without touching the pool or registry
// directly. All pooling invariants live in mcppool; Manager adds only
// lifecycle bookkeeping.
package mcpmgr
