// Package mcpserv layers per-server convenience types over a mcppool.Pool.
// Wrapper binds one server configuration to a pool and forwards protocol
// operations through scoped sessions; Registry keeps a name-to-wrapper map
// and delegates pool lifecycle. Neither adds concurrency machinery of its
// own; all sharing and locking lives in the pool.
package mcpserv
