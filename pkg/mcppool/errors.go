package mcppool

import "errors"

// Pool lifecycle errors
var (
	// ErrNotRunning is returned when sessions are requested outside a
	// Start/Stop window.
	ErrNotRunning = errors.New("connection pool is not running")
)

// Configuration errors
var (
	// ErrAlreadyConfigured is returned when a server name collides on AddServer.
	ErrAlreadyConfigured = errors.New("already configured")

	// ErrNotConfigured is returned when a server name is unknown to the pool.
	ErrNotConfigured = errors.New("not configured")

	// ErrActiveReferences is returned when RemoveServer targets a connection
	// that still has outstanding session leases.
	ErrActiveReferences = errors.New("has active connections")
)

// Connection errors
var (
	// ErrNotConnected is returned when a session is acquired on a connection
	// that was never initialized. The pool's creation discipline makes this
	// unobservable in normal use.
	ErrNotConnected = errors.New("connection is not initialized")

	// ErrTransportUnsupported is returned at connection-creation time for any
	// transport other than stdio.
	ErrTransportUnsupported = errors.New("transport not implemented")
)
