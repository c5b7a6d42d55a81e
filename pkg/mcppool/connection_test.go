package mcppool

import (
	"errors"
	"testing"
)

func TestSharedConnAcquireUninitialized(t *testing.T) {
	t.Parallel()

	conn := &sharedConn{config: stdioConfig("fs")}
	if _, err := conn.acquire(); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if conn.refCount() != 0 {
		t.Fatalf("failed acquire must not bump the ref count, got %d", conn.refCount())
	}
}

func TestSharedConnReleaseFloorsAtZero(t *testing.T) {
	t.Parallel()

	conn := &sharedConn{config: stdioConfig("fs")}
	if got := conn.release(); got != 0 {
		t.Fatalf("release on idle connection = %d, expected 0", got)
	}
	conn.refs = 2
	if got := conn.release(); got != 1 {
		t.Fatalf("release = %d, expected 1", got)
	}
	if got := conn.release(); got != 0 {
		t.Fatalf("release = %d, expected 0", got)
	}
	if got := conn.release(); got != 0 {
		t.Fatalf("extra release must floor at 0, got %d", got)
	}
}

func TestSharedConnConnectedImpliesSession(t *testing.T) {
	t.Parallel()

	conn := &sharedConn{config: stdioConfig("fs"), connected: true}
	if conn.isConnected() {
		t.Fatalf("connected flag without a session must not report connected")
	}
}
