// Package pooladmin serves a small HTTP surface over a mcppool.Pool for
// inspection and ad-hoc tool invocation: connection stats, aggregated tool
// listings, and a call endpoint. It is an operator convenience, not an MCP
// transport.
package pooladmin
