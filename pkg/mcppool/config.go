package mcppool

import "fmt"

// TransportType identifies how an MCP server is reached.
type TransportType string

const (
	TransportStdio          TransportType = "stdio"
	TransportSSE            TransportType = "sse"
	TransportStreamableHTTP TransportType = "streamable_http"
)

// knownTransport reports whether t names a transport the pool recognizes,
// implemented or not. An empty value is treated as stdio.
func knownTransport(t TransportType) bool {
	switch t {
	case "", TransportStdio, TransportSSE, TransportStreamableHTTP:
		return true
	default:
		return false
	}
}

// ServerConfig declares how one MCP server is identified and launched.
// Name is the unique key within a pool; Command, Args, and Env describe the
// subprocess for the stdio transport. URL is only consulted by the HTTP-based
// transports, which are not yet implemented.
type ServerConfig struct {
	Name      string            `yaml:"name" json:"name"`
	Command   string            `yaml:"command" json:"command,omitempty"`
	Args      []string          `yaml:"args" json:"args,omitempty"`
	Env       map[string]string `yaml:"env" json:"env,omitempty"`
	Transport TransportType     `yaml:"transport" json:"transport,omitempty"`
	URL       string            `yaml:"url" json:"url,omitempty"`
}

// transport returns the effective transport, defaulting to stdio.
func (c ServerConfig) transport() TransportType {
	if c.Transport == "" {
		return TransportStdio
	}
	return c.Transport
}

// IsStdio reports whether the config uses the stdio transport.
func (c ServerConfig) IsStdio() bool { return c.transport() == TransportStdio }

// Validate checks the fields needed before a config may be registered.
// Transport support is deliberately not checked here: unsupported transports
// register fine and fail on first use.
func (c ServerConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("mcppool: server name is required")
	}
	if !knownTransport(c.Transport) {
		return fmt.Errorf("mcppool: server %q: unknown transport %q", c.Name, c.Transport)
	}
	if c.IsStdio() && c.Command == "" {
		return fmt.Errorf("mcppool: server %q: command is required for stdio transport", c.Name)
	}
	return nil
}
