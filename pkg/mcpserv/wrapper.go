package mcpserv

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vikashloomba/mcp-session-pool-go/pkg/mcppool"
)

// Wrapper binds one server configuration to a connection pool and exposes the
// server's protocol surface as plain methods. Every call borrows a scoped
// session from the pool and releases it before returning.
type Wrapper struct {
	config     mcppool.ServerConfig
	pool       *mcppool.Pool
	registered bool
}

// NewWrapper builds a wrapper over an explicit pool. The pool is required;
// sharing one across wrappers is the caller's composition decision.
func NewWrapper(cfg mcppool.ServerConfig, pool *mcppool.Pool) (*Wrapper, error) {
	if pool == nil {
		return nil, fmt.Errorf("mcpserv: pool is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Wrapper{config: cfg, pool: pool}, nil
}

// Name returns the server name.
func (w *Wrapper) Name() string { return w.config.Name }

// Config returns the bound server configuration.
func (w *Wrapper) Config() mcppool.ServerConfig { return w.config }

// Pool returns the connection pool in use.
func (w *Wrapper) Pool() *mcppool.Pool { return w.pool }

// IsRegistered reports whether the wrapper's config is registered with the pool.
func (w *Wrapper) IsRegistered() bool { return w.registered }

// Register adds the wrapper's configuration to the pool. Calling it again is
// a no-op.
func (w *Wrapper) Register() error {
	if w.registered {
		return nil
	}
	if err := w.pool.AddServer(w.config); err != nil {
		return err
	}
	w.registered = true
	return nil
}

// Unregister removes the wrapper's configuration from the pool. An
// already-removed config is tolerated; a config with live leases is not.
func (w *Wrapper) Unregister() error {
	if !w.registered {
		return nil
	}
	if err := w.pool.RemoveServer(w.config.Name); err != nil && !errors.Is(err, mcppool.ErrNotConfigured) {
		return err
	}
	w.registered = false
	return nil
}

// ListTools lists the tools available from this server.
func (w *Wrapper) ListTools(ctx context.Context) ([]*mcp.Tool, error) {
	var tools []*mcp.Tool
	err := w.pool.WithSession(ctx, w.config.Name, func(ctx context.Context, session *mcp.ClientSession) error {
		res, err := session.ListTools(ctx, nil)
		if err != nil {
			return err
		}
		tools = res.Tools
		return nil
	})
	return tools, err
}

// ListResources lists the resources available from this server.
func (w *Wrapper) ListResources(ctx context.Context) ([]*mcp.Resource, error) {
	var resources []*mcp.Resource
	err := w.pool.WithSession(ctx, w.config.Name, func(ctx context.Context, session *mcp.ClientSession) error {
		res, err := session.ListResources(ctx, nil)
		if err != nil {
			return err
		}
		resources = res.Resources
		return nil
	})
	return resources, err
}

// ListPrompts lists the prompts available from this server.
func (w *Wrapper) ListPrompts(ctx context.Context) ([]*mcp.Prompt, error) {
	var prompts []*mcp.Prompt
	err := w.pool.WithSession(ctx, w.config.Name, func(ctx context.Context, session *mcp.ClientSession) error {
		res, err := session.ListPrompts(ctx, nil)
		if err != nil {
			return err
		}
		prompts = res.Prompts
		return nil
	})
	return prompts, err
}

// CallTool invokes a tool on this server.
func (w *Wrapper) CallTool(ctx context.Context, toolName string, args any) (*mcp.CallToolResult, error) {
	return w.pool.CallTool(ctx, w.config.Name, toolName, args)
}

// ReadResource reads a resource from this server by URI.
func (w *Wrapper) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	var result *mcp.ReadResourceResult
	err := w.pool.WithSession(ctx, w.config.Name, func(ctx context.Context, session *mcp.ClientSession) error {
		res, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: uri})
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	return result, err
}

// GetPrompt retrieves a prompt from this server.
func (w *Wrapper) GetPrompt(ctx context.Context, name string, args map[string]string) (*mcp.GetPromptResult, error) {
	var result *mcp.GetPromptResult
	err := w.pool.WithSession(ctx, w.config.Name, func(ctx context.Context, session *mcp.ClientSession) error {
		res, err := session.GetPrompt(ctx, &mcp.GetPromptParams{Name: name, Arguments: args})
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	return result, err
}
