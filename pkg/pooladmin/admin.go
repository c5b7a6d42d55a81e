package pooladmin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/cors"

	"github.com/vikashloomba/mcp-session-pool-go/pkg/mcppool"
)

// Server exposes pool inspection and tool invocation over HTTP.
type Server struct {
	pool *mcppool.Pool
	opts Options

	httpHandler http.Handler

	httpServerMu sync.Mutex
	httpServer   *http.Server
}

// NewServer builds an admin server over an existing pool.
func NewServer(pool *mcppool.Pool, opts *Options) (*Server, error) {
	if pool == nil {
		return nil, fmt.Errorf("pooladmin: pool is required")
	}
	s := &Server{pool: pool, opts: opts.withDefaults()}
	s.httpHandler = s.mountHandler()
	return s, nil
}

// Options returns the effective options after defaulting.
func (s *Server) Options() Options { return s.opts }

// Handler exposes the HTTP handler serving the admin routes.
func (s *Server) Handler() http.Handler { return s.httpHandler }

// ListenAndServe runs an HTTP server until the provided context is cancelled
// or the server stops.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServerMu.Lock()
	if s.httpServer != nil {
		srv := s.httpServer
		s.httpServerMu.Unlock()
		return fmt.Errorf("pooladmin: server already running on %s", srv.Addr)
	}
	srv := &http.Server{Addr: s.opts.Addr, Handler: s.Handler()}
	s.httpServer = srv
	s.httpServerMu.Unlock()
	defer func() {
		s.httpServerMu.Lock()
		if s.httpServer == srv {
			s.httpServer = nil
		}
		s.httpServerMu.Unlock()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.RequestTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown stops the embedded HTTP server if it is running.
func (s *Server) Shutdown(ctx context.Context) error {
	s.httpServerMu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.httpServerMu.Unlock()
	if srv == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return srv.Shutdown(ctx)
}

func (s *Server) mountHandler() http.Handler {
	path := strings.TrimSuffix(s.opts.Path, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+path+"/servers", s.handleServers)
	mux.HandleFunc("GET "+path+"/tools", s.handleTools)
	mux.HandleFunc("POST "+path+"/tools/call", s.handleCallTool)

	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(mux)
}

func (s *Server) handleServers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.pool.Stats())
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()
	if !s.pool.IsRunning() {
		s.writeError(w, mcppool.ErrNotRunning)
		return
	}
	s.writeJSON(w, http.StatusOK, s.pool.GetAllTools(ctx))
}

type callToolRequest struct {
	Server    string         `json:"server"`
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	var req callToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorStatus(w, http.StatusBadRequest, fmt.Errorf("pooladmin: invalid request body: %w", err))
		return
	}
	if req.Server == "" || req.Tool == "" {
		s.writeErrorStatus(w, http.StatusBadRequest, fmt.Errorf("pooladmin: server and tool are required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()
	result, err := s.pool.CallTool(ctx, req.Server, req.Tool, req.Arguments)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, mcppool.ErrNotRunning):
		status = http.StatusServiceUnavailable
	case errors.Is(err, mcppool.ErrNotConfigured):
		status = http.StatusNotFound
	}
	s.writeErrorStatus(w, status, err)
}

func (s *Server) writeErrorStatus(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.opts.Logger.Error("admin request failed", "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.opts.Logger.Error("encode admin response", "error", err)
	}
}
