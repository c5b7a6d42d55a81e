package pooladmin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vikashloomba/mcp-session-pool-go/pkg/mcppool"
)

func inMemoryTransport(cfg mcppool.ServerConfig) (mcp.Transport, error) {
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	server := mcp.NewServer(&mcp.Implementation{Name: cfg.Name, Version: "0.1.0"}, nil)
	server.AddTool(&mcp.Tool{
		Name:        "echo",
		Description: "echoes back a fixed reply",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "echo:" + cfg.Name}},
		}, nil
	})
	if _, err := server.Connect(context.Background(), serverTransport, nil); err != nil {
		return nil, err
	}
	return clientTransport, nil
}

func newTestServer(t *testing.T, start bool) (*mcppool.Pool, *httptest.Server) {
	t.Helper()
	pool := mcppool.New(&mcppool.Options{
		ClientName:   "pooladmin-tests",
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		NewTransport: inMemoryTransport,
	})
	t.Cleanup(pool.Stop)
	if err := pool.AddServer(mcppool.ServerConfig{Name: "fs", Command: "echo-server"}); err != nil {
		t.Fatalf("AddServer: %v", err)
	}
	if start {
		pool.Start()
	}

	admin, err := NewServer(pool, &Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(admin.Handler())
	t.Cleanup(ts.Close)
	return pool, ts
}

func TestServersEndpoint(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, true)
	resp, err := http.Get(ts.URL + "/pool/servers")
	if err != nil {
		t.Fatalf("GET /pool/servers: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var stats []mcppool.ServerStat
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(stats) != 1 || stats[0].Name != "fs" || stats[0].Connected {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestToolsEndpoint(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, true)
	resp, err := http.Get(ts.URL + "/pool/tools")
	if err != nil {
		t.Fatalf("GET /pool/tools: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var tools map[string][]*mcp.Tool
	if err := json.NewDecoder(resp.Body).Decode(&tools); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tools["fs"]) != 1 || tools["fs"][0].Name != "echo" {
		t.Fatalf("unexpected tools: %v", tools)
	}
}

func TestToolsEndpointPoolNotRunning(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, false)
	resp, err := http.Get(ts.URL + "/pool/tools")
	if err != nil {
		t.Fatalf("GET /pool/tools: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, expected 503", resp.StatusCode)
	}
}

func TestCallToolEndpoint(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, true)
	body, _ := json.Marshal(map[string]any{
		"server":    "fs",
		"tool":      "echo",
		"arguments": map[string]any{"text": "hi"},
	})
	resp, err := http.Post(ts.URL+"/pool/tools/call", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /pool/tools/call: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Content) != 1 || result.Content[0].Text != "echo:fs" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCallToolEndpointErrors(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, true)

	body, _ := json.Marshal(map[string]any{"server": "ghost", "tool": "echo"})
	resp, err := http.Post(ts.URL+"/pool/tools/call", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("ghost server status = %d, expected 404", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/pool/tools/call", "application/json", bytes.NewReader([]byte("{")))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad body status = %d, expected 400", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/pool/tools/call", "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing fields status = %d, expected 400", resp.StatusCode)
	}
}

func TestCORSHeadersPresent(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, true)
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/pool/servers", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Origin", "https://ui.example.com")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestShutdownWithoutListen(t *testing.T) {
	t.Parallel()

	pool := mcppool.New(&mcppool.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	t.Cleanup(pool.Stop)
	admin, err := NewServer(pool, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := admin.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown without listen: %v", err)
	}
}
