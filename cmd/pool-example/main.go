package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vikashloomba/mcp-session-pool-go/pkg/mcppool"
	"github.com/vikashloomba/mcp-session-pool-go/pkg/mcpserv"
	"github.com/vikashloomba/mcp-session-pool-go/pkg/pooladmin"
	"github.com/vikashloomba/mcp-session-pool-go/pkg/poolcfg"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML pool configuration")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := poolcfg.DefaultConfig()
	if *configPath != "" {
		loaded, err := poolcfg.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load configuration: %v", err)
		}
		cfg = loaded
	} else {
		cfg.Servers = []mcppool.ServerConfig{{
			Name:    "everything",
			Command: "npx",
			Args:    []string{"@modelcontextprotocol/server-everything"},
		}}
	}

	pool := mcppool.New(cfg.PoolOptions(logger))
	if err := cfg.Apply(pool); err != nil {
		log.Fatalf("failed to register servers: %v", err)
	}

	registry, err := mcpserv.NewRegistry(pool)
	if err != nil {
		log.Fatalf("failed to build registry: %v", err)
	}
	registry.Start()
	defer registry.Stop()

	tools := registry.GetAllTools(ctx)
	for name, serverTools := range tools {
		log.Printf("server %s exposes %d tools", name, len(serverTools))
	}

	if !cfg.Admin.Enabled {
		log.Printf("pool running with servers %v; admin endpoint disabled", pool.ServerNames())
		<-ctx.Done()
		return
	}

	admin, err := pooladmin.NewServer(pool, &pooladmin.Options{
		Addr:           cfg.Admin.Addr,
		Path:           cfg.Admin.Path,
		AllowedOrigins: cfg.Admin.AllowedOrigins,
		Logger:         logger,
	})
	if err != nil {
		log.Fatalf("failed to build admin server: %v", err)
	}

	adminOpts := admin.Options()
	log.Printf("admin endpoint serving on %s%s", adminOpts.Addr, adminOpts.Path)
	if err := admin.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("admin server stopped: %v", err)
	}
}
