// Package poolcfg loads pool and server definitions from a YAML file so a
// composition point can build a ready-to-run connection pool without
// hand-writing configuration structs.
package poolcfg

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vikashloomba/mcp-session-pool-go/pkg/mcppool"
)

// PoolSettings configure the shared connection pool.
type PoolSettings struct {
	ClientName         string `yaml:"client_name"`
	ClientVersion      string `yaml:"client_version"`
	MaxIdleTimeSeconds int    `yaml:"max_idle_time_seconds"`
}

// AdminSettings configure the optional HTTP admin surface.
type AdminSettings struct {
	Enabled        bool     `yaml:"enabled"`
	Addr           string   `yaml:"addr"`
	Path           string   `yaml:"path"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Config is the root document.
type Config struct {
	Pool    PoolSettings           `yaml:"pool"`
	Admin   AdminSettings          `yaml:"admin"`
	Servers []mcppool.ServerConfig `yaml:"servers"`
}

// DefaultConfig returns a configuration with no servers and default pool
// settings.
func DefaultConfig() *Config {
	return &Config{
		Pool: PoolSettings{
			ClientName:         "mcppool",
			ClientVersion:      "1.0.0",
			MaxIdleTimeSeconds: 300,
		},
		Admin: AdminSettings{
			Addr: ":8700",
			Path: "/pool",
		},
	}
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("poolcfg: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("poolcfg: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects documents the pool would only refuse lazily: every server
// must validate, names must be unique, and unknown transport values fail
// here rather than on first use.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Servers))
	for _, server := range c.Servers {
		if err := server.Validate(); err != nil {
			return err
		}
		if _, ok := seen[server.Name]; ok {
			return fmt.Errorf("poolcfg: duplicate server name %q", server.Name)
		}
		seen[server.Name] = struct{}{}
	}
	if c.Pool.MaxIdleTimeSeconds < 0 {
		return fmt.Errorf("poolcfg: max_idle_time_seconds must not be negative")
	}
	return nil
}

// PoolOptions translates the document into mcppool options.
func (c *Config) PoolOptions(logger *slog.Logger) *mcppool.Options {
	return &mcppool.Options{
		ClientName:    c.Pool.ClientName,
		ClientVersion: c.Pool.ClientVersion,
		MaxIdleTime:   time.Duration(c.Pool.MaxIdleTimeSeconds) * time.Second,
		Logger:        logger,
	}
}

// Apply registers every configured server with the pool.
func (c *Config) Apply(pool *mcppool.Pool) error {
	for _, server := range c.Servers {
		if err := pool.AddServer(server); err != nil {
			return err
		}
	}
	return nil
}
