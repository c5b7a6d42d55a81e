package pooladmin

import (
	"log/slog"
	"time"
)

// Options configure a Server instance.
type Options struct {
	// Addr controls the listen address used by ListenAndServe. Defaults to ":8700".
	Addr string
	// Path mounts the admin routes under a specific HTTP prefix. Defaults to "/pool".
	Path string
	// AllowedOrigins restricts CORS. Empty means allow all origins.
	AllowedOrigins []string
	// Logger receives structured diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
	// RequestTimeout bounds how long a single admin request may take against
	// the pool. Defaults to 30s.
	RequestTimeout time.Duration
}

func (o *Options) withDefaults() Options {
	if o == nil {
		o = &Options{}
	}
	opts := *o
	if opts.Addr == "" {
		opts.Addr = ":8700"
	}
	if opts.Path == "" {
		opts.Path = "/pool"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return opts
}
