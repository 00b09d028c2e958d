package app

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns a configured slog.Logger based on configuration. Every
// record carries the service name and environment so provender API and worker
// logs stay distinguishable in a shared stream.
func NewLogger(cfg *Config) *slog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	env := "development"
	if cfg != nil && cfg.AppEnv != "" {
		env = cfg.AppEnv
	}
	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{AddSource: true})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{AddSource: true})
	}
	return slog.New(handler).With(
		slog.String("service", "provender"),
		slog.String("env", env),
	)
}
