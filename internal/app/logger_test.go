package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerCarriesServiceAttributes(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{AppEnv: "staging", LogFormat: "json"}

	logger := newLogger(cfg, &buf)
	logger.Info("recompute finished")

	out := buf.String()
	require.Contains(t, out, `"service":"provender"`)
	require.Contains(t, out, `"env":"staging"`)
}

func TestLoggerDefaultsToTextAndDevelopment(t *testing.T) {
	var buf bytes.Buffer

	logger := newLogger(nil, &buf)
	logger.Info("boot")

	out := buf.String()
	require.Contains(t, out, "service=provender")
	require.Contains(t, out, "env=development")
}
