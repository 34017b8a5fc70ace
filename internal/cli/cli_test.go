package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("defaults with positional path", func(t *testing.T) {
		cfg, exit, err := Parse([]string{"descriptors"}, &bytes.Buffer{})
		require.NoError(t, err)
		require.False(t, exit)
		assert.Equal(t, "descriptors", cfg.DescriptorPath)
		assert.Empty(t, cfg.Targets)
		assert.Equal(t, "json", cfg.Format)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 4, cfg.Parallel)
	})

	t.Run("all flags", func(t *testing.T) {
		cfg, _, err := Parse([]string{
			"-d", "ws",
			"-target", "FPSGame_V2Editor,FPSGame_V2",
			"-target", "Server",
			"-out", "plans",
			"-format", "YAML",
			"-log-format", "json",
			"-log-level", "debug",
			"-metrics-file", "m.prom",
			"-parallel", "2",
		}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "ws", cfg.DescriptorPath)
		assert.Equal(t, []string{"FPSGame_V2Editor", "FPSGame_V2", "Server"}, cfg.Targets)
		assert.Equal(t, "plans", cfg.OutputDir)
		assert.Equal(t, "yaml", cfg.Format)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "m.prom", cfg.MetricsFile)
		assert.Equal(t, 2, cfg.Parallel)
	})

	t.Run("long flag wins over shorthand and positional", func(t *testing.T) {
		cfg, _, err := Parse([]string{"-descriptors", "a", "-d", "b", "c"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "a", cfg.DescriptorPath)
	})

	t.Run("no path prints usage", func(t *testing.T) {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse(nil, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("help", func(t *testing.T) {
		_, exit, err := Parse([]string{"-h"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.True(t, exit)
	})
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"unknown flag", []string{"-nope"}, "flag provided but not defined: -nope"},
		{"bad format", []string{"-format", "xml", "ws"}, "unknown plan format"},
		{"bad log level", []string{"-log-level", "loud", "ws"}, "invalid log level"},
		{"bad log format", []string{"-log-format", "xml", "ws"}, "invalid log format"},
		{"bad parallel", []string{"-parallel", "0", "ws"}, "invalid parallel"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}
