package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/buildgraph/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var fixture = filepath.Join("..", "hclconfig", "testdata", "fpsgame")

func readPlan(t *testing.T, path string) *plan.BuildPlan {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var p plan.BuildPlan
	require.NoError(t, json.Unmarshal(data, &p))
	return &p
}

func TestRun_AllTargetsToDirectory(t *testing.T) {
	outDir := t.TempDir()
	metricsFile := filepath.Join(t.TempDir(), "buildgraph.prom")
	a, out, logs := SetupAppTest(t, Config{
		DescriptorPath: fixture,
		OutputDir:      outDir,
		MetricsFile:    metricsFile,
		Parallel:       2,
	})

	require.NoError(t, a.Run(context.Background()))
	assert.Empty(t, out.String(), "plans go to files when an output directory is set")
	assert.Contains(t, logs.String(), "Target resolved.")

	t.Run("editor target", func(t *testing.T) {
		p := readPlan(t, filepath.Join(outDir, "FPSGame_V2Editor.plan.json"))
		assert.Equal(t, "FPSGame_V2Editor", p.Target)

		editor, ok := p.Module("GameplayLocomotionEditor")
		require.True(t, ok)
		assert.Contains(t, editor.LinkModules, "AnimGraph")
		assert.Contains(t, editor.LinkModules, "BlueprintGraph")
		assert.Contains(t, editor.VisibleModules, "AnimGraph")

		loco, ok := p.Module("GameplayLocomotion")
		require.True(t, ok)
		assert.Contains(t, loco.Dependencies, plan.Dependency{Module: "MessageLog", Visibility: "private"})
	})

	t.Run("game target", func(t *testing.T) {
		p := readPlan(t, filepath.Join(outDir, "FPSGame_V2.plan.json"))
		order := p.Order()
		assert.Equal(t, "Core", order[0])
		assert.Equal(t, "FPSGame_V2", order[len(order)-1])
		for _, name := range []string{"GameplayLocomotionEditor", "AnimGraph", "UnrealEd", "MessageLog"} {
			assert.NotContains(t, order, name)
		}

		game, ok := p.Module("FPSGame_V2")
		require.True(t, ok)
		assert.Contains(t, game.IncludePaths, "Plugins/GameplayLocomotion/Source/GameplayLocomotion/Public")
		assert.NotContains(t, game.VisibleModules, "Slate", "Slate is private to GameplayLocomotion")
		assert.Contains(t, game.LinkModules, "Slate")
	})

	t.Run("metrics", func(t *testing.T) {
		data, err := os.ReadFile(metricsFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), `buildgraph_resolution_runs_total{target="FPSGame_V2"} 1`)
		assert.Contains(t, string(data), `buildgraph_resolution_runs_total{target="FPSGame_V2Editor"} 1`)
	})
}

func TestRun_SelectedTargetToWriter(t *testing.T) {
	a, out, _ := SetupAppTest(t, Config{
		DescriptorPath: fixture,
		Targets:        []string{"FPSGame_V2"},
		Format:         "yaml",
	})
	require.NoError(t, a.Run(context.Background()))

	var p plan.BuildPlan
	require.NoError(t, yaml.Unmarshal([]byte(out.String()), &p))
	assert.Equal(t, "FPSGame_V2", p.Target)
	assert.NotEmpty(t, p.Modules)
}

func TestRun_ParallelismDoesNotChangeOutput(t *testing.T) {
	render := func(parallel int) string {
		a, out, _ := SetupAppTest(t, Config{DescriptorPath: fixture, Format: "hcl", Parallel: parallel})
		require.NoError(t, a.Run(context.Background()))
		return out.String()
	}
	assert.Equal(t, render(1), render(4))
}

func TestRun_Errors(t *testing.T) {
	t.Run("unknown target", func(t *testing.T) {
		a, _, _ := SetupAppTest(t, Config{DescriptorPath: fixture, Targets: []string{"Server"}})
		err := a.Run(context.Background())
		assert.ErrorContains(t, err, `unknown target "Server" (declared: FPSGame_V2, FPSGame_V2Editor)`)
	})

	t.Run("missing workspace", func(t *testing.T) {
		a, _, _ := SetupAppTest(t, Config{DescriptorPath: filepath.Join(t.TempDir(), "nope")})
		assert.ErrorContains(t, a.Run(context.Background()), "failed to load workspace")
	})

	t.Run("cycle writes no plan but records metrics", func(t *testing.T) {
		dir := t.TempDir()
		hcl := `
module "A" { public_dependencies = ["B"] }
module "B" { private_dependencies = ["A"] }
target "T" { type = "Game" }
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "cycle.hcl"), []byte(hcl), 0o600))
		outDir := filepath.Join(t.TempDir(), "plans")
		metricsFile := filepath.Join(t.TempDir(), "m.prom")

		a, _, _ := SetupAppTest(t, Config{DescriptorPath: dir, OutputDir: outDir, MetricsFile: metricsFile})
		err := a.Run(context.Background())
		assert.ErrorContains(t, err, "A → B → A")

		_, statErr := os.Stat(outDir)
		assert.True(t, os.IsNotExist(statErr))

		data, readErr := os.ReadFile(metricsFile)
		require.NoError(t, readErr)
		assert.Contains(t, string(data), `buildgraph_resolution_errors_total{kind="dependency_cycle",target="T"} 1`)
	})

	t.Run("empty workspace", func(t *testing.T) {
		a, out, logs := SetupAppTest(t, Config{DescriptorPath: t.TempDir()})
		require.NoError(t, a.Run(context.Background()))
		assert.Empty(t, out.String())
		assert.Contains(t, logs.String(), "No targets found")
	})
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(Config{DescriptorPath: "descriptors"})
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1, cfg.Parallel)

	cfg, err = NewConfig(Config{DescriptorPath: "descriptors", Format: "yml"})
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Format)

	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"missing path", Config{}, "DescriptorPath is a required"},
		{"bad format", Config{DescriptorPath: "d", Format: "xml"}, "unknown plan format"},
		{"bad log format", Config{DescriptorPath: "d", LogFormat: "xml"}, "invalid log format"},
		{"bad log level", Config{DescriptorPath: "d", LogLevel: "trace"}, "invalid log level"},
		{"negative parallelism", Config{DescriptorPath: "d", Parallel: -1}, "invalid parallelism"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
