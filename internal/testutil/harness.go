// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package testutil

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/buildgraph/internal/app"
	"github.com/specialistvlad/buildgraph/internal/plan"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	// Plans holds the decoded plan of every resolved target, keyed by name.
	Plans map[string]*plan.BuildPlan
}

// WriteWorkspace writes files, keyed by relative path, into a fresh temporary
// directory and returns it.
func WriteWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}
	return root
}

// RunIntegrationTest provides a standardized harness for running integration
// tests using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, targets ...string) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, targets...)
}

// RunIntegrationTestWithContext writes the workspace, runs the full app over
// it with JSON plans written to a temporary directory, and decodes every
// plan produced.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, targets ...string) *HarnessResult {
	t.Helper()

	workspace := WriteWorkspace(t, files)
	outDir := filepath.Join(t.TempDir(), "plans")

	testApp, _, logBuffer := app.SetupAppTest(t, app.Config{
		DescriptorPath: workspace,
		Targets:        targets,
		OutputDir:      outDir,
		Format:         string(plan.FormatJSON),
		Parallel:       4,
	})
	runErr := testApp.Run(ctx)

	result := &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		Plans:     make(map[string]*plan.BuildPlan),
	}
	if runErr != nil {
		return result
	}

	entries, err := os.ReadDir(outDir)
	if os.IsNotExist(err) {
		return result
	}
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(outDir, e.Name()))
		require.NoError(t, err)
		var p plan.BuildPlan
		require.NoError(t, json.Unmarshal(data, &p), "plan %s", e.Name())
		result.Plans[p.Target] = &p
	}
	return result
}
