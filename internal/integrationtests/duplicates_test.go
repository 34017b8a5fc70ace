package integration_tests

import (
	"testing"

	"github.com/specialistvlad/buildgraph/internal/plan"
	"github.com/specialistvlad/buildgraph/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDuplicates_CollapseWithWarning(t *testing.T) {
	// --- Arrange ---
	// Core is declared unconditionally and again for editor builds, the way
	// engine plugins often repeat a dependency inside an editor branch.
	files := map[string]string{"main.hcl": `
module "Core" {}
module "Plugin" {
  public_dependencies = ["Core"]

  dependencies {
    when   = target.target_type == "Editor"
    public = ["Core"]
  }
}
target "Editor" {
  type          = "Editor"
  extra_modules = ["Plugin"]
}
`}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	p := testutil.RequirePlan(t, result, "Editor")
	plugin := testutil.RequireModule(t, p, "Plugin")
	assert.Equal(t, []plan.Dependency{{Module: "Core", Visibility: "public"}}, plugin.Dependencies)
	assert.Contains(t, result.LogOutput, "Duplicate dependency declaration collapsed.")
	assert.Contains(t, result.LogOutput, "module=Plugin")
}
