package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/deepresearch/pkg/research"
)

func buildReportTree(t *testing.T) *research.Node {
	t.Helper()
	root := research.NewRoot("Survey renewable energy", "Is solar or wind more cost effective in 2030?")
	root.State.ProblemStatus = research.StatusInProgress
	_, err := root.AddArtifact("summary", "top-level findings", "solar leads in sunbelt regions", false)
	require.NoError(t, err)

	child, err := root.AddChild("Solar costs", "Estimate solar LCOE in 2030")
	require.NoError(t, err)
	_, err = child.AddArtifact("lcoe-estimate", "LCOE projection", "$0.02/kWh by 2030", false)
	require.NoError(t, err)

	return root
}

func TestRenderStatusIncludesCurrentFocusAndOpenArtifacts(t *testing.T) {
	root := buildReportTree(t)
	child, err := root.Child("Solar costs")
	require.NoError(t, err)

	out := Render(root, child)

	assert.Contains(t, out, "Survey renewable energy")
	assert.Contains(t, out, "Survey renewable energy > Solar costs")
	assert.Contains(t, out, "lcoe-estimate")
}

func TestStatusPrinterPrintStatusCallsOut(t *testing.T) {
	root := buildReportTree(t)
	var captured string
	p := NewStatusPrinter(func(s string) { captured = s })

	p.PrintStatus(root, root)

	assert.Contains(t, captured, "Root problem: Survey renewable energy")
}

func TestGenerateFinalReportGroupsArtifactsByOwner(t *testing.T) {
	root := buildReportTree(t)
	root.State.ProblemStatus = research.StatusFinished

	gen := NewReportGenerator(root)
	out := gen.GenerateFinalReport("Solar wins on cost in sunbelt regions.")

	assert.Contains(t, out, "Survey renewable energy")
	assert.Contains(t, out, "Solar wins on cost in sunbelt regions.")
	assert.Contains(t, out, "### Survey renewable energy")
	assert.Contains(t, out, "summary")
	assert.Contains(t, out, "### Solar costs")
	assert.Contains(t, out, "lcoe-estimate")
}

func TestGenerateFinalReportWithNoArtifacts(t *testing.T) {
	root := research.NewRoot("Empty problem", "nothing done yet")
	gen := NewReportGenerator(root)

	out := gen.GenerateFinalReport("")

	assert.True(t, strings.Contains(out, "No artifacts were produced."))
}
