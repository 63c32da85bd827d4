package research

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/deepresearch/pkg/research/history"
)

func buildSampleTree(t *testing.T) *Node {
	t.Helper()
	root := NewRoot("Survey renewable energy", "Is solar or wind more cost effective in 2030?")
	root.State.ProblemStatus = StatusInProgress
	root.AddCriterion("Cite at least three independent sources")
	_, err := root.AddArtifact("notes", "scratch notes", "solar LCOE trending down", false)
	require.NoError(t, err)

	child, err := root.AddChild("Solar costs", "Estimate solar LCOE in 2030")
	require.NoError(t, err)
	child.State.ProblemStatus = StatusPending

	child.History.AddMessage(history.AuthorAssistant, "@define_problem\ntitle: x\n")
	return root
}

func TestSaveTreeThenLoadTreeRoundTrips(t *testing.T) {
	dir := t.TempDir()
	root := buildSampleTree(t)

	kb := NewKnowledgeBase()
	kb.AddEntry("Grid parity", "IEA report", []string{"energy", "cost"}, 0.8, 0.6, "solar reaches grid parity in most regions by 2028", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	ext := NewExternalFiles()
	ext.Add("operator-brief", "uploaded by operator", "focus on US and EU markets")

	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, SaveTree(dir, root, kb, ext, createdAt))

	// Problem Definition.md exists with frontmatter.
	defBytes, err := os.ReadFile(filepath.Join(dir, "Problem Definition.md"))
	require.NoError(t, err)
	assert.Contains(t, string(defBytes), "status: InProgress")
	assert.Contains(t, string(defBytes), "Is solar or wind more cost effective")

	// Child directory exists.
	_, err = os.Stat(filepath.Join(dir, "Solar-costs", "Problem Definition.md"))
	require.NoError(t, err)

	loadedRoot, loadedKB, loadedExt, meta, err := LoadTree(dir)
	require.NoError(t, err)

	assert.Equal(t, "Survey renewable energy", loadedRoot.Title)
	assert.Equal(t, root.ProblemDefinition, loadedRoot.ProblemDefinition)
	assert.Equal(t, StatusInProgress, loadedRoot.State.ProblemStatus)
	require.Len(t, loadedRoot.Children, 1)
	assert.Equal(t, "Solar costs", loadedRoot.Children[0].Title)
	assert.Equal(t, StatusPending, loadedRoot.Children[0].State.ProblemStatus)
	require.Len(t, loadedRoot.Artifacts, 1)
	assert.Equal(t, "notes", loadedRoot.Artifacts[0].Name)
	assert.Same(t, loadedRoot, loadedRoot.Artifacts[0].Owner())

	require.Len(t, loadedKB.Entries, 1)
	assert.Equal(t, "Grid parity", loadedKB.Entries[0].Title)
	assert.ElementsMatch(t, []string{"energy", "cost"}, loadedKB.Entries[0].Tags)

	require.Len(t, loadedExt.Items, 1)
	assert.Equal(t, "operator-brief", loadedExt.Items[0].Name)
	assert.True(t, loadedExt.Items[0].IsExternal)

	assert.Equal(t, "Survey renewable energy", meta.RootNodeTitle)
	assert.Equal(t, createdAt, meta.CreatedAt)
}

func TestSanitizeTitleProducesSafePathSegment(t *testing.T) {
	assert.Equal(t, "Solar-costs", SanitizeTitle("Solar costs"))
	assert.Equal(t, "a-b-c", SanitizeTitle("a/b\\c"))
	assert.Equal(t, "untitled", SanitizeTitle("   "))
}
