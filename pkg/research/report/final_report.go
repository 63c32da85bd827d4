package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kadirpekel/deepresearch/pkg/research"
)

// ReportGenerator assembles the final Markdown report once the root
// problem has reached a terminal status: every artifact in the tree,
// grouped by the node that owns it.
type ReportGenerator struct {
	Root *research.Node
}

// NewReportGenerator returns a ReportGenerator over root.
func NewReportGenerator(root *research.Node) *ReportGenerator {
	return &ReportGenerator{Root: root}
}

// GenerateFinalReport renders the full report. completionMessage, if
// non-empty, is the message the root finished or failed with.
func (g *ReportGenerator) GenerateFinalReport(completionMessage string) (report string) {
	defer func() {
		// A formatting bug here should not crash the engine loop on the
		// very last turn of a run; fall back to a minimal report instead.
		if r := recover(); r != nil {
			report = fmt.Sprintf("# Deep Research Report Generation Failed\n\nAn error occurred while generating the final report: %v\nRoot problem: %s\n", r, g.Root.Title)
		}
	}()
	return g.render(completionMessage)
}

func (g *ReportGenerator) render(completionMessage string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Deep Research Report: %s\n\n", g.Root.Title)
	fmt.Fprintf(&b, "Status: %s\n\n", g.Root.State.ProblemStatus)
	if completionMessage != "" {
		fmt.Fprintf(&b, "%s\n\n", completionMessage)
	}

	grouped := artifactsByOwner(g.Root)
	if len(grouped) == 0 {
		b.WriteString("No artifacts were produced.\n")
		return b.String()
	}

	titles := make([]string, 0, len(grouped))
	for title := range grouped {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	b.WriteString("## Artifacts by problem\n\n")
	for _, title := range titles {
		fmt.Fprintf(&b, "### %s\n\n", title)
		for _, a := range grouped[title] {
			fmt.Fprintf(&b, "- **%s** — %s\n", a.Name, a.Summary)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// artifactsByOwner walks the whole tree (not just what is visible to
// one active node) and groups every artifact by its owning node's
// title, matching the original's recursive "collect everything for the
// final report" behavior.
func artifactsByOwner(root *research.Node) map[string][]*research.Artifact {
	out := make(map[string][]*research.Artifact)
	var walk func(n *research.Node)
	walk = func(n *research.Node) {
		if len(n.Artifacts) > 0 {
			out[n.Title] = append(out[n.Title], n.Artifacts...)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return out
}
