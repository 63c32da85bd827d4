// Package report renders the human-facing status banner printed after
// each turn and the final Markdown report assembled from a finished
// tree's artifacts. Both are plain strings.Builder text, not templates:
// the two layouts are small and fixed enough that a templating engine
// would add a dependency without buying back any flexibility the engine
// actually uses.
package report

import (
	"fmt"
	"strings"

	"github.com/kadirpekel/deepresearch/pkg/research"
)

// StatusPrinter renders the one-paragraph status banner shown after
// every turn: where the engine currently is in the tree and what the
// root's overall status is.
type StatusPrinter struct {
	Out func(string)
}

// NewStatusPrinter returns a StatusPrinter writing to out. A nil out
// defaults to discarding the banner, which is useful in tests that only
// want the formatted string via Render.
func NewStatusPrinter(out func(string)) *StatusPrinter {
	if out == nil {
		out = func(string) {}
	}
	return &StatusPrinter{Out: out}
}

// PrintStatus formats and emits the status banner for current within
// root's tree.
func (p *StatusPrinter) PrintStatus(root, current *research.Node) {
	p.Out("\n" + Render(root, current) + "\n")
}

// Render formats the status banner as a string without printing it.
func Render(root, current *research.Node) string {
	var b strings.Builder
	b.WriteString("--- Research Status ---\n")
	fmt.Fprintf(&b, "Root problem: %s [%s]\n", root.Title, root.State.ProblemStatus)
	fmt.Fprintf(&b, "Current focus: %s [%s]\n", strings.Join(current.PathTitles(), " > "), current.State.ProblemStatus)
	if open := openArtifactNames(current); len(open) > 0 {
		fmt.Fprintf(&b, "Open artifacts here: %s\n", strings.Join(open, ", "))
	}
	b.WriteString("-----------------------")
	return b.String()
}

func openArtifactNames(n *research.Node) []string {
	var names []string
	for _, a := range n.Artifacts {
		if n.State.ArtifactsOpen[a.Name] {
			names = append(names, a.Name)
		}
	}
	return names
}
