package context

import (
	"fmt"
	"strings"
)

// defaultRenderers returns the built-in text renderer for each canonical
// section. Every renderer type-asserts its snapshot and returns an error
// (not a panic) on mismatch so the registry can fall back to an inline
// error block.
func defaultRenderers() map[SectionName]Renderer {
	return map[SectionName]Renderer{
		SectionHeader:               renderHeader,
		SectionPermanentLogs:        renderPermanentLogs,
		SectionBudget:               renderBudget,
		SectionArtifacts:            renderArtifacts,
		SectionProblemHierarchy:     renderProblemHierarchy,
		SectionCriteria:             renderCriteria,
		SectionSubproblems:          renderSubproblems,
		SectionProblemPathHierarchy: renderProblemPath,
		SectionKnowledgeBase:        renderKnowledgeBase,
		SectionGoal:                 renderGoal,
	}
}

func typeErr(want string, got any) error {
	return fmt.Errorf("expected %s, got %T", want, got)
}

func renderHeader(data any, future int) (string, error) {
	h, ok := data.(HeaderSnapshot)
	if !ok {
		return "", typeErr("HeaderSnapshot", data)
	}
	if future > 0 {
		return "## Current Focus\n(superseded by a more recent turn)", nil
	}
	return fmt.Sprintf("## Current Focus\nNode: %s\nStatus: %s", h.NodeTitle, h.Status), nil
}

func renderPermanentLogs(data any, future int) (string, error) {
	l, ok := data.(PermanentLogsSnapshot)
	if !ok {
		return "", typeErr("PermanentLogsSnapshot", data)
	}
	if future > 0 {
		return fmt.Sprintf("## Permanent Logs\n(%d entries, superseded by a more recent turn)", len(l.Entries)), nil
	}
	var b strings.Builder
	b.WriteString("## Permanent Logs\n")
	for _, e := range l.Entries {
		b.WriteString("- ")
		b.WriteString(e)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func renderBudget(data any, _ int) (string, error) {
	bu, ok := data.(BudgetSnapshot)
	if !ok {
		return "", typeErr("BudgetSnapshot", data)
	}
	if !bu.HasLimit {
		return fmt.Sprintf("## Budget\nCycles used: %d (no limit set)", bu.CyclesUsed), nil
	}
	warn := ""
	if bu.Warning {
		warn = " (warning issued)"
	}
	return fmt.Sprintf("## Budget\nCycles used: %d / %d%s", bu.CyclesUsed, bu.Total, warn), nil
}

func renderArtifacts(data any, future int) (string, error) {
	a, ok := data.(ArtifactsSnapshot)
	if !ok {
		return "", typeErr("ArtifactsSnapshot", data)
	}
	if future > 0 {
		return fmt.Sprintf("## Artifacts\n(%d visible artifacts, superseded by a more recent turn)", len(a.Items)), nil
	}
	var b strings.Builder
	b.WriteString("## Artifacts\n")
	for _, it := range a.Items {
		flag := "open"
		if !it.Open {
			flag = "closed"
		}
		ext := ""
		if it.External {
			ext = ", external"
		}
		fmt.Fprintf(&b, "- %s (owner: %s, %s%s): %s\n", it.Name, it.Owner, flag, ext, it.Summary)
	}
	return b.String(), nil
}

func renderProblemHierarchy(data any, future int) (string, error) {
	p, ok := data.(ProblemHierarchySnapshot)
	if !ok {
		return "", typeErr("ProblemHierarchySnapshot", data)
	}
	if future > 0 {
		return "## Problem Hierarchy\n(superseded by a more recent turn)", nil
	}
	var b strings.Builder
	b.WriteString("## Problem Hierarchy\n")
	writeNodeSummary(&b, p.Root, 0)
	return b.String(), nil
}

func writeNodeSummary(b *strings.Builder, n NodeSummary, depth int) {
	fmt.Fprintf(b, "%s- %s [%s]\n", strings.Repeat("  ", depth), n.Title, n.Status)
	for _, c := range n.Children {
		writeNodeSummary(b, c, depth+1)
	}
}

func renderCriteria(data any, future int) (string, error) {
	c, ok := data.(CriteriaSnapshot)
	if !ok {
		return "", typeErr("CriteriaSnapshot", data)
	}
	if future > 0 {
		return fmt.Sprintf("## Criteria\n(%d criteria, superseded by a more recent turn)", len(c.Items)), nil
	}
	var b strings.Builder
	b.WriteString("## Criteria\n")
	for _, it := range c.Items {
		box := "[ ]"
		if it.Completed {
			box = "[x]"
		}
		fmt.Fprintf(&b, "- %s %s\n", box, it.Text)
	}
	return b.String(), nil
}

func renderSubproblems(data any, future int) (string, error) {
	s, ok := data.(SubproblemsSnapshot)
	if !ok {
		return "", typeErr("SubproblemsSnapshot", data)
	}
	if future > 0 {
		return fmt.Sprintf("## Subproblems\n(%d subproblems, superseded by a more recent turn)", len(s.Items)), nil
	}
	var b strings.Builder
	b.WriteString("## Subproblems\n")
	for _, it := range s.Items {
		fmt.Fprintf(&b, "- %s [%s]\n", it.Title, it.Status)
	}
	return b.String(), nil
}

func renderProblemPath(data any, _ int) (string, error) {
	p, ok := data.(ProblemPathHierarchySnapshot)
	if !ok {
		return "", typeErr("ProblemPathHierarchySnapshot", data)
	}
	return fmt.Sprintf("## Problem Path\n%s", strings.Join(p.Path, " > ")), nil
}

func renderKnowledgeBase(data any, future int) (string, error) {
	k, ok := data.(KnowledgeBaseSnapshot)
	if !ok {
		return "", typeErr("KnowledgeBaseSnapshot", data)
	}
	if future > 0 {
		return fmt.Sprintf("## Knowledge Base\n(%d entries, superseded by a more recent turn)", len(k.Entries)), nil
	}
	var b strings.Builder
	b.WriteString("## Knowledge Base\n")
	for _, e := range k.Entries {
		fmt.Fprintf(&b, "- %s (tags: %s, source: %s, importance: %.2f, confidence: %.2f)\n",
			e.Title, strings.Join(e.Tags, ","), e.Source, e.Importance, e.Confidence)
	}
	return b.String(), nil
}

func renderGoal(data any, _ int) (string, error) {
	g, ok := data.(GoalSnapshot)
	if !ok {
		return "", typeErr("GoalSnapshot", data)
	}
	return fmt.Sprintf("## Goal\n%s", g.Text), nil
}
