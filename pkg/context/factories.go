package context

import "github.com/kadirpekel/deepresearch/pkg/research"

// Inputs bundles the run-level data the Dynamic Section Engine needs
// beyond the tree itself: permanent logs, budget state, and the
// knowledge base, none of which live on a single node.
type Inputs struct {
	PermanentLogs []string
	Budget        BudgetSnapshot
	KnowledgeBase []KnowledgeEntryView
	ExternalFiles *research.ExternalFiles
}

// BuildSnapshots derives the full, canonically ordered snapshot set for
// one turn. Every factory is pure: given the same tree state and inputs,
// it returns value-equal snapshots (spec invariant: "snapshotting a
// section twice without tree mutation yields value-equal snapshots").
func BuildSnapshots(root, active *research.Node, in Inputs) []any {
	snapshots := make([]any, len(CanonicalOrder))
	for i, name := range CanonicalOrder {
		switch name {
		case SectionHeader:
			snapshots[i] = buildHeader(active)
		case SectionPermanentLogs:
			snapshots[i] = buildPermanentLogs(in)
		case SectionBudget:
			snapshots[i] = in.Budget
		case SectionArtifacts:
			snapshots[i] = buildArtifacts(root, active, in.ExternalFiles)
		case SectionProblemHierarchy:
			snapshots[i] = buildProblemHierarchy(root)
		case SectionCriteria:
			snapshots[i] = buildCriteria(active)
		case SectionSubproblems:
			snapshots[i] = buildSubproblems(active)
		case SectionProblemPathHierarchy:
			snapshots[i] = buildProblemPath(active)
		case SectionKnowledgeBase:
			snapshots[i] = buildKnowledgeBase(in)
		case SectionGoal:
			snapshots[i] = buildGoal(active)
		}
	}
	return snapshots
}

func buildHeader(active *research.Node) HeaderSnapshot {
	return HeaderSnapshot{NodeTitle: active.Title, Status: string(active.State.ProblemStatus)}
}

func buildPermanentLogs(in Inputs) PermanentLogsSnapshot {
	entries := make([]string, len(in.PermanentLogs))
	copy(entries, in.PermanentLogs)
	return PermanentLogsSnapshot{Entries: entries}
}

func buildArtifacts(root, active *research.Node, external *research.ExternalFiles) ArtifactsSnapshot {
	visible := research.VisibleArtifacts(root, active, external)
	items := make([]ArtifactView, 0, len(visible))
	for _, a := range visible {
		owner := a.Owner()
		open := true
		ownerTitle := ""
		if owner != nil {
			open = owner.State.ArtifactsOpen[a.Name]
			ownerTitle = owner.Title
		}
		items = append(items, ArtifactView{
			Name:     a.Name,
			Summary:  a.Summary,
			Open:     open,
			External: a.IsExternal,
			Owner:    ownerTitle,
		})
	}
	return ArtifactsSnapshot{Items: items}
}

func buildProblemHierarchy(root *research.Node) ProblemHierarchySnapshot {
	return ProblemHierarchySnapshot{Root: summarize(root)}
}

func summarize(n *research.Node) NodeSummary {
	children := make([]NodeSummary, 0, len(n.Children))
	for _, c := range n.Children {
		children = append(children, summarize(c))
	}
	return NodeSummary{Title: n.Title, Status: string(n.State.ProblemStatus), Children: children}
}

func buildCriteria(active *research.Node) CriteriaSnapshot {
	items := make([]CriterionView, 0, len(active.Criteria))
	for _, c := range active.Criteria {
		items = append(items, CriterionView{Text: c.Text, Completed: c.Completed})
	}
	return CriteriaSnapshot{Items: items}
}

func buildSubproblems(active *research.Node) SubproblemsSnapshot {
	items := make([]SubproblemView, 0, len(active.Children))
	for _, c := range active.Children {
		items = append(items, SubproblemView{Title: c.Title, Status: string(c.State.ProblemStatus)})
	}
	return SubproblemsSnapshot{Items: items}
}

func buildProblemPath(active *research.Node) ProblemPathHierarchySnapshot {
	return ProblemPathHierarchySnapshot{Path: active.PathTitles()}
}

func buildKnowledgeBase(in Inputs) KnowledgeBaseSnapshot {
	entries := make([]KnowledgeEntryView, len(in.KnowledgeBase))
	copy(entries, in.KnowledgeBase)
	return KnowledgeBaseSnapshot{Entries: entries}
}

func buildGoal(active *research.Node) GoalSnapshot {
	return GoalSnapshot{Text: active.ProblemDefinition}
}
