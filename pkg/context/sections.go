// Package context implements the Dynamic Section Engine: a fixed,
// canonically ordered family of value-equal snapshots derived from
// research-tree state, their renderers, and the history-to-LLM-messages
// renderer that applies the spec's look-ahead truncation rules.
package context

// SectionName identifies one of the ten canonical dynamic section
// variants. Order matters: it is the contract for snapshot indices used
// in diffing and in future_changes_map bookkeeping.
type SectionName string

const (
	SectionHeader               SectionName = "header"
	SectionPermanentLogs        SectionName = "permanent_logs"
	SectionBudget               SectionName = "budget"
	SectionArtifacts            SectionName = "artifacts"
	SectionProblemHierarchy     SectionName = "problem_hierarchy"
	SectionCriteria             SectionName = "criteria"
	SectionSubproblems          SectionName = "subproblems"
	SectionProblemPathHierarchy SectionName = "problem_path_hierarchy"
	SectionKnowledgeBase        SectionName = "knowledge_base"
	SectionGoal                 SectionName = "goal"
)

// CanonicalOrder is the fixed section ordering used everywhere a
// snapshot set is built, diffed, or rendered.
var CanonicalOrder = []SectionName{
	SectionHeader,
	SectionPermanentLogs,
	SectionBudget,
	SectionArtifacts,
	SectionProblemHierarchy,
	SectionCriteria,
	SectionSubproblems,
	SectionProblemPathHierarchy,
	SectionKnowledgeBase,
	SectionGoal,
}

// HeaderSnapshot identifies the active node and its status.
type HeaderSnapshot struct {
	NodeTitle string
	Status    string
}

// PermanentLogsSnapshot is the project-wide append-only log.
type PermanentLogsSnapshot struct {
	Entries []string
}

// BudgetSnapshot reflects the budget controller's counters.
type BudgetSnapshot struct {
	CyclesUsed int
	Total      int
	HasLimit   bool
	Warning    bool
}

// ArtifactView is one artifact as seen from the active node.
type ArtifactView struct {
	Name     string
	Summary  string
	Open     bool
	External bool
	Owner    string
}

// ArtifactsSnapshot is every artifact visible to the active node.
type ArtifactsSnapshot struct {
	Items []ArtifactView
}

// NodeSummary is a recursive view of one node's subtree used by the
// problem-hierarchy section.
type NodeSummary struct {
	Title    string
	Status   string
	Children []NodeSummary
}

// ProblemHierarchySnapshot is the whole-tree view from the root.
type ProblemHierarchySnapshot struct {
	Root NodeSummary
}

// CriterionView is one success criterion.
type CriterionView struct {
	Text      string
	Completed bool
}

// CriteriaSnapshot is the active node's success criteria.
type CriteriaSnapshot struct {
	Items []CriterionView
}

// SubproblemView is one direct child of the active node.
type SubproblemView struct {
	Title  string
	Status string
}

// SubproblemsSnapshot is the active node's direct children.
type SubproblemsSnapshot struct {
	Items []SubproblemView
}

// ProblemPathHierarchySnapshot is the chain of titles from root to the
// active node.
type ProblemPathHierarchySnapshot struct {
	Path []string
}

// KnowledgeEntryView is one knowledge-base entry.
type KnowledgeEntryView struct {
	Title      string
	Timestamp  string
	Tags       []string
	Source     string
	Importance float64
	Confidence float64
	Content    string
}

// KnowledgeBaseSnapshot is the project-wide knowledge base.
type KnowledgeBaseSnapshot struct {
	Entries []KnowledgeEntryView
}

// GoalSnapshot is the active node's problem definition text.
type GoalSnapshot struct {
	Text string
}
