// Package research holds the persistent data model of the deep research
// engine: the tree of research nodes, their artifacts and criteria, and
// the on-disk layout that backs a run.
package research

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kadirpekel/deepresearch/pkg/research/history"
)

// NodeState tracks the per-node mutable flags that are not part of the
// node's content: which artifacts are still open, and the node's
// problem status.
type NodeState struct {
	ArtifactsOpen map[string]bool
	ProblemStatus ProblemStatus
}

func newNodeState() *NodeState {
	return &NodeState{
		ArtifactsOpen: make(map[string]bool),
		ProblemStatus: StatusNotStarted,
	}
}

// Node is one research node in the tree: a problem definition, its
// artifacts, its success criteria, its history, and its lifecycle state.
//
// Nodes are identified by pointer; Title is unique only among the
// children of one parent, matching the spec's sibling-uniqueness rule.
type Node struct {
	Title             string
	ProblemDefinition string

	Parent   *Node
	Children []*Node

	Artifacts []*Artifact
	Criteria  []*Criterion
	State     *NodeState
	History   *history.Store

	// Path is the on-disk directory for this node, set once persisted.
	Path string
}

// NewRoot creates the root node of a tree with the given problem
// definition text. define_problem is the only command permitted to call
// this.
func NewRoot(title, problemDefinition string) *Node {
	return &Node{
		Title:             title,
		ProblemDefinition: problemDefinition,
		State:             newNodeState(),
		History:           history.NewStore(),
	}
}

// AddChild creates and attaches a new child node under n. Returns
// ErrDuplicateChild if a sibling already uses that title.
func (n *Node) AddChild(title, problemDefinition string) (*Node, error) {
	for _, c := range n.Children {
		if c.Title == title {
			return nil, ErrDuplicateChild
		}
	}
	child := &Node{
		Title:             title,
		ProblemDefinition: problemDefinition,
		Parent:            n,
		State:             newNodeState(),
		History:           history.NewStore(),
	}
	child.Path = filepath.Join(n.Path, SanitizeTitle(title))
	n.Children = append(n.Children, child)
	return child, nil
}

// Child looks up a direct child by title.
func (n *Node) Child(title string) (*Node, error) {
	for _, c := range n.Children {
		if c.Title == title {
			return c, nil
		}
	}
	return nil, ErrUnknownChild
}

// AppendToDefinition appends an "## UPDATE" section to the problem
// definition rather than replacing it outright. Supplemented from the
// original ProblemDefinitionManager.append_to_definition behavior.
func (n *Node) AppendToDefinition(update string) {
	if strings.TrimSpace(n.ProblemDefinition) == "" {
		n.ProblemDefinition = update
		return
	}
	n.ProblemDefinition = fmt.Sprintf("%s\n\n## UPDATE\n%s", n.ProblemDefinition, update)
}

// Path-like helpers used by the dynamic section engine.

// PathTitles returns the chain of titles from the root down to n.
func (n *Node) PathTitles() []string {
	var titles []string
	for cur := n; cur != nil; cur = cur.Parent {
		titles = append([]string{cur.Title}, titles...)
	}
	return titles
}

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool { return n.Parent == nil }

// FindByPathTitles walks down from root following titles (which must
// start with root's own title) and returns the node at the end of the
// path, or nil if any segment doesn't match. Used to resolve a
// checkpoint's root-to-active title path back into a live *Node after
// reloading a tree from disk.
func FindByPathTitles(root *Node, titles []string) *Node {
	if len(titles) == 0 || root.Title != titles[0] {
		return nil
	}
	cur := root
	for _, title := range titles[1:] {
		next, err := cur.Child(title)
		if err != nil {
			return nil
		}
		cur = next
	}
	return cur
}

// IsStrictAncestorOf reports whether n is a strict ancestor of other.
func (n *Node) IsStrictAncestorOf(other *Node) bool {
	for p := other.Parent; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}
