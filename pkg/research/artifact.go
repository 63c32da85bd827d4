package research

// Artifact is a named text document owned by a research node. Names are
// unique within a node; visibility to the currently active node is
// computed by the tree, not stored on the artifact itself.
type Artifact struct {
	Name       string
	Summary    string
	Content    string
	IsExternal bool

	owner *Node
}

// Owner returns the node this artifact belongs to.
func (a *Artifact) Owner() *Node { return a.owner }

// AddArtifact appends a new artifact to the node. Returns
// ErrDuplicateArtifact if the name is already taken on this node.
func (n *Node) AddArtifact(name, summary, content string, external bool) (*Artifact, error) {
	for _, existing := range n.Artifacts {
		if existing.Name == name {
			return nil, ErrDuplicateArtifact
		}
	}
	art := &Artifact{Name: name, Summary: summary, Content: content, IsExternal: external, owner: n}
	n.Artifacts = append(n.Artifacts, art)
	n.State.ArtifactsOpen[name] = true
	return art, nil
}

// Artifact looks up an artifact owned by this node by name.
func (n *Node) Artifact(name string) (*Artifact, error) {
	for _, a := range n.Artifacts {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, ErrArtifactNotFound
}

// UpdateArtifact replaces the content and summary of an existing artifact.
func (n *Node) UpdateArtifact(name, summary, content string) error {
	a, err := n.Artifact(name)
	if err != nil {
		return err
	}
	if summary != "" {
		a.Summary = summary
	}
	a.Content = content
	return nil
}

// CloseArtifact marks an artifact as closed (no longer actively maintained).
func (n *Node) CloseArtifact(name string) error {
	if _, err := n.Artifact(name); err != nil {
		return err
	}
	n.State.ArtifactsOpen[name] = false
	return nil
}

// VisibleArtifacts returns every artifact visible to `active`: owned by
// active, external anywhere in the tree, or owned by a strict ancestor
// of active. The walk starts at the tree root. Artifacts registered in
// external are always included, since they are external by construction
// and have no owning node.
func VisibleArtifacts(root, active *Node, external *ExternalFiles) []*Artifact {
	var out []*Artifact
	ancestors := ancestorSet(active)
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, a := range n.Artifacts {
			if a.IsExternal || n == active || ancestors[n] {
				out = append(out, a)
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	if external != nil {
		out = append(out, external.Items...)
	}
	return out
}

// ancestorSet returns the set of strict ancestors of n (not including n).
func ancestorSet(n *Node) map[*Node]bool {
	set := make(map[*Node]bool)
	if n == nil {
		return set
	}
	for p := n.Parent; p != nil; p = p.Parent {
		set[p] = true
	}
	return set
}
