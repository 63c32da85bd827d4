package research

// ExternalFiles holds artifacts supplied by the operator rather than
// produced by a node — persisted under `_ExternalFiles/` (spec §6).
// They have no owning node and are always visible, since they are
// external by construction.
type ExternalFiles struct {
	Items []*Artifact
}

// NewExternalFiles returns an empty external-files manager.
func NewExternalFiles() *ExternalFiles {
	return &ExternalFiles{}
}

// Add registers a new external artifact.
func (ef *ExternalFiles) Add(name, summary, content string) *Artifact {
	a := &Artifact{Name: name, Summary: summary, Content: content, IsExternal: true}
	ef.Items = append(ef.Items, a)
	return a
}
