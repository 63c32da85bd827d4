package command

import "github.com/kadirpekel/deepresearch/pkg/registry"

// Handler executes one command against a Context and returns the text
// to record as its command output (empty if nothing to report).
type Handler func(ctx *Context, args map[string]string) (string, error)

// Definition is a registered command: its name, whether it carries the
// must-be-last property, and its handler.
type Definition struct {
	Name       string
	MustBeLast bool
	Handler    Handler
}

// Registry is the process-wide, read-only-after-init command registry
// (spec's Design Notes: "model as an explicit dependency passed into the
// engine rather than ambient state").
type Registry struct {
	base *registry.BaseRegistry[*Definition]
}

// NewRegistry returns an empty command registry.
func NewRegistry() *Registry {
	return &Registry{base: registry.NewBaseRegistry[*Definition]()}
}

// Register adds a command definition. Returns an error if the name is
// already registered.
func (r *Registry) Register(def *Definition) error {
	return r.base.Register(def.Name, def)
}

// Get looks up a command definition by name.
func (r *Registry) Get(name string) (*Definition, bool) {
	return r.base.Get(name)
}
