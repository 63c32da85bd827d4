package context

import (
	"fmt"

	"github.com/kadirpekel/deepresearch/pkg/registry"
)

// Renderer turns one section's snapshot into a text block. futureChanges
// is how many later (more recent) auto-replies also reported this same
// section index — used by history rendering to decide whether a stale
// historical value should be elided.
type Renderer func(data any, futureChanges int) (string, error)

// RendererRegistry maps a canonical section name to its renderer. It is
// process-wide, read-only after initialization, and passed explicitly
// into whatever needs it rather than held as ambient state.
type RendererRegistry struct {
	base *registry.BaseRegistry[Renderer]
}

// NewRendererRegistry returns a registry pre-populated with the default
// renderer for all ten canonical sections.
func NewRendererRegistry() *RendererRegistry {
	r := &RendererRegistry{base: registry.NewBaseRegistry[Renderer]()}
	for name, fn := range defaultRenderers() {
		_ = r.base.Register(string(name), fn)
	}
	return r
}

// Render looks up the renderer for name and applies it. A missing
// renderer, or one that returns an error, yields an inline <error> block
// rather than aborting the turn.
func (r *RendererRegistry) Render(name SectionName, data any, futureChanges int) string {
	fn, ok := r.base.Get(string(name))
	if !ok {
		return fmt.Sprintf("<error>no renderer registered for section %q</error>", name)
	}
	text, err := fn(data, futureChanges)
	if err != nil {
		return fmt.Sprintf("<error>failed to render section %q: %s</error>", name, err)
	}
	return text
}

// RenderAll renders every canonical section from an ordered snapshot
// set, each with futureChanges 0 — used for the "initial view" captured
// the first time a node becomes active.
func (r *RendererRegistry) RenderAll(snapshots []any) string {
	var out string
	for i, name := range CanonicalOrder {
		if i >= len(snapshots) {
			break
		}
		out += r.Render(name, snapshots[i], 0) + "\n"
	}
	return out
}
