package context

import "github.com/kadirpekel/deepresearch/pkg/research"

// StaticInterfaceText is the constant preamble prepended to every
// request: it never changes turn-over-turn, unlike the dynamic sections.
// Command grammar and semantics are an external collaborator (spec §1);
// this text only orients the model to the shape of the interaction.
const StaticInterfaceText = `You are directing a hierarchical deep research process.
Each turn you receive the current focus, budget, artifacts, problem
hierarchy, criteria, subproblems, and knowledge base for the node you are
currently working on. Issue commands to make progress; finish or fail a
node when its criteria are met or cannot be met.`

// RenderInterface computes the static text and the ordered dynamic
// snapshot set for one turn, per the Engine Loop's render_interface step.
func RenderInterface(root, active *research.Node, in Inputs) (string, []any) {
	return StaticInterfaceText, BuildSnapshots(root, active, in)
}
