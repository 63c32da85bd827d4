package command

import (
	"io"

	"github.com/kadirpekel/deepresearch/pkg/focus"
	"github.com/kadirpekel/deepresearch/pkg/research"
)

// Context is the Command Context handed to every command handler. The
// engine refreshes it from current state before each invocation
// executes, per the spec's parameterized command-processor variant (see
// DESIGN.md's Open Question decision).
type Context struct {
	Root       *research.Node
	ActiveNode *research.Node
	Scheduler  *focus.Scheduler

	KnowledgeBase   *research.KnowledgeBase
	ExternalFiles   *research.ExternalFiles
	PermanentLog    *research.PermanentLog

	// Output is an additional sink for command handlers that need to
	// write directly (e.g. operator echoes); most handlers instead
	// return their output string and let the pipeline record it.
	Output io.Writer
}
