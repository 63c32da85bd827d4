package focus

import (
	"fmt"
	"strings"

	"github.com/kadirpekel/deepresearch/pkg/research"
)

// ShutdownSentinel is the literal (case-insensitive) phrase that, when
// present anywhere in a root-node assistant response, terminates the run.
const ShutdownSentinel = "SHUT_DOWN_DEEP_RESEARCHER"

// State is the engine's Execution State: the currently active node plus
// a deferred "future active" slot. All three transitions below only
// write Future; the engine loop swaps Future into Current at end-of-turn.
type State struct {
	Current *research.Node
	Future  *research.Node

	// AwaitingNewInstruction is raised when a run concludes (root
	// finished, root shutdown, or a terminal failure) and cleared only
	// by an explicit new user instruction targeted at the root.
	AwaitingNewInstruction bool
	CompletionMessage      string
}

// Scheduler owns the execution state and the per-parent children queue,
// and implements the three deferred focus transitions.
type Scheduler struct {
	State *State
	Queue *ChildrenQueue

	// Diagnostics receives console-style diagnostics (e.g. the shutdown
	// sentinel being ignored on a non-root node) rather than writing
	// directly to stdout, so callers can redirect or silence them.
	Diagnostics func(string)
}

// NewScheduler returns a scheduler with root as both current and future.
func NewScheduler(root *research.Node) *Scheduler {
	return &Scheduler{
		State:       &State{Current: root, Future: root},
		Queue:       NewChildrenQueue(),
		Diagnostics: func(string) {},
	}
}

// ApplyDeferredTransition swaps Future into Current at end-of-turn and
// returns the new current node.
func (s *Scheduler) ApplyDeferredTransition() *research.Node {
	s.State.Current = s.State.Future
	return s.State.Current
}

// FocusDown requires active to have a child named childTitle. It sets
// active's status to Pending and schedules that child as future active.
func (s *Scheduler) FocusDown(active *research.Node, childTitle string) error {
	child, err := active.Child(childTitle)
	if err != nil {
		return fmt.Errorf("focus_down %q: %w", childTitle, err)
	}
	active.State.ProblemStatus = research.StatusPending
	s.State.Future = child
	return nil
}

// FocusUp sets active's status to Finished. If active is the root, the
// run concludes: the optional message is stored and AwaitingNewInstruction
// is raised. Otherwise, the parent's aggregator is told the child
// finished, the children queue is consulted FIFO, and future active is
// set to the resolved next child or, failing that, the parent.
func (s *Scheduler) FocusUp(active *research.Node, optionalMessage string) error {
	active.State.ProblemStatus = research.StatusFinished

	if active.IsRoot() {
		s.State.CompletionMessage = optionalMessage
		s.State.AwaitingNewInstruction = true
		s.State.Future = active
		return nil
	}

	parent := active.Parent
	agg := parent.History.Aggregator
	agg.AddInternalMessage(fmt.Sprintf("[%s] Task marked FINISHED, focusing back up.", active.Title))
	if optionalMessage != "" {
		agg.AddInternalMessage(fmt.Sprintf("[Completion Message]: %s", optionalMessage))
	}

	s.State.Future = s.resolveNextActive(parent)
	return nil
}

// FailAndFocusUp mirrors FocusUp with status Failed and a
// "[Failure Message]:" prefix. Per the spec's explicit design note, it
// never consults the children queue: the parent is always next.
func (s *Scheduler) FailAndFocusUp(active *research.Node, optionalMessage string) error {
	active.State.ProblemStatus = research.StatusFailed

	if active.IsRoot() {
		s.State.CompletionMessage = optionalMessage
		s.State.AwaitingNewInstruction = true
		s.State.Future = active
		return nil
	}

	parent := active.Parent
	agg := parent.History.Aggregator
	agg.AddInternalMessage(fmt.Sprintf("[%s] Task marked FAILED, focusing back up.", active.Title))
	if optionalMessage != "" {
		agg.AddInternalMessage(fmt.Sprintf("[Failure Message]: %s", optionalMessage))
	}

	s.State.Future = parent
	return nil
}

// resolveNextActive pops the parent's children queue FIFO and resolves
// it to a live child node, falling back to the parent if the queue is
// empty or resolution fails.
func (s *Scheduler) resolveNextActive(parent *research.Node) *research.Node {
	title, ok := s.Queue.Pop(parent)
	if !ok {
		return parent
	}
	child, err := parent.Child(title)
	if err != nil {
		return parent
	}
	return child
}

// CheckShutdownSentinel scans an assistant response for the literal
// shutdown sentinel. If active is the root, it finishes the root and
// raises AwaitingNewInstruction, returning true (the caller must skip
// command parsing for this turn). On a non-root node the sentinel is
// ignored with a diagnostic, and false is returned.
func (s *Scheduler) CheckShutdownSentinel(active *research.Node, response string) bool {
	if !strings.Contains(strings.ToUpper(response), ShutdownSentinel) {
		return false
	}
	if !active.IsRoot() {
		s.Diagnostics(fmt.Sprintf("shutdown sentinel seen on non-root node %q, ignoring", active.Title))
		return false
	}
	active.State.ProblemStatus = research.StatusFinished
	s.State.AwaitingNewInstruction = true
	s.State.Future = active
	return true
}

// PrepareForInstruction re-enters a run that previously concluded:
// injects a fresh instruction as an internal message on the root's
// aggregator and flips the root back to InProgress. Supplemented from
// the original engine's new_user_instruction handling.
func (s *Scheduler) PrepareForInstruction(root *research.Node, instruction string) {
	root.State.ProblemStatus = research.StatusInProgress
	root.History.Aggregator.AddInternalMessage(instruction)
	s.State.AwaitingNewInstruction = false
	s.State.CompletionMessage = ""
	s.State.Current = root
	s.State.Future = root
}
