// Package budget implements the Budget Controller: cycle counting,
// warnings, buffer extension, and operator-prompted termination.
package budget

import "github.com/kadirpekel/deepresearch/pkg/research"

const (
	firstExhaustionBuffer = 10
	extensionGrant        = 20
	approachingWindow     = 10
)

// Prompt asks the operator whether to grant a budget extension. It
// returns true to grant, false to decline. Abstracted behind an
// interface per the spec's Design Notes so tests can inject scripted
// responses.
type Prompt func(cyclesUsed, total int) bool

// Controller tracks cycle usage against an optional total budget.
type Controller struct {
	Total      int
	HasLimit   bool
	CyclesUsed int
	Warned     bool

	Prompt Prompt
}

// New returns a controller with the given total budget. hasLimit false
// means no budget is enforced at all.
func New(total int, hasLimit bool, prompt Prompt) *Controller {
	return &Controller{Total: total, HasLimit: hasLimit, Prompt: prompt}
}

// Outcome reports what IncrementAndCheck did, so the engine loop can act
// on it (e.g. fail the active node).
type Outcome struct {
	Failed  bool
	Message string
}

// IncrementAndCheck increments cycles-used by one and applies the
// budget's warning/extension/exhaustion rules against the active node's
// aggregator and status.
func (c *Controller) IncrementAndCheck(active *research.Node) Outcome {
	c.CyclesUsed++

	if !c.HasLimit {
		return Outcome{}
	}

	agg := active.History.Aggregator

	if c.CyclesUsed >= c.Total && !c.Warned {
		c.Warned = true
		agg.AddInternalMessage("SYSTEM: Cycle budget reached. Please wrap up the current problem soon.")
		c.Total += firstExhaustionBuffer
		return Outcome{}
	}

	if c.CyclesUsed >= c.Total && c.Warned {
		if c.Prompt != nil && c.Prompt(c.CyclesUsed, c.Total) {
			c.Total += extensionGrant
			agg.AddInternalMessage("SYSTEM: Budget extended by the operator.")
			return Outcome{}
		}
		active.State.ProblemStatus = research.StatusFailed
		return Outcome{Failed: true, Message: "budget exhausted and extension declined"}
	}

	if c.Total-c.CyclesUsed <= approachingWindow && !c.Warned {
		c.Warned = true
		agg.AddInternalMessage("SYSTEM: Approaching the cycle budget limit; consider wrapping up soon.")
	}

	return Outcome{}
}

// Snapshot returns the current counters for the Dynamic Section Engine's
// Budget section.
func (c *Controller) Snapshot() (cyclesUsed, total int, hasLimit, warning bool) {
	return c.CyclesUsed, c.Total, c.HasLimit, c.Warned
}
