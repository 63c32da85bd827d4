package engine

// Operator abstracts the blocking human-in-the-loop prompts the Engine
// Loop needs: a budget-extension decision and a retry-on-exception
// decision for a failed LLM send. Non-interactive runs (no TTY attached,
// per cmd/deepresearch's mattn/go-isatty check) wire in an
// auto-decline implementation instead of blocking forever.
type Operator interface {
	// PromptBudgetExtension asks whether to grant another cycle-budget
	// extension after the first automatic buffer has also run out.
	PromptBudgetExtension(cyclesUsed, total int) bool

	// PromptRetry asks whether to retry an LLM send that failed with err.
	PromptRetry(err error) bool

	// PromptNewInstruction blocks for a fresh top-level instruction once
	// the root problem has finished or failed and is awaiting one.
	// ok is false if the operator has nothing further to submit, in
	// which case the run ends.
	PromptNewInstruction(completionMessage string) (instruction string, ok bool)
}

// AutoDeclineOperator never blocks: it declines every extension and
// retry, and never has a fresh instruction. Suitable for
// non-interactive (non-TTY) runs.
type AutoDeclineOperator struct{}

func (AutoDeclineOperator) PromptBudgetExtension(cyclesUsed, total int) bool { return false }
func (AutoDeclineOperator) PromptRetry(err error) bool                      { return false }
func (AutoDeclineOperator) PromptNewInstruction(completionMessage string) (string, bool) {
	return "", false
}
