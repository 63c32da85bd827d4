package engine

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// InteractiveOperator prompts a human over stdin/stdout for every
// decision the Engine Loop needs a human in the loop for. Constructed
// only when cmd/deepresearch detects an attached terminal (mattn/go-isatty);
// non-interactive runs use AutoDeclineOperator instead.
type InteractiveOperator struct {
	in  *bufio.Reader
	out io.Writer
}

// NewInteractiveOperator returns an operator reading from in and
// writing prompts to out.
func NewInteractiveOperator(in io.Reader, out io.Writer) *InteractiveOperator {
	return &InteractiveOperator{in: bufio.NewReader(in), out: out}
}

func (o *InteractiveOperator) PromptBudgetExtension(cyclesUsed, total int) bool {
	fmt.Fprintf(o.out, "\nCycle budget exhausted (%d/%d). Grant a 20-cycle extension? [y/N] ", cyclesUsed, total)
	return o.readYesNo()
}

func (o *InteractiveOperator) PromptRetry(err error) bool {
	fmt.Fprintf(o.out, "\nLLM request failed: %v. Retry? [y/N] ", err)
	return o.readYesNo()
}

func (o *InteractiveOperator) PromptNewInstruction(completionMessage string) (string, bool) {
	if completionMessage != "" {
		fmt.Fprintf(o.out, "\nResearch finished: %s\n", completionMessage)
	}
	fmt.Fprint(o.out, "Enter a new instruction (blank to end the run): ")
	line, err := o.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	return line, true
}

func (o *InteractiveOperator) readYesNo() bool {
	line, err := o.in.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
