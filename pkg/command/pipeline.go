package command

import (
	"fmt"
	"strings"
)

// confirmationPromptText is appended to the aggregator whenever a
// finish_problem/fail_problem is skipped by the confirmation-gate rule.
const confirmationPromptText = "You attempted to finish or fail this problem, but other errors were " +
	"detected in this message. Reissue the command alone to confirm, or resolve the errors first."

// Status is one invocation's recorded outcome, keyed by "{name}_{index}".
type Status struct {
	Key     string
	Outcome string // "success", "failed: <message>", or "skipped: <reason>"
}

// Result is everything the Engine Loop needs after processing one turn's
// command batch.
type Result struct {
	Statuses         []Status
	CommandsExecuted bool
	Report           string
}

// Pipeline parses, validates, executes, and reports a batch of commands
// extracted from one agent turn.
type Pipeline struct {
	Parser   Parser
	Registry *Registry
}

// NewPipeline returns a pipeline over the given parser and command registry.
func NewPipeline(parser Parser, reg *Registry) *Pipeline {
	return &Pipeline{Parser: parser, Registry: reg}
}

// Process runs the full pipeline over one turn's raw text against ctx,
// per the parameterized command-processor variant (DESIGN.md). Side
// effects (command outputs, error reports, confirmation prompts) land on
// ctx.ActiveNode's aggregator; the caller is responsible for committing
// the auto-reply afterward.
func (p *Pipeline) Process(ctx *Context, text string) Result {
	invocations := p.Parser.Parse(text)
	parseReport := p.Parser.GenerateErrorReport(invocations)

	var statuses []Status
	var executionLines []string
	commandsExecuted := false
	mustBeLastSeen := false
	confirmationNeeded := false
	anyErrorSoFar := false

	for idx, inv := range invocations {
		key := fmt.Sprintf("%s_%d", inv.Name, idx)

		if inv.HasParseErrors() {
			statuses = append(statuses, Status{Key: key, Outcome: "skipped: parse error"})
			anyErrorSoFar = true
			continue
		}

		if mustBeLastSeen {
			statuses = append(statuses, Status{Key: key, Outcome: "skipped: came after a command that has to be the last in the message"})
			continue
		}

		def, found := p.Registry.Get(inv.Name)

		if found && (inv.Name == "finish_problem" || inv.Name == "fail_problem") && anyErrorSoFar {
			statuses = append(statuses, Status{Key: key, Outcome: "skipped: other errors detected in the message, do you really want to go ahead?"})
			confirmationNeeded = true
			continue
		}

		if !found {
			msg := fmt.Sprintf("Command '%s' not found in registry.", inv.Name)
			statuses = append(statuses, Status{Key: key, Outcome: "failed: " + msg})
			executionLines = append(executionLines, fmt.Sprintf("- line %d: %s failed: %s", inv.SourceLine, inv.Name, msg))
			anyErrorSoFar = true
			continue
		}

		if ctx.Root.ProblemDefinition == "" && inv.Name != "define_problem" {
			msg := "root problem not yet defined; only define_problem is permitted"
			statuses = append(statuses, Status{Key: key, Outcome: "failed: " + msg})
			executionLines = append(executionLines, fmt.Sprintf("- line %d: %s failed: %s", inv.SourceLine, inv.Name, msg))
			anyErrorSoFar = true
			continue
		}

		output, err := executeWithRecover(def, ctx, inv.Args)
		if err != nil {
			statuses = append(statuses, Status{Key: key, Outcome: "failed: " + err.Error()})
			executionLines = append(executionLines, fmt.Sprintf("- line %d: %s failed: %s", inv.SourceLine, inv.Name, err.Error()))
			anyErrorSoFar = true
			continue
		}

		statuses = append(statuses, Status{Key: key, Outcome: "success"})
		if output != "" {
			ctx.ActiveNode.History.Aggregator.AddCommandOutput(output)
		}
		commandsExecuted = true
		if def.MustBeLast {
			mustBeLastSeen = true
		}
	}

	report := composeReport(parseReport, executionLines)
	if confirmationNeeded {
		ctx.ActiveNode.History.Aggregator.SetConfirmationRequest(confirmationPromptText)
	}
	if report != "" {
		ctx.ActiveNode.History.Aggregator.AddErrorReport(report)
	}

	return Result{Statuses: statuses, CommandsExecuted: commandsExecuted, Report: report}
}

// executeWithRecover runs a handler, converting any panic into an error
// so the pipeline can continue with the next invocation (spec's handler
// failure semantics).
func executeWithRecover(def *Definition, ctx *Context, args map[string]string) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return def.Handler(ctx, args)
}

func composeReport(parseReport string, executionLines []string) string {
	var b strings.Builder
	if parseReport != "" {
		b.WriteString(parseReport)
	}
	if len(executionLines) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("### Execution Status Report:\n")
		b.WriteString(strings.Join(executionLines, "\n"))
	}
	return b.String()
}
