package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kadirpekel/deepresearch/pkg/checkpoint"
	"github.com/kadirpekel/deepresearch/pkg/command"
	dctx "github.com/kadirpekel/deepresearch/pkg/context"
	"github.com/kadirpekel/deepresearch/pkg/llms"
	"github.com/kadirpekel/deepresearch/pkg/research/history"
)

// CycleOutcome summarizes what one call to RunCycle did, for a caller
// (cmd/deepresearch, tests) that wants to print progress or decide
// whether to keep looping.
type CycleOutcome struct {
	ActiveNodeTitle  string
	CommandReport    string
	CommandsExecuted bool
	BudgetFailed     bool
	RunDone          bool
}

// RunCycle executes exactly one turn of the Engine Loop against the
// currently active node: render, send, execute commands, check budget,
// apply any deferred focus transition, and checkpoint.
func (e *Engine) RunCycle(ctx context.Context) (CycleOutcome, error) {
	turnStart := time.Now()
	ctx, span := e.obs.Tracer("engine").Start(ctx, "engine.turn")
	defer span.End()

	active := e.Active()

	staticText, snapshots := dctx.RenderInterface(e.Root, active, e.inputs())
	if active.History.InitialInterfaceContent == nil {
		active.History.SetInitialInterfaceContent(e.renderers.RenderAll(snapshots))
	}

	rendered := dctx.RenderHistory(active.History.Blocks, e.renderers)
	rendered = dctx.ApplyTokenCeiling(rendered, e.tokenCounter, e.tokenCeiling)
	messages := toLLMMessages(rendered)

	req, err := e.llm.GenerateRequest(staticText, messages, active.PathTitles())
	if err != nil {
		return CycleOutcome{}, fmt.Errorf("engine: generating request: %w", err)
	}

	nodeLogger := e.nodeLogger(active)
	if nodeLogger != nil {
		_ = nodeLogger.LogRequest(time.Now(), staticText+"\n\n"+renderedToText(rendered))
	}

	e.hooks.BeforeLLMSend(ctx, e.checkpointState(checkpoint.PhasePreLLM))

	text, err := e.sendWithRetry(ctx, req)
	if err != nil {
		return CycleOutcome{}, fmt.Errorf("engine: sending request: %w", err)
	}

	if nodeLogger != nil {
		_ = nodeLogger.LogResponse(time.Now(), text)
	}

	active.History.AddMessage(history.AuthorAssistant, text)

	outcome := CycleOutcome{ActiveNodeTitle: active.Title}
	var executedCount, skippedCount int

	if e.Scheduler.CheckShutdownSentinel(active, text) {
		e.persistTree()
		e.hooks.AfterCommandPipeline(ctx, e.checkpointState(checkpoint.PhaseCommandExecution))
	} else {
		cmdCtx := &command.Context{
			Root:          e.Root,
			ActiveNode:    active,
			Scheduler:     e.Scheduler,
			KnowledgeBase: e.KnowledgeBase,
			ExternalFiles: e.ExternalFiles,
			PermanentLog:  e.PermanentLog,
		}
		result := e.pipeline.Process(cmdCtx, text)
		outcome.CommandReport = result.Report
		outcome.CommandsExecuted = result.CommandsExecuted
		executedCount, skippedCount = countStatuses(result.Statuses)

		_, postSnapshots := dctx.RenderInterface(e.Root, active, e.inputs())
		active.History.Aggregator.UpdateDynamicSections(postSnapshots)
		active.History.CommitAutoReply()

		e.persistTree()
		e.hooks.AfterCommandPipeline(ctx, e.checkpointState(checkpoint.PhaseCommandExecution))

		wasWarned := e.budget.Warned
		budgetOutcome := e.budget.IncrementAndCheck(active)
		cyclesUsed, _, _, nowWarned := e.budget.Snapshot()
		e.hooks.AfterBudgetCheck(ctx, e.checkpointState(checkpoint.PhaseBudgetCheck), cyclesUsed)
		outcome.BudgetFailed = budgetOutcome.Failed
		if budgetOutcome.Failed {
			e.Scheduler.State.AwaitingNewInstruction = true
			e.Scheduler.State.CompletionMessage = budgetOutcome.Message
		}
		if nowWarned && !wasWarned {
			e.obs.Metrics().RecordBudgetWarning()
		}
	}

	previousActive := e.Scheduler.State.Current
	if newActive := e.Scheduler.ApplyDeferredTransition(); newActive != previousActive {
		e.hooks.OnFocusTransition(ctx, e.checkpointState(checkpoint.PhaseFocusTransition))
		e.obs.Metrics().RecordFocusTransition("applied")
	}

	if e.Scheduler.State.AwaitingNewInstruction {
		if instruction, ok := e.operator.PromptNewInstruction(e.Scheduler.State.CompletionMessage); ok {
			e.Scheduler.PrepareForInstruction(e.Root, dctx.SanitizeInstruction(instruction))
		}
	}

	e.status.PrintStatus(e.Root, e.Active())

	outcome.RunDone = e.Done()
	if outcome.RunDone {
		e.hooks.OnRunComplete(ctx)
	}

	e.obs.Metrics().RecordCycle(executedCount, skippedCount, time.Since(turnStart).Seconds())

	return outcome, nil
}

// countStatuses splits one turn's per-invocation statuses into executed
// (succeeded or failed) vs. skipped, for metrics purposes.
func countStatuses(statuses []command.Status) (executed, skipped int) {
	for _, s := range statuses {
		if strings.HasPrefix(s.Outcome, "skipped:") {
			skipped++
		} else {
			executed++
		}
	}
	return executed, skipped
}

// Run drives RunCycle until the run is done or ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		outcome, err := e.RunCycle(ctx)
		if err != nil {
			return err
		}
		if outcome.RunDone {
			return nil
		}
	}
}

// sendWithRetry sends req and, on failure or a ChunkError chunk, blocks
// on the operator for a retry decision before giving up.
func (e *Engine) sendWithRetry(ctx context.Context, req *llms.Request) (string, error) {
	for {
		chunks, err := e.llm.SendRequest(ctx, req)
		if err == nil {
			text, chunkErr := collectText(chunks)
			if chunkErr == nil {
				return text, nil
			}
			err = chunkErr
		}

		if e.operator.PromptRetry(err) {
			continue
		}
		return "", err
	}
}

func collectText(chunks <-chan llms.StreamChunk) (string, error) {
	var b strings.Builder
	for chunk := range chunks {
		switch chunk.Type {
		case llms.ChunkText:
			b.WriteString(chunk.Text)
		case llms.ChunkError:
			return "", chunk.Err
		case llms.ChunkThinking, llms.ChunkDone:
			// Thinking traces are not part of the command text; Done
			// just ends the stream.
		}
	}
	return b.String(), nil
}

func toLLMMessages(rendered []dctx.RenderedMessage) []llms.Message {
	out := make([]llms.Message, 0, len(rendered))
	for _, r := range rendered {
		role := llms.RoleUser
		if r.Role == string(history.AuthorAssistant) {
			role = llms.RoleAssistant
		}
		out = append(out, llms.Message{Role: role, Text: r.Text})
	}
	return out
}

func renderedToText(rendered []dctx.RenderedMessage) string {
	var b strings.Builder
	for _, r := range rendered {
		b.WriteString("[")
		b.WriteString(r.Role)
		b.WriteString("] ")
		b.WriteString(r.Text)
		b.WriteString("\n")
	}
	return b.String()
}
