package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/deepresearch/pkg/focus"
	"github.com/kadirpekel/deepresearch/pkg/research"
)

func newTestContext(t *testing.T) (*Context, *Pipeline) {
	t.Helper()
	root := research.NewRoot("", "")
	sched := focus.NewScheduler(root)
	reg := NewRegistry()
	require.NoError(t, RegisterBuiltins(reg))

	ctx := &Context{
		Root:          root,
		ActiveNode:    root,
		Scheduler:     sched,
		KnowledgeBase: research.NewKnowledgeBase(),
		ExternalFiles: research.NewExternalFiles(),
		PermanentLog:  research.NewPermanentLog(),
	}
	return ctx, NewPipeline(NewLineParser(), reg)
}

func statusFor(t *testing.T, statuses []Status, prefix string) Status {
	t.Helper()
	for _, s := range statuses {
		if len(s.Key) >= len(prefix) && s.Key[:len(prefix)] == prefix {
			return s
		}
	}
	t.Fatalf("no status found with key prefix %q", prefix)
	return Status{}
}

func TestDefineThenFinish(t *testing.T) {
	ctx, p := newTestContext(t)
	text := "@define_problem\ntitle: Study X\ncontent: Figure out X.\n\n@finish_problem\nmessage: done\n"
	result := p.Process(ctx, text)

	assert.Equal(t, research.StatusFinished, ctx.Root.State.ProblemStatus)
	assert.True(t, ctx.Scheduler.State.AwaitingNewInstruction)
	assert.Equal(t, "done", ctx.Scheduler.State.CompletionMessage)
	assert.Equal(t, "success", statusFor(t, result.Statuses, "define_problem").Outcome)
	assert.Equal(t, "success", statusFor(t, result.Statuses, "finish_problem").Outcome)
}

func TestSkipAfterLast(t *testing.T) {
	ctx, p := newTestContext(t)
	_ = p.Process(ctx, "@define_problem\ntitle: Study X\ncontent: Figure out X.\n")

	text := "@finish_problem\nmessage: done\n\n@add_criterion\ntext: irrelevant\n"
	result := p.Process(ctx, text)

	assert.Equal(t, "success", statusFor(t, result.Statuses, "finish_problem").Outcome)
	assert.Equal(t,
		"skipped: came after a command that has to be the last in the message",
		statusFor(t, result.Statuses, "add_criterion").Outcome)
}

func TestConfirmationGate(t *testing.T) {
	ctx, p := newTestContext(t)
	_ = p.Process(ctx, "@define_problem\ntitle: Study X\ncontent: Figure out X.\n")

	text := "@foo\n\n@finish_problem\nmessage: done\n"
	result := p.Process(ctx, text)

	assert.Equal(t, "failed: Command 'foo' not found in registry.", statusFor(t, result.Statuses, "foo").Outcome)
	assert.Equal(t,
		"skipped: other errors detected in the message, do you really want to go ahead?",
		statusFor(t, result.Statuses, "finish_problem").Outcome)
	assert.Contains(t, ctx.ActiveNode.History.Aggregator.CommitAndGetAutoReply().ConfirmationRequest, "You attempted to finish or fail")
}

func TestCommandBeforeDefineProblemFails(t *testing.T) {
	ctx, p := newTestContext(t)
	result := p.Process(ctx, "@add_criterion\ntext: must work\n")
	assert.Contains(t, statusFor(t, result.Statuses, "add_criterion").Outcome, "failed:")
}
