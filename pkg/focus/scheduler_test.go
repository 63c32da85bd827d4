package focus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/deepresearch/pkg/research"
)

func TestFocusDownUnknownChildIsNoOp(t *testing.T) {
	root := research.NewRoot("root", "study X")
	s := NewScheduler(root)

	err := s.FocusDown(root, "nope")
	require.Error(t, err)
	assert.Equal(t, research.StatusNotStarted, root.State.ProblemStatus)
	assert.Same(t, root, s.State.Future)
}

func TestSiblingQueueOfOneActivatesIntermediateChild(t *testing.T) {
	root := research.NewRoot("root", "study X")
	a, err := root.AddChild("A", "sub A")
	require.NoError(t, err)
	b, err := root.AddChild("B", "sub B")
	require.NoError(t, err)

	s := NewScheduler(root)
	s.Queue.Enqueue(root, "B")
	require.NoError(t, s.FocusDown(root, "A"))
	s.ApplyDeferredTransition()
	require.Same(t, a, s.State.Current)

	require.NoError(t, s.FocusUp(a, "done with A"))
	assert.Same(t, b, s.State.Future)
}

func TestEmptySiblingQueueActivatesParent(t *testing.T) {
	root := research.NewRoot("root", "study X")
	a, err := root.AddChild("A", "sub A")
	require.NoError(t, err)

	s := NewScheduler(root)
	require.NoError(t, s.FocusDown(root, "A"))
	s.ApplyDeferredTransition()

	require.NoError(t, s.FocusUp(a, ""))
	assert.Same(t, root, s.State.Future)
	assert.Equal(t, research.StatusFinished, a.State.ProblemStatus)
}

func TestFailAndFocusUpNeverConsultsQueue(t *testing.T) {
	root := research.NewRoot("root", "study X")
	a, err := root.AddChild("A", "sub A")
	require.NoError(t, err)
	_, err = root.AddChild("B", "sub B")
	require.NoError(t, err)

	s := NewScheduler(root)
	s.Queue.Enqueue(root, "B")
	require.NoError(t, s.FocusDown(root, "A"))
	s.ApplyDeferredTransition()

	require.NoError(t, s.FailAndFocusUp(a, "could not proceed"))
	assert.Same(t, root, s.State.Future, "failure path always targets the parent, never the queue")
	assert.Equal(t, 1, s.Queue.Len(root), "the queue is left untouched on failure")
}

func TestFocusUpOnRootRaisesAwaiting(t *testing.T) {
	root := research.NewRoot("root", "study X")
	s := NewScheduler(root)

	require.NoError(t, s.FocusUp(root, "done"))
	assert.True(t, s.State.AwaitingNewInstruction)
	assert.Equal(t, "done", s.State.CompletionMessage)
	assert.Equal(t, research.StatusFinished, root.State.ProblemStatus)
}

func TestShutdownSentinelOnRoot(t *testing.T) {
	root := research.NewRoot("root", "study X")
	s := NewScheduler(root)

	handled := s.CheckShutdownSentinel(root, "done, shut_down_deep_researcher now")
	assert.True(t, handled)
	assert.True(t, s.State.AwaitingNewInstruction)
	assert.Equal(t, research.StatusFinished, root.State.ProblemStatus)
}

func TestShutdownSentinelIgnoredOnNonRoot(t *testing.T) {
	root := research.NewRoot("root", "study X")
	a, err := root.AddChild("A", "sub A")
	require.NoError(t, err)
	s := NewScheduler(root)

	var diag string
	s.Diagnostics = func(msg string) { diag = msg }

	handled := s.CheckShutdownSentinel(a, "SHUT_DOWN_DEEP_RESEARCHER")
	assert.False(t, handled)
	assert.False(t, s.State.AwaitingNewInstruction)
	assert.NotEmpty(t, diag)
}
