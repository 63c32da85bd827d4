package context

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/deepresearch/pkg/research/history"
	"github.com/kadirpekel/deepresearch/pkg/utils"
)

func TestRenderHistoryChronologicalOrder(t *testing.T) {
	blocks := []history.Block{
		{Message: &history.ChatMessage{Author: history.AuthorAssistant, Text: "first"}},
		{Message: &history.ChatMessage{Author: history.AuthorAssistant, Text: "second"}},
	}
	reg := NewRendererRegistry()
	out := RenderHistory(blocks, reg)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Text)
	assert.Equal(t, "second", out[1].Text)
}

func TestRenderHistoryTruncationAfterThreeAutoReplies(t *testing.T) {
	reg := NewRendererRegistry()
	longOutput := strings.Repeat("x", 6000)

	var blocks []history.Block
	for i := 0; i < 5; i++ {
		blocks = append(blocks, history.Block{AutoReply: &history.AutoReply{
			CommandOutputs: []string{longOutput},
		}})
	}

	out := RenderHistory(blocks, reg)
	require.Len(t, out, 5)

	// Newest three (chronologically the last three elements) are full.
	for _, msg := range out[2:] {
		assert.Contains(t, msg.Text, longOutput)
	}
	// The oldest two are truncated, the oldest more aggressively.
	assert.Less(t, len(out[0].Text), len(out[1].Text))
	assert.True(t, strings.Contains(out[0].Text, "[truncated]"))
}

func TestRenderHistoryFutureChangesMap(t *testing.T) {
	reg := NewRendererRegistry()
	blocks := []history.Block{
		{AutoReply: &history.AutoReply{Changed: []history.SectionChange{{Index: 0, Data: HeaderSnapshot{NodeTitle: "old"}}}}},
		{AutoReply: &history.AutoReply{Changed: []history.SectionChange{{Index: 0, Data: HeaderSnapshot{NodeTitle: "new"}}}}},
	}
	out := RenderHistory(blocks, reg)
	require.Len(t, out, 2)
	// The older block's header section has one future re-report, so the
	// default renderer should note it was superseded.
	assert.Contains(t, out[0].Text, "superseded")
	assert.Contains(t, out[1].Text, "new")
}

func TestApplyTokenCeilingKeepsMostRecentMessages(t *testing.T) {
	counter, err := utils.NewTokenCounter("gpt-4o")
	require.NoError(t, err)

	rendered := []RenderedMessage{
		{Role: "user", Text: "Message 1"},
		{Role: "assistant", Text: "Response 1"},
		{Role: "user", Text: "Message 2"},
		{Role: "assistant", Text: "Response 2"},
		{Role: "user", Text: "Message 3"},
	}

	out := ApplyTokenCeiling(rendered, counter, 50)
	require.Less(t, len(out), len(rendered))
	require.NotEmpty(t, out)
	assert.Equal(t, "Message 3", out[len(out)-1].Text)
}

func TestApplyTokenCeilingDisabledByNonPositiveCeiling(t *testing.T) {
	counter, err := utils.NewTokenCounter("gpt-4o")
	require.NoError(t, err)

	rendered := []RenderedMessage{{Role: "user", Text: "hello"}}
	assert.Equal(t, rendered, ApplyTokenCeiling(rendered, counter, 0))
	assert.Equal(t, rendered, ApplyTokenCeiling(rendered, nil, 1000))
}
