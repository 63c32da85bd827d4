package context

import (
	"strings"

	"github.com/kadirpekel/deepresearch/pkg/research/history"
	"github.com/kadirpekel/deepresearch/pkg/utils"
)

// RenderedMessage is one message ready to hand to the LLM interface.
type RenderedMessage struct {
	Role string
	Text string
}

const (
	initialTruncationCap = 5000
	truncationFloor      = 300
	fullAutoRepliesCount = 3
)

// RenderHistory walks a node's block list newest-to-oldest, computing
// each historical auto-reply's future_changes_map (how many more recent
// auto-replies re-reported the same section) and applying the
// auto-reply-specific truncation budget: the newest three auto-replies
// are rendered in full, every one after that is capped starting at 5000
// characters per command output and halving each step, floored at 300.
// The result is reversed back into chronological order.
func RenderHistory(blocks []history.Block, reg *RendererRegistry) []RenderedMessage {
	rendered := make([]RenderedMessage, 0, len(blocks))
	futureCounts := make(map[int]int)
	autoReplyIdx := 0
	nextCap := initialTruncationCap

	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		if b.Message != nil {
			rendered = append(rendered, RenderedMessage{Role: string(b.Message.Author), Text: b.Message.Text})
			continue
		}

		ar := b.AutoReply
		cap := -1
		if autoReplyIdx >= fullAutoRepliesCount {
			cap = nextCap
			nextCap /= 2
			if nextCap < truncationFloor {
				nextCap = truncationFloor
			}
		}

		rendered = append(rendered, RenderedMessage{Role: "user", Text: renderAutoReply(ar, futureCounts, reg, cap)})

		for _, ch := range ar.Changed {
			futureCounts[ch.Index]++
		}
		autoReplyIdx++
	}

	for l, r := 0, len(rendered)-1; l < r; l, r = l+1, r-1 {
		rendered[l], rendered[r] = rendered[r], rendered[l]
	}
	return rendered
}

func renderAutoReply(ar *history.AutoReply, futureCounts map[int]int, reg *RendererRegistry, cap int) string {
	var b strings.Builder
	if ar.ErrorReport != "" {
		b.WriteString(ar.ErrorReport)
		b.WriteString("\n\n")
	}
	for _, out := range ar.CommandOutputs {
		b.WriteString(truncateOutput(out, cap))
		b.WriteString("\n")
	}
	for _, msg := range ar.InternalMessages {
		b.WriteString(msg)
		b.WriteString("\n")
	}
	if ar.ConfirmationRequest != "" {
		b.WriteString(ar.ConfirmationRequest)
		b.WriteString("\n")
	}
	for _, ch := range ar.Changed {
		b.WriteString(reg.Render(sectionNameForIndex(ch.Index), ch.Data, futureCounts[ch.Index]))
		b.WriteString("\n")
	}
	return b.String()
}

func truncateOutput(s string, cap int) string {
	if cap < 0 || len(s) <= cap {
		return s
	}
	return s[:cap] + "... [truncated]"
}

func sectionNameForIndex(i int) SectionName {
	if i < 0 || i >= len(CanonicalOrder) {
		return ""
	}
	return CanonicalOrder[i]
}

// ApplyTokenCeiling drops the oldest rendered messages, keeping the
// chronological order of the rest, so the total stays within maxTokens
// under counter's encoding. It supplements, rather than replaces, the
// per-command character truncation RenderHistory already applied: a
// counter-aware ceiling on top of a char-count floor. A non-positive
// maxTokens or nil counter disables the ceiling and returns rendered
// unchanged.
func ApplyTokenCeiling(rendered []RenderedMessage, counter *utils.TokenCounter, maxTokens int) []RenderedMessage {
	if counter == nil || maxTokens <= 0 || len(rendered) == 0 {
		return rendered
	}

	msgs := make([]utils.Message, len(rendered))
	for i, r := range rendered {
		msgs[i] = utils.Message{Role: r.Role, Content: r.Text}
	}

	fitted := counter.FitWithinLimit(msgs, maxTokens)
	if len(fitted) == len(rendered) {
		return rendered
	}

	out := make([]RenderedMessage, len(fitted))
	for i, m := range fitted {
		out[i] = RenderedMessage{Role: m.Role, Text: m.Content}
	}
	return out
}
