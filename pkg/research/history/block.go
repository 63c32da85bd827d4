// Package history implements the per-node History Store and Auto-Reply
// Aggregator: an append-only log of history blocks plus the mutable
// accumulator that turns a turn's side effects into the next auto-reply.
package history

// Author distinguishes who wrote a ChatMessage block.
type Author string

const (
	AuthorAssistant Author = "assistant"
	AuthorUser      Author = "user"
)

// ChatMessage is a verbatim message, attributed to an author.
type ChatMessage struct {
	Author Author
	Text   string
}

// SectionChange records one dynamic section snapshot that differed from
// the previous turn's last-known-state, keyed by its canonical index in
// the fixed section ordering. Data is an opaque snapshot value; equality
// and rendering are the Dynamic Section Engine's concern, not this
// package's — history only needs to carry it and compare it structurally.
type SectionChange struct {
	Index int
	Data  any
}

// AutoReply is the synthesized user-side turn: accumulated error
// reports, command outputs, internal messages, an optional confirmation
// prompt, and the dynamic sections that changed since the last flush.
type AutoReply struct {
	ErrorReport         string
	CommandOutputs      []string
	InternalMessages    []string
	ConfirmationRequest string
	Changed             []SectionChange
}

// IsEmpty reports whether every constituent field is empty. Per the
// spec's invariant, an AutoReply is appended to history only when this
// is false.
func (a *AutoReply) IsEmpty() bool {
	return a.ErrorReport == "" &&
		len(a.CommandOutputs) == 0 &&
		len(a.InternalMessages) == 0 &&
		a.ConfirmationRequest == "" &&
		len(a.Changed) == 0
}

// Block is a tagged union over the two kinds of history entries. Exactly
// one of Message or AutoReply is non-nil.
type Block struct {
	Message   *ChatMessage
	AutoReply *AutoReply
}
