package history

// Store owns one node's append-only block list and its auto-reply
// aggregator.
type Store struct {
	Blocks     []Block
	Aggregator *Aggregator

	// InitialInterfaceContent is the static+dynamic render captured the
	// first time this node became active, echoed as the first
	// user-authored message when rendering history for the LLM.
	InitialInterfaceContent *string
}

// NewStore returns an empty history store.
func NewStore() *Store {
	return &Store{Aggregator: NewAggregator()}
}

// AddMessage appends a ChatMessage block verbatim.
func (s *Store) AddMessage(author Author, text string) {
	s.Blocks = append(s.Blocks, Block{Message: &ChatMessage{Author: author, Text: text}})
}

// CommitAutoReply flushes the aggregator. If it produces a non-empty
// AutoReply, the block is appended and returned; otherwise history is
// left unchanged and nil is returned.
func (s *Store) CommitAutoReply() *AutoReply {
	reply := s.Aggregator.CommitAndGetAutoReply()
	if reply == nil {
		return nil
	}
	s.Blocks = append(s.Blocks, Block{AutoReply: reply})
	return reply
}

// SetInitialInterfaceContent records the first rendered view for this
// node, if not already set.
func (s *Store) SetInitialInterfaceContent(content string) {
	if s.InitialInterfaceContent != nil {
		return
	}
	s.InitialInterfaceContent = &content
}
