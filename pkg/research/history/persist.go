package history

import "encoding/json"

// aggregatorState is the on-disk shape of the aggregator's diff baseline.
// Only last_known_state survives a save: the pending fields are always
// empty by the time a turn's history is persisted (commit happens first).
type aggregatorState struct {
	LastKnownState []any `json:"last_known_state,omitempty"`
}

// document is the on-disk shape of history.json described in the spec's
// persistence layout: blocks, the auto-reply aggregator's diff state,
// and the initial interface content.
type document struct {
	Blocks                  []Block         `json:"blocks"`
	AutoReplyAggregator     aggregatorState `json:"auto_reply_aggregator"`
	InitialInterfaceContent *string         `json:"initial_interface_content"`
}

// Marshal serializes the store to the history.json document shape.
func (s *Store) Marshal() ([]byte, error) {
	doc := document{
		Blocks:                  s.Blocks,
		AutoReplyAggregator:     aggregatorState{LastKnownState: s.Aggregator.LastKnownState()},
		InitialInterfaceContent: s.InitialInterfaceContent,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal reconstructs a Store from a history.json document. The
// aggregator's pending fields are never persisted (they are always empty
// between turns by the time a store is saved), only its last-known-state
// diff baseline is restored.
func Unmarshal(data []byte) (*Store, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	s := NewStore()
	s.Blocks = doc.Blocks
	s.InitialInterfaceContent = doc.InitialInterfaceContent
	if doc.AutoReplyAggregator.LastKnownState != nil {
		s.Aggregator.RestoreLastKnownState(doc.AutoReplyAggregator.LastKnownState)
	}
	return s, nil
}
