package history

import "reflect"

// Aggregator accumulates the side effects of one turn — error reports,
// command outputs, internal messages, an optional confirmation request,
// and the set of dynamic sections that changed — until it is flushed
// into an AutoReply block by CommitAndGetAutoReply.
type Aggregator struct {
	pendingErrorReport      string
	pendingCommandOutputs   []string
	pendingInternalMessages []string
	pendingConfirmation     string
	changed                 []SectionChange

	// lastKnownState is the most recent snapshot set handed to
	// UpdateDynamicSections, used to diff the next turn's snapshots.
	lastKnownState []any
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// AddErrorReport appends text to the pending error report, joining
// multiple reports in the same turn with a blank line.
func (a *Aggregator) AddErrorReport(text string) {
	if text == "" {
		return
	}
	if a.pendingErrorReport == "" {
		a.pendingErrorReport = text
		return
	}
	a.pendingErrorReport += "\n\n" + text
}

// AddCommandOutput records one command's textual output for the next
// auto-reply.
func (a *Aggregator) AddCommandOutput(text string) {
	if text == "" {
		return
	}
	a.pendingCommandOutputs = append(a.pendingCommandOutputs, text)
}

// AddInternalMessage records one SYSTEM/internal message for the next
// auto-reply.
func (a *Aggregator) AddInternalMessage(text string) {
	if text == "" {
		return
	}
	a.pendingInternalMessages = append(a.pendingInternalMessages, text)
}

// SetConfirmationRequest sets (or clears, with "") the pending
// confirmation prompt.
func (a *Aggregator) SetConfirmationRequest(text string) {
	a.pendingConfirmation = text
}

// UpdateDynamicSections compares the new snapshot set against
// lastKnownState by structural (value) equality, in canonical order. A
// change in section count is treated as a structural change: every
// section is re-reported. lastKnownState is then replaced by a copy of
// snapshots, per the spec's per-turn protocol.
func (a *Aggregator) UpdateDynamicSections(snapshots []any) {
	changed := make([]SectionChange, 0, len(snapshots))
	if len(a.lastKnownState) != len(snapshots) {
		for i, s := range snapshots {
			changed = append(changed, SectionChange{Index: i, Data: s})
		}
	} else {
		for i, s := range snapshots {
			if !reflect.DeepEqual(a.lastKnownState[i], s) {
				changed = append(changed, SectionChange{Index: i, Data: s})
			}
		}
	}
	a.changed = changed

	state := make([]any, len(snapshots))
	copy(state, snapshots)
	a.lastKnownState = state
}

// LastKnownState returns the snapshot set from the most recent
// UpdateDynamicSections call, used for round-trip persistence.
func (a *Aggregator) LastKnownState() []any {
	return a.lastKnownState
}

// RestoreLastKnownState seeds lastKnownState without recording a diff;
// used when rehydrating an aggregator from disk.
func (a *Aggregator) RestoreLastKnownState(snapshots []any) {
	a.lastKnownState = snapshots
}

// IsEmpty reports whether every pending field is empty.
func (a *Aggregator) IsEmpty() bool {
	return a.pendingErrorReport == "" &&
		len(a.pendingCommandOutputs) == 0 &&
		len(a.pendingInternalMessages) == 0 &&
		a.pendingConfirmation == "" &&
		len(a.changed) == 0
}

// CommitAndGetAutoReply builds an AutoReply from the pending fields and
// clears them (but never lastKnownState), returning nil if the
// aggregator was empty.
func (a *Aggregator) CommitAndGetAutoReply() *AutoReply {
	if a.IsEmpty() {
		return nil
	}
	reply := &AutoReply{
		ErrorReport:         a.pendingErrorReport,
		CommandOutputs:      a.pendingCommandOutputs,
		InternalMessages:    a.pendingInternalMessages,
		ConfirmationRequest: a.pendingConfirmation,
		Changed:             a.changed,
	}
	a.pendingErrorReport = ""
	a.pendingCommandOutputs = nil
	a.pendingInternalMessages = nil
	a.pendingConfirmation = ""
	a.changed = nil
	return reply
}
