// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package checkpoint captures and restores enough Engine Loop state to
// resume a run after a crash or a deliberate pause, without replaying the
// full command history. It complements, rather than replaces, the
// on-disk research tree persistence: the checkpoint tells the engine
// where focus was and what the budget looked like; the persisted tree
// (Problem Definition.md, node_state.json, history.json, ...) supplies
// everything else.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"time"
)

// Phase records which part of the turn loop was in flight when the
// checkpoint was taken.
type Phase string

const (
	PhasePreLLM           Phase = "pre_llm"
	PhasePostLLM          Phase = "post_llm"
	PhaseCommandExecution Phase = "command_execution"
	PhaseBudgetCheck      Phase = "budget_check"
	PhaseFocusTransition  Phase = "focus_transition"
	PhaseAwaitingNewTask  Phase = "awaiting_new_instruction"
)

// State is the full resumable snapshot of one engine run.
type State struct {
	// RunID identifies the research run this checkpoint belongs to.
	RunID string `json:"run_id"`

	// ActiveNodePath is the root-to-active title path at checkpoint time.
	ActiveNodePath []string `json:"active_node_path"`

	// FutureNodePath is the scheduler's deferred-transition target, if
	// one was pending when the checkpoint was taken.
	FutureNodePath []string `json:"future_node_path,omitempty"`

	AwaitingNewInstruction bool   `json:"awaiting_new_instruction"`
	CompletionMessage      string `json:"completion_message,omitempty"`

	// Budget controller counters.
	BudgetCyclesUsed int  `json:"budget_cycles_used"`
	BudgetTotal      int  `json:"budget_total"`
	BudgetHasLimit   bool `json:"budget_has_limit"`
	BudgetWarned     bool `json:"budget_warned"`

	Phase          Phase     `json:"phase"`
	CheckpointTime time.Time `json:"checkpoint_time"`
}

// Serialize converts the State to JSON bytes.
func (s *State) Serialize() ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("checkpoint: cannot serialize nil state")
	}
	return json.MarshalIndent(s, "", "  ")
}

// Deserialize reconstructs a State from JSON bytes.
func Deserialize(data []byte) (*State, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("checkpoint: cannot deserialize empty data")
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("checkpoint: unmarshaling state: %w", err)
	}
	return &state, nil
}

// NewState creates a State with the given run and phase; callers fill in
// the remaining fields before persisting.
func NewState(runID string, phase Phase) *State {
	return &State{RunID: runID, Phase: phase, CheckpointTime: time.Now()}
}

// WithFocus sets the active/future node paths and awaiting-instruction
// state, mirroring focus.State.
func (s *State) WithFocus(active, future []string, awaiting bool, completionMessage string) *State {
	s.ActiveNodePath = active
	s.FutureNodePath = future
	s.AwaitingNewInstruction = awaiting
	s.CompletionMessage = completionMessage
	return s
}

// WithBudget sets the budget controller's counters, mirroring
// budget.Controller.Snapshot.
func (s *State) WithBudget(cyclesUsed, total int, hasLimit, warned bool) *State {
	s.BudgetCyclesUsed = cyclesUsed
	s.BudgetTotal = total
	s.BudgetHasLimit = hasLimit
	s.BudgetWarned = warned
	return s
}
