// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package checkpoint

import (
	"context"
	"log/slog"
)

// Manager orchestrates checkpointing for one research run.
type Manager struct {
	config  *Config
	storage *Storage
}

// NewManager creates a Manager that persists checkpoints under baseDir.
func NewManager(cfg *Config, baseDir string) *Manager {
	if cfg == nil {
		cfg = &Config{}
		cfg.SetDefaults()
	}
	return &Manager{config: cfg, storage: NewStorage(baseDir)}
}

// IsEnabled returns whether checkpointing is enabled.
func (m *Manager) IsEnabled() bool {
	return m.config.IsEnabled()
}

// Config returns the checkpoint configuration.
func (m *Manager) Config() *Config {
	return m.config
}

// Save persists state if checkpointing is enabled.
func (m *Manager) Save(ctx context.Context, state *State) error {
	if !m.IsEnabled() {
		return nil
	}
	return m.storage.Save(ctx, state)
}

// Load retrieves the run's most recent checkpoint, if any. It does not
// check the recovery timeout; CanRecover does.
func (m *Manager) Load(ctx context.Context) (*State, error) {
	return m.storage.Load(ctx)
}

// CanRecover reports whether a checkpoint exists and is still fresh
// enough to be used for recovery.
func (m *Manager) CanRecover() bool {
	return m.storage.Exists(m.config.RecoveryTimeout())
}

// Clear removes the run's checkpoint.
func (m *Manager) Clear(ctx context.Context) error {
	return m.storage.Clear(ctx)
}

// Hooks provides checkpoint integration points for the Engine Loop.
type Hooks struct {
	manager *Manager
}

// NewHooks returns engine-loop checkpoint hooks bound to manager.
func NewHooks(manager *Manager) *Hooks {
	if manager == nil {
		return nil
	}
	return &Hooks{manager: manager}
}

// BeforeLLMSend checkpoints just before the request is sent to the model.
func (h *Hooks) BeforeLLMSend(ctx context.Context, state *State) {
	if h == nil || !h.manager.config.ShouldCheckpointOnEvent() {
		return
	}
	state.Phase = PhasePreLLM
	if err := h.manager.Save(ctx, state); err != nil {
		slog.Warn("checkpoint: failed to save pre-llm checkpoint", "run_id", state.RunID, "error", err)
	}
}

// AfterCommandPipeline checkpoints once a turn's commands have executed.
func (h *Hooks) AfterCommandPipeline(ctx context.Context, state *State) {
	if h == nil || !h.manager.IsEnabled() {
		return
	}
	state.Phase = PhaseCommandExecution
	if err := h.manager.Save(ctx, state); err != nil {
		slog.Warn("checkpoint: failed to save post-command checkpoint", "run_id", state.RunID, "error", err)
	}
}

// AfterBudgetCheck checkpoints after the budget controller evaluates a cycle.
func (h *Hooks) AfterBudgetCheck(ctx context.Context, state *State, cyclesUsed int) {
	if h == nil {
		return
	}
	if !h.manager.config.ShouldCheckpointAtCycle(cyclesUsed) {
		return
	}
	state.Phase = PhaseBudgetCheck
	if err := h.manager.Save(ctx, state); err != nil {
		slog.Warn("checkpoint: failed to save budget-check checkpoint", "run_id", state.RunID, "error", err)
	}
}

// OnFocusTransition checkpoints after the scheduler applies a deferred
// focus transition (the canonical event-driven checkpoint moment).
func (h *Hooks) OnFocusTransition(ctx context.Context, state *State) {
	if h == nil || !h.manager.config.ShouldCheckpointOnEvent() {
		return
	}
	state.Phase = PhaseFocusTransition
	if err := h.manager.Save(ctx, state); err != nil {
		slog.Warn("checkpoint: failed to save focus-transition checkpoint", "run_id", state.RunID, "error", err)
	}
}

// OnRunComplete clears the checkpoint once the root problem reaches a
// terminal status and no new instruction follows.
func (h *Hooks) OnRunComplete(ctx context.Context) {
	if h == nil || !h.manager.IsEnabled() {
		return
	}
	if err := h.manager.Clear(ctx); err != nil {
		slog.Warn("checkpoint: failed to clear checkpoint on completion", "error", err)
	}
}
