package engine

import (
	"context"
	"fmt"

	"github.com/kadirpekel/deepresearch/pkg/focus"
	"github.com/kadirpekel/deepresearch/pkg/research"
)

// Resume reconstructs an Engine from a prior run's on-disk tree
// (cfg.RunDir) and its last checkpoint, if one exists. The tree
// persistence layer supplies the full research state; the checkpoint
// supplies where focus was, whether the engine was awaiting a new
// instruction, and the budget counters.
//
// Resume requires cfg.RunDir to be set; it builds a fresh Engine via
// New and then overwrites its tree, scheduler, and budget state in
// place.
func Resume(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.RunDir == "" {
		return nil, fmt.Errorf("engine: resume requires RunDir")
	}

	root, kb, ext, meta, err := research.LoadTree(cfg.RunDir)
	if err != nil {
		return nil, fmt.Errorf("engine: loading research tree: %w", err)
	}

	e, err := New(cfg)
	if err != nil {
		return nil, err
	}
	e.Root = root
	e.KnowledgeBase = kb
	e.ExternalFiles = ext
	e.createdAt = meta.CreatedAt
	e.Scheduler = focus.NewScheduler(root)

	if !e.checkpoint.IsEnabled() || !e.checkpoint.CanRecover() {
		return e, nil
	}

	state, err := e.checkpoint.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: loading checkpoint: %w", err)
	}

	if active := research.FindByPathTitles(root, state.ActiveNodePath); active != nil {
		e.Scheduler.State.Current = active
	}
	e.Scheduler.State.Future = e.Scheduler.State.Current
	if future := research.FindByPathTitles(root, state.FutureNodePath); future != nil {
		e.Scheduler.State.Future = future
	}
	e.Scheduler.State.AwaitingNewInstruction = state.AwaitingNewInstruction
	e.Scheduler.State.CompletionMessage = state.CompletionMessage

	e.budget.CyclesUsed = state.BudgetCyclesUsed
	e.budget.Total = state.BudgetTotal
	e.budget.HasLimit = state.BudgetHasLimit
	e.budget.Warned = state.BudgetWarned

	return e, nil
}
