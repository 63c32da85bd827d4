// Package engine implements the Engine Loop: the per-turn orchestration
// that renders dynamic context, sends it to the model, runs the
// returned commands through the Command Pipeline, applies budget and
// focus-transition side effects, and persists a checkpoint.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kadirpekel/deepresearch/pkg/budget"
	"github.com/kadirpekel/deepresearch/pkg/checkpoint"
	"github.com/kadirpekel/deepresearch/pkg/command"
	dctx "github.com/kadirpekel/deepresearch/pkg/context"
	"github.com/kadirpekel/deepresearch/pkg/focus"
	"github.com/kadirpekel/deepresearch/pkg/llms"
	"github.com/kadirpekel/deepresearch/pkg/logger"
	"github.com/kadirpekel/deepresearch/pkg/observability"
	"github.com/kadirpekel/deepresearch/pkg/research"
	"github.com/kadirpekel/deepresearch/pkg/research/report"
	"github.com/kadirpekel/deepresearch/pkg/utils"
)

// Config assembles the components an Engine needs. Only LLM, Parser,
// and CommandRegistry are required; the rest default to sensible
// zero-budget, non-interactive values.
type Config struct {
	LLM             llms.Client
	Parser          command.Parser
	CommandRegistry *command.Registry
	Renderers       *dctx.RendererRegistry // defaults to dctx.NewRendererRegistry()
	Operator        Operator               // defaults to AutoDeclineOperator{}

	BudgetTotal    int
	BudgetHasLimit bool

	// HistoryTokenCeiling, if positive, caps rendered history to roughly
	// this many tokens (counted against the LLM client's model), dropping
	// the oldest messages first. Zero disables the ceiling and leaves
	// RenderHistory's char-count truncation as the only budget.
	HistoryTokenCeiling int

	CheckpointConfig *checkpoint.Config // defaults to disabled
	RunDir           string             // base directory for checkpoints, tree persistence, and node logging

	StatusOut     func(string)         // receives the per-turn status banner; defaults to discarding it
	Observability *observability.Config // defaults to disabled tracing/metrics
}

// Engine owns one research run: the tree, the scheduler, the history
// aggregation, the budget, and the wiring between them.
type Engine struct {
	RunID string

	Root      *research.Node
	Scheduler *focus.Scheduler

	KnowledgeBase *research.KnowledgeBase
	ExternalFiles *research.ExternalFiles
	PermanentLog  *research.PermanentLog

	llm          llms.Client
	pipeline     *command.Pipeline
	renderers    *dctx.RendererRegistry
	operator     Operator
	budget       *budget.Controller
	checkpoint   *checkpoint.Manager
	hooks        *checkpoint.Hooks
	status       *report.StatusPrinter
	obs          *observability.Manager
	tokenCounter *utils.TokenCounter
	tokenCeiling int

	runDir    string // "" disables tree persistence and node-local request/response logging
	createdAt time.Time
}

// New constructs an Engine over a fresh (problem-not-yet-defined) root.
func New(cfg Config) (*Engine, error) {
	if cfg.LLM == nil {
		return nil, fmt.Errorf("engine: LLM client is required")
	}
	if cfg.Parser == nil {
		return nil, fmt.Errorf("engine: command parser is required")
	}
	if cfg.CommandRegistry == nil {
		return nil, fmt.Errorf("engine: command registry is required")
	}

	renderers := cfg.Renderers
	if renderers == nil {
		renderers = dctx.NewRendererRegistry()
	}
	operator := cfg.Operator
	if operator == nil {
		operator = AutoDeclineOperator{}
	}

	root := research.NewRoot("", "")
	scheduler := focus.NewScheduler(root)

	ckptCfg := cfg.CheckpointConfig
	if ckptCfg == nil {
		ckptCfg = &checkpoint.Config{}
		ckptCfg.SetDefaults()
	}
	ckptMgr := checkpoint.NewManager(ckptCfg, cfg.RunDir)

	runID := uuid.NewString()
	controller := budget.New(cfg.BudgetTotal, cfg.BudgetHasLimit, operator.PromptBudgetExtension)

	obs, err := observability.NewManager(context.Background(), cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("engine: initializing observability: %w", err)
	}

	var tokenCounter *utils.TokenCounter
	if cfg.HistoryTokenCeiling > 0 {
		tokenCounter, err = utils.NewTokenCounter(cfg.LLM.ModelName())
		if err != nil {
			return nil, fmt.Errorf("engine: building token counter: %w", err)
		}
	}

	return &Engine{
		RunID:         runID,
		Root:          root,
		Scheduler:     scheduler,
		KnowledgeBase: research.NewKnowledgeBase(),
		ExternalFiles: research.NewExternalFiles(),
		PermanentLog:  research.NewPermanentLog(),
		llm:           cfg.LLM,
		pipeline:      command.NewPipeline(cfg.Parser, cfg.CommandRegistry),
		renderers:     renderers,
		operator:      operator,
		budget:        controller,
		checkpoint:    ckptMgr,
		hooks:         checkpoint.NewHooks(ckptMgr),
		status:        report.NewStatusPrinter(cfg.StatusOut),
		obs:           obs,
		tokenCounter:  tokenCounter,
		tokenCeiling:  cfg.HistoryTokenCeiling,
		runDir:        cfg.RunDir,
		createdAt:     time.Now(),
	}, nil
}

// FinalReport renders the final Markdown report over the whole tree.
// Callers typically call this once Done() is true.
func (e *Engine) FinalReport() string {
	return report.NewReportGenerator(e.Root).GenerateFinalReport(e.Scheduler.State.CompletionMessage)
}

// persistTree writes the full on-disk research layout if tree
// persistence is enabled (RunDir set), logging but not failing the turn
// on a write error — persistence is best-effort alongside the engine's
// own checkpointing.
func (e *Engine) persistTree() {
	if e.runDir == "" {
		return
	}
	if err := research.SaveTree(e.runDir, e.Root, e.KnowledgeBase, e.ExternalFiles, e.createdAt); err != nil {
		logger.GetLogger().Warn("persisting research tree failed", "error", err)
	}
}

// Active returns the node currently in focus.
func (e *Engine) Active() *research.Node {
	return e.Scheduler.State.Current
}

// Done reports whether the run has nothing further to do. Mirrors the
// original engine's is_awaiting_instruction gate: the turn loop stops
// exactly when a new instruction is pending and the operator declined to
// supply one, regardless of which node in the tree triggered it.
func (e *Engine) Done() bool {
	return e.Scheduler.State.AwaitingNewInstruction
}

func (e *Engine) inputs() dctx.Inputs {
	cyclesUsed, total, hasLimit, warned := e.budget.Snapshot()
	return dctx.Inputs{
		PermanentLogs: e.PermanentLog.Strings(),
		Budget: dctx.BudgetSnapshot{
			CyclesUsed: cyclesUsed,
			Total:      total,
			HasLimit:   hasLimit,
			Warning:    warned,
		},
		KnowledgeBase: knowledgeBaseViews(e.KnowledgeBase),
		ExternalFiles: e.ExternalFiles,
	}
}

func knowledgeBaseViews(kb *research.KnowledgeBase) []dctx.KnowledgeEntryView {
	views := make([]dctx.KnowledgeEntryView, 0, len(kb.Entries))
	for _, entry := range kb.Entries {
		views = append(views, dctx.KnowledgeEntryView{
			Title:      entry.Title,
			Timestamp:  entry.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			Source:     entry.Source,
			Tags:       entry.Tags,
			Importance: entry.Importance,
			Confidence: entry.Confidence,
			Content:    entry.Content,
		})
	}
	return views
}

// nodeLogger returns a logger scoped to active's own directory under
// runDir, or nil if tree persistence is disabled. Built fresh per call
// rather than cached, since the active node (and its directory) changes
// turn to turn.
func (e *Engine) nodeLogger(active *research.Node) *research.NodeLogger {
	if e.runDir == "" {
		return nil
	}
	return research.NewNodeLogger(filepath.Join(e.runDir, active.Path))
}

func (e *Engine) checkpointState(phase checkpoint.Phase) *checkpoint.State {
	cyclesUsed, total, hasLimit, warned := e.budget.Snapshot()
	var future []string
	if e.Scheduler.State.Future != nil {
		future = e.Scheduler.State.Future.PathTitles()
	}
	return checkpoint.NewState(e.RunID, phase).
		WithFocus(e.Active().PathTitles(), future, e.Scheduler.State.AwaitingNewInstruction, e.Scheduler.State.CompletionMessage).
		WithBudget(cyclesUsed, total, hasLimit, warned)
}
