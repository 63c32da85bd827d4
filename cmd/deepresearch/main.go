// Command deepresearch runs the hierarchical research engine against a
// YAML config file: define a root problem, let the engine loop drive it
// to completion (or until the operator declines to continue), and print
// the final report.
//
// Usage:
//
//	deepresearch run "survey renewable energy LCOE trends" --run-dir ./runs/energy
//	deepresearch resume ./runs/energy
//	deepresearch validate config.yaml
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"github.com/kadirpekel/deepresearch/pkg/command"
	dctx "github.com/kadirpekel/deepresearch/pkg/context"
	"github.com/kadirpekel/deepresearch/pkg/config"
	"github.com/kadirpekel/deepresearch/pkg/engine"
	"github.com/kadirpekel/deepresearch/pkg/llms"
	"github.com/kadirpekel/deepresearch/pkg/logger"
	"github.com/kadirpekel/deepresearch/pkg/observability"
)

// CLI defines the command-line interface.
type CLI struct {
	Run      RunCmd      `cmd:"" help:"Start a new deep research run."`
	Resume   ResumeCmd   `cmd:"" help:"Resume a previous run from its last checkpoint."`
	Validate ValidateCmd `cmd:"" help:"Validate a configuration file."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`

	Config    string `short:"c" help:"Path to config file." type:"path" default:"deepresearch.yaml"`
	LogLevel  string `help:"Log level (debug, info, warn, error). Overrides the config file."`
	LogFormat string `help:"Log format (simple, verbose). Overrides the config file."`
}

// VersionCmd prints the build version.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println("deepresearch dev")
	return nil
}

// RunCmd starts a fresh run against a new root instruction.
type RunCmd struct {
	Instruction string `arg:"" help:"The root research problem to investigate."`
	RunDir      string `name:"run-dir" help:"Directory to persist the research tree and checkpoints into." type:"path"`
}

func (c *RunCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	runDir := c.RunDir
	if runDir == "" {
		runDir = cfg.ResearchRootDir
	}

	e, operatorCleanup, err := buildEngine(cfg, runDir)
	if err != nil {
		return err
	}
	defer operatorCleanup()

	e.Scheduler.PrepareForInstruction(e.Root, dctx.SanitizeInstruction(c.Instruction))

	return runToCompletion(e)
}

// ResumeCmd continues a previously started run from its on-disk tree
// and last checkpoint.
type ResumeCmd struct {
	RunDir string `arg:"" help:"Directory a previous run was persisted into." type:"path"`
}

func (c *ResumeCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	providerCfg, err := providerConfig(cfg)
	if err != nil {
		return err
	}
	client, err := llms.NewClientFromConfig(providerCfg)
	if err != nil {
		return fmt.Errorf("deepresearch: building LLM client: %w", err)
	}

	operator, cleanup := selectOperator()
	defer cleanup()

	obsCfg := &observability.Config{}

	e, err := engine.Resume(context.Background(), engine.Config{
		LLM:             client,
		Parser:          command.NewLineParser(),
		CommandRegistry: registeredCommands(),
		Operator:        operator,
		BudgetTotal:         cfg.Budget.Total,
		BudgetHasLimit:      cfg.Budget.HasLimit,
		HistoryTokenCeiling: cfg.LLM.HistoryTokenCeiling,
		RunDir:          c.RunDir,
		StatusOut:       printStatus,
		Observability:   obsCfg,
	})
	if err != nil {
		return fmt.Errorf("deepresearch: resuming run: %w", err)
	}

	return runToCompletion(e)
}

func runToCompletion(e *engine.Engine) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down...")
		cancel()
	}()

	if err := e.Run(ctx); err != nil {
		return fmt.Errorf("deepresearch: run failed: %w", err)
	}

	fmt.Println()
	fmt.Println(e.FinalReport())
	return nil
}

func buildEngine(cfg *config.Config, runDir string) (*engine.Engine, func(), error) {
	providerCfg, err := providerConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	client, err := llms.NewClientFromConfig(providerCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("deepresearch: building LLM client: %w", err)
	}

	operator, cleanup := selectOperator()

	obsCfg := &observability.Config{}

	e, err := engine.New(engine.Config{
		LLM:             client,
		Parser:          command.NewLineParser(),
		CommandRegistry: registeredCommands(),
		Operator:        operator,
		BudgetTotal:         cfg.Budget.Total,
		BudgetHasLimit:      cfg.Budget.HasLimit,
		HistoryTokenCeiling: cfg.LLM.HistoryTokenCeiling,
		RunDir:          runDir,
		StatusOut:       printStatus,
		Observability:   obsCfg,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("deepresearch: building engine: %w", err)
	}
	return e, cleanup, nil
}

func registeredCommands() *command.Registry {
	reg := command.NewRegistry()
	if err := command.RegisterBuiltins(reg); err != nil {
		// RegisterBuiltins only fails on a duplicate name among the
		// fixed built-in set, which would be a programming error.
		panic(fmt.Sprintf("deepresearch: registering builtin commands: %v", err))
	}
	return reg
}

// selectOperator picks an interactive (TTY) or auto-declining operator
// depending on whether stdin is an attached terminal, and returns a
// cleanup func closing any resources it opened.
func selectOperator() (engine.Operator, func()) {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return engine.NewInteractiveOperator(os.Stdin, os.Stdout), func() {}
	}
	return engine.AutoDeclineOperator{}, func() {}
}

func printStatus(s string) {
	fmt.Fprintln(os.Stdout, s)
}

func providerConfig(cfg *config.Config) (*llms.ProviderConfig, error) {
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("deepresearch: llm.api_key is required (set it in the config file or via ${ENV_VAR} expansion)")
	}
	return &llms.ProviderConfig{
		Type:   cfg.LLM.Provider,
		Model:  cfg.LLM.Model,
		APIKey: cfg.LLM.APIKey,
		Host:   cfg.LLM.BaseURL,
	}, nil
}

// ValidateCmd loads a config file and reports whether it is well-formed,
// without starting a run.
type ValidateCmd struct {
	ConfigPath string `arg:"" name:"config" help:"Configuration file path." type:"path"`
}

func (c *ValidateCmd) Run(cli *CLI) error {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: invalid: %v\n", c.ConfigPath, err)
		return fmt.Errorf("config validation failed")
	}
	fmt.Printf("%s: valid (provider=%s model=%s research_root_dir=%s)\n",
		c.ConfigPath, cfg.LLM.Provider, cfg.LLM.Model, cfg.ResearchRootDir)
	return nil
}

func loadConfig(cli *CLI) (*config.Config, error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, fmt.Errorf("deepresearch: loading config: %w", err)
	}

	level := cli.LogLevel
	if level == "" {
		level = cfg.Log.Level
	}
	format := cli.LogFormat
	if format == "" {
		format = cfg.Log.Format
	}
	parsedLevel, err := logger.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("deepresearch: invalid log level %q: %w", level, err)
	}
	logger.Init(parsedLevel, os.Stderr, format)

	return cfg, nil
}

func main() {
	printBanner()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("deepresearch"),
		kong.Description("Hierarchical deep research engine"),
		kong.UsageOnError(),
	)

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}

func printBanner() {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return
	}
	green := "\033[38;2;16;185;129m"
	reset := "\033[0m"
	fmt.Printf("%sdeepresearch%s — hierarchical deep research engine\n\n", green, reset)
}

