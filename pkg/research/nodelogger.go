package research

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// NodeLogger writes the raw LLM request/response text for a node's turns
// to logs_and_debug/, so a request that produced a surprising or buggy
// turn can be inspected after the fact (supplemented feature: spec.md's
// distillation omits this, but the original implementation keeps it).
type NodeLogger struct {
	dir string
}

// NewNodeLogger returns a logger writing under dir/logs_and_debug.
func NewNodeLogger(dir string) *NodeLogger {
	return &NodeLogger{dir: filepath.Join(dir, "logs_and_debug")}
}

// LogRequest writes the static interface text plus the rendered history
// handed to the model.
func (l *NodeLogger) LogRequest(at time.Time, text string) error {
	return l.write(at, "Request", text)
}

// LogResponse writes the model's raw response text (before command
// execution).
func (l *NodeLogger) LogResponse(at time.Time, text string) error {
	return l.write(at, "Response", text)
}

func (l *NodeLogger) write(at time.Time, kind, text string) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("nodelogger: creating directory: %w", err)
	}
	name := fmt.Sprintf("%s_LLM_%s.md", at.UTC().Format("20060102T150405.000Z"), kind)
	path := filepath.Join(l.dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("nodelogger: writing %s: %w", path, err)
	}
	return nil
}
