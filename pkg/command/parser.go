package command

import (
	"fmt"
	"strings"
)

// Parser is the external, pluggable command grammar: it turns raw agent
// text into an ordered list of invocations and can render a human
// readable parse-error report. The Command Pipeline only consumes this
// interface; the grammar itself is out of scope for this package.
type Parser interface {
	Parse(text string) []Invocation
	GenerateErrorReport(invocations []Invocation) string
}

// LineParser is a minimal reference implementation: each command starts
// with a line of the form "@command_name", followed by "key: value"
// argument lines until a blank line or the next "@" line. It exists so
// the pipeline can be exercised end to end; production deployments are
// expected to supply a richer grammar.
type LineParser struct{}

// NewLineParser returns the reference line-oriented parser.
func NewLineParser() *LineParser { return &LineParser{} }

func (p *LineParser) Parse(text string) []Invocation {
	lines := strings.Split(text, "\n")
	var invocations []Invocation
	var current *Invocation

	flush := func() {
		if current != nil {
			invocations = append(invocations, *current)
			current = nil
		}
	}

	for lineNo, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "@"):
			flush()
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, "@"))
			current = &Invocation{Name: name, Args: map[string]string{}, SourceLine: lineNo + 1}
		case trimmed == "":
			flush()
		case current != nil:
			key, value, ok := strings.Cut(trimmed, ":")
			if !ok {
				current.Errors = append(current.Errors, ParseError{
					Line:    lineNo + 1,
					Message: fmt.Sprintf("malformed argument line %q, expected \"key: value\"", trimmed),
				})
				continue
			}
			current.Args[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}
	flush()
	return invocations
}

func (p *LineParser) GenerateErrorReport(invocations []Invocation) string {
	var b strings.Builder
	b.WriteString("### Errors report:\n")
	any := false
	for _, inv := range invocations {
		for _, e := range inv.Errors {
			any = true
			fmt.Fprintf(&b, "- line %d: %s\n", e.Line, e.Message)
		}
	}
	if !any {
		return ""
	}
	return b.String()
}
