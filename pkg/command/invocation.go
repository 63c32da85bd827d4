// Package command implements the Command Pipeline: parsing agent output
// into invocations, validating batch ordering, executing each against a
// Command Context, and reporting status back to the active node.
package command

// ParseError is one error attached to a single invocation by the
// (external, pluggable) command parser.
type ParseError struct {
	Line    int
	Message string
}

// Invocation is one parsed command call: a name, its arguments, any
// parse-level errors, and the source line it came from. The must-be-last
// property is NOT carried here — it is an attribute of the resolved
// command definition, looked up from the registry at validation time.
type Invocation struct {
	Name       string
	Args       map[string]string
	Errors     []ParseError
	SourceLine int
}

// HasParseErrors reports whether this invocation carries any parse-level
// errors (such invocations are always skipped, never executed).
func (i Invocation) HasParseErrors() bool {
	return len(i.Errors) > 0
}
