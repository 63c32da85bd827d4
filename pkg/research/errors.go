package research

import "errors"

// Sentinel errors surfaced by the research tree and its mutators.
var (
	// ErrProblemNotDefined names the case of a command other than
	// define_problem attempted before the root problem exists. The
	// command pipeline reports that case with its own message and does
	// not return this value.
	ErrProblemNotDefined = errors.New("root problem not yet defined")

	// ErrUnknownChild is returned when a focus transition or queue
	// operation names a child title that does not exist under the
	// given parent.
	ErrUnknownChild = errors.New("unknown child title")

	// ErrDuplicateChild is returned when a subproblem is created with a
	// title already used by a sibling.
	ErrDuplicateChild = errors.New("duplicate child title")

	// ErrDuplicateArtifact is returned when an artifact name collides
	// with an existing artifact on the same node.
	ErrDuplicateArtifact = errors.New("duplicate artifact name")

	// ErrArtifactNotFound is returned when an artifact mutator names a
	// title unknown to the node.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrCriterionNotFound is returned when a criterion mutator names a
	// criterion text unknown to the node.
	ErrCriterionNotFound = errors.New("criterion not found")
)
