// Package cliparse tokenizes a CLI input line, walks a clitree.Tree,
// resolves collation ambiguity, and captures parameters.
package cliparse

import (
	"github.com/routerd/routerd/internal/clitree"
	"github.com/routerd/routerd/internal/value"
)

// Status is the outcome kind of a parse invocation.
type Status int

const (
	Complete Status = iota
	Incomplete
	Ambiguous
	Unrecognized
)

func (s Status) String() string {
	switch s {
	case Complete:
		return "complete"
	case Incomplete:
		return "incomplete"
	case Ambiguous:
		return "ambiguous"
	case Unrecognized:
		return "unrecognized"
	default:
		return "unknown"
	}
}

// Result is returned by both Parse and ParseExecute.
type Result struct {
	Status Status

	// Pos is the failure anchor byte offset, valid when Status == Unrecognized.
	Pos int

	// Candidates is the current candidate set left behind for completion,
	// valid for every status.
	Candidates []*clitree.Node

	// Executable is the chosen terminal node, set only when Status ==
	// Complete and only by ParseExecute (Parse never captures parameters or
	// records the executable node).
	Executable *clitree.Node

	// Params holds captured parameters, populated only by ParseExecute.
	Params map[string]value.Value
}
