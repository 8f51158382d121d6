package scan

import "github.com/tagcat/tagcat/internal/types"

// EventKind discriminates the events produced by a streaming scan.
type EventKind string

const (
	// EventKindStart opens the stream for one root.
	EventKindStart EventKind = "start"
	// EventKindFile carries one candidate file in traversal order.
	EventKindFile EventKind = "file"
	// EventKindWarning reports a skipped entry without stopping the scan.
	EventKindWarning EventKind = "warning"
	// EventKindDone closes the stream after a complete scan.
	EventKindDone EventKind = "done"
)

// Event is one element of the lazy scan sequence. Exactly one payload field is
// populated according to Kind.
type Event struct {
	Kind    EventKind
	Path    string
	File    *types.CandidateFile
	Warning *types.Warning
}
