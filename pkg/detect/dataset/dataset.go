package dataset

import "veles-ids/veles/pkg/datasets"

// Command is the dataset operation a rule performs at match time.
type Command uint8

const (
	// CmdSet inserts the buffer bytes into the set; the rule matches when
	// the insert succeeds or the key was already present.
	CmdSet Command = iota
	// CmdUnset removes the buffer bytes from the set; the rule matches
	// when a key was removed.
	CmdUnset
	// CmdIsNotSet matches when the buffer bytes are not in the set.
	CmdIsNotSet
	// CmdIsSet matches when the buffer bytes are in the set.
	CmdIsSet
)

// String returns the rule-text name of the command.
func (c Command) String() string {
	switch c {
	case CmdSet:
		return "set"
	case CmdUnset:
		return "unset"
	case CmdIsNotSet:
		return "isnotset"
	case CmdIsSet:
		return "isset"
	default:
		return "unknown"
	}
}

// MatchContext is the compiled form of a dataset keyword, attached to a
// signature's match list at setup and immutable afterwards. It holds a
// shared handle to a registry-owned set; the set's lifetime is managed by
// the registry, not by the context.
type MatchContext struct {
	set        *datasets.Dataset
	cmd        Command
	format     datasets.Format
	contextKey string
	sigID      uint32
}

// Keyword implements detect.SigMatch.
func (m *MatchContext) Keyword() string { return "dataset" }

// Command returns the compiled dataset command.
func (m *MatchContext) Command() Command { return m.cmd }

// Set returns the shared dataset handle.
func (m *MatchContext) Set() *datasets.Dataset { return m.set }
