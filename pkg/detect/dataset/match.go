package dataset

import (
	"veles-ids/veles/pkg/detect"
)

// Match evaluates a compiled dataset keyword against the selected buffer
// bytes. An empty buffer never matches. Called once per signature
// evaluation from worker goroutines; tctx must be the calling worker's
// own thread context.
func Match(tctx *detect.ThreadCtx, m *MatchContext, data []byte) bool {
	if len(data) == 0 {
		return false
	}

	if m.format.IsJSON() {
		return matchJSON(tctx, m, data)
	}

	switch m.cmd {
	case CmdIsSet:
		present, err := m.set.Lookup(data)
		return err == nil && present

	case CmdIsNotSet:
		// a lookup error counts as absent
		present, err := m.set.Lookup(data)
		return err != nil || !present

	case CmdSet:
		// inserting an already-present key still counts as success
		_, err := m.set.Add(data)
		return err == nil

	case CmdUnset:
		removed, err := m.set.Remove(data)
		return err == nil && removed

	default:
		detect.BugOn(true, "unknown dataset command")
		return false
	}
}

// matchJSON handles the JSON/NDJSON lookup commands. A found element is
// held under its lease only while the enrichment fragment is rendered; the
// lease is released on every branch, including the capacity-skip branch.
func matchJSON(tctx *detect.ThreadCtx, m *MatchContext, data []byte) bool {
	switch m.cmd {
	case CmdIsSet:
		r := m.set.LookupJSON(data)
		if !r.Found {
			return false
		}

		var fragment string
		if len(r.Value) > 0 {
			// 3 extra bytes for the quotes and colon around the key
			if len(r.Value)+len(m.contextKey)+3 < detect.JSONContentItemLen {
				fragment = `"` + m.contextKey + `":` + string(r.Value)
			}
		}
		r.Release()

		if fragment != "" {
			// a full buffer drops the fragment, never the match
			tctx.TryAppendJSON(m.sigID, fragment)
		}
		return true

	case CmdIsNotSet:
		r := m.set.LookupJSON(data)
		if r.Found {
			r.Release()
			return false
		}
		return true

	default:
		detect.BugOn(true, "unknown dataset command for json format")
		return false
	}
}
