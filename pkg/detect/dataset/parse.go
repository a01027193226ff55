package dataset

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"veles-ids/veles/pkg/datasets"
)

// maxKeyLen bounds the value_key, array_key and context_key option values.
const maxKeyLen = 64

// ruleOpts is the parsed, not yet cross-validated form of a dataset
// keyword option string.
type ruleOpts struct {
	cmd        string
	name       string
	typ        datasets.Type
	load       string
	save       string
	state      bool
	format     datasets.Format
	valueKey   string
	arrayKey   string
	contextKey string
	memcap     uint64
	hashsize   uint32
	removeKey  bool
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t'
}

func trimLeadingBlanks(s string) string {
	return strings.TrimLeft(s, " \t")
}

// parseRuleOpts tokenizes and validates a raw option string. The first two
// non-empty tokens are the command and the dataset name and must not carry
// values; the rest are the bare remove_key flag or "key value" pairs split
// on the first blank. Any grammar violation fails hard; only memcap and
// hashsize parse failures are recovered by falling back to the default.
func parseRuleOpts(raw string, logger *slog.Logger) (*ruleOpts, error) {
	r := &ruleOpts{}

	var cmdSet, nameSet, loadSet, saveSet, stateSet, formatSet bool

	for _, token := range strings.Split(raw, ",") {
		token = trimLeadingBlanks(token)

		key := token
		var val string
		hasVal := false
		if idx := strings.IndexByte(token, ' '); idx >= 0 {
			key = token[:idx]
			val = trimLeadingBlanks(token[idx+1:])
			hasVal = true
		}

		if key == "" {
			continue
		}

		switch {
		case !cmdSet:
			if hasVal && val != "" {
				return nil, grammarErrorf("command %q must not carry a value", key)
			}
			r.cmd = key
			cmdSet = true
			continue
		case !nameSet:
			if hasVal && val != "" {
				return nil, grammarErrorf("dataset name %q must not carry a value", key)
			}
			r.name = key
			nameSet = true
			continue
		}

		if !hasVal {
			// remove_key is the only free-position option without a value
			if key != "remove_key" {
				return nil, grammarErrorf("option %q has no value", key)
			}
			r.removeKey = true
			continue
		}

		switch key {
		case "type":
			typ, err := datasets.ParseType(val)
			if err != nil {
				return nil, grammarErrorf("bad type %q", val)
			}
			r.typ = typ

		case "save":
			if saveSet {
				return nil, grammarErrorf("'save' can only appear once")
			}
			r.save = val
			saveSet = true

		case "load":
			if loadSet {
				return nil, grammarErrorf("'load' can only appear once")
			}
			r.load = val
			loadSet = true

		case "state":
			if stateSet {
				return nil, grammarErrorf("'state' can only appear once")
			}
			r.load = val
			r.save = val
			r.state = true
			stateSet = true

		case "format":
			if formatSet {
				return nil, grammarErrorf("'format' can only appear once")
			}
			format, err := datasets.ParseFormat(val)
			if err != nil {
				return nil, grammarErrorf("unknown format %q", val)
			}
			r.format = format
			formatSet = true

		case "value_key":
			if len(val) > maxKeyLen {
				return nil, grammarErrorf("'value_key' value too long (limit is %d)", maxKeyLen)
			}
			r.valueKey = val

		case "array_key":
			if len(val) > maxKeyLen {
				return nil, grammarErrorf("'array_key' value too long (limit is %d)", maxKeyLen)
			}
			r.arrayKey = val

		case "context_key":
			for i := 0; i < len(val); i++ {
				c := val[i]
				if !isAlnum(c) && c != '_' {
					return nil, grammarErrorf(
						"context_key can only contain alphanumeric characters and underscores")
				}
			}
			if len(val) > maxKeyLen {
				return nil, grammarErrorf("'context_key' value too long (limit is %d)", maxKeyLen)
			}
			r.contextKey = val

		case "memcap":
			n, err := humanize.ParseBytes(val)
			if err != nil {
				logger.Warn("invalid value for memcap, resetting to default", "value", val)
				n = 0
			}
			r.memcap = n

		case "hashsize":
			n, err := humanize.ParseBytes(val)
			if err != nil || n > math.MaxUint32 {
				logger.Warn("invalid value for hashsize, resetting to default", "value", val)
				n = 0
			}
			r.hashsize = uint32(n)

		default:
			return nil, grammarErrorf("unknown option %q", key)
		}
	}

	if !cmdSet {
		return nil, grammarErrorf("no command given")
	}
	if !nameSet {
		return nil, grammarErrorf("no dataset name given")
	}
	if (loadSet || saveSet) && stateSet {
		return nil, grammarErrorf("'state' can not be mixed with 'load' and 'save'")
	}

	// Trim trailing blanks from the name; any blank remaining inside it is
	// a hard failure.
	for len(r.name) > 0 && isBlank(r.name[len(r.name)-1]) {
		r.name = r.name[:len(r.name)-1]
	}
	if r.name == "" {
		return nil, grammarErrorf("empty dataset name")
	}
	for i := 0; i < len(r.name); i++ {
		if isBlank(r.name[i]) {
			return nil, grammarErrorf("spaces not allowed in dataset names")
		}
	}
	if len(r.name) > datasets.MaxNameLen {
		return nil, grammarErrorf("dataset name longer than %d characters", datasets.MaxNameLen)
	}

	return r, nil
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// String re-serializes the options in canonical order. Parsing the result
// yields an equivalent option set regardless of the original option order.
func (r *ruleOpts) String() string {
	var sb strings.Builder
	sb.WriteString(r.cmd)
	sb.WriteString(", ")
	sb.WriteString(r.name)

	if r.typ != datasets.TypeUnset {
		fmt.Fprintf(&sb, ", type %s", r.typ)
	}
	if r.state {
		fmt.Fprintf(&sb, ", state %s", r.save)
	} else {
		if r.load != "" {
			fmt.Fprintf(&sb, ", load %s", r.load)
		}
		if r.save != "" {
			fmt.Fprintf(&sb, ", save %s", r.save)
		}
	}
	if r.format != datasets.FormatCSV {
		fmt.Fprintf(&sb, ", format %s", r.format)
	}
	if r.valueKey != "" {
		fmt.Fprintf(&sb, ", value_key %s", r.valueKey)
	}
	if r.arrayKey != "" {
		fmt.Fprintf(&sb, ", array_key %s", r.arrayKey)
	}
	if r.contextKey != "" {
		fmt.Fprintf(&sb, ", context_key %s", r.contextKey)
	}
	if r.memcap != 0 {
		fmt.Fprintf(&sb, ", memcap %d", r.memcap)
	}
	if r.hashsize != 0 {
		fmt.Fprintf(&sb, ", hashsize %d", r.hashsize)
	}
	if r.removeKey {
		sb.WriteString(", remove_key")
	}
	return sb.String()
}
