package dataset

import (
	"veles-ids/veles/pkg/datasets"
	"veles-ids/veles/pkg/detect"
)

// Setup compiles a dataset keyword for a signature. It parses the raw
// option string, cross-validates options against the command and format,
// resolves load/save paths under the configured security policy, obtains
// the shared set handle from the registry, and attaches an immutable
// MatchContext to the signature at the active sticky buffer position.
//
// Any failure rejects the signature without attaching anything; the error
// kind distinguishes grammar, path-security and binding failures so the
// caller can keep loading the remaining signatures.
func Setup(e *detect.EngineCtx, s *detect.Signature, rawstr string) error {
	list := s.ActiveBufferList()
	if list == detect.ListNotSet {
		return grammarErrorf("datasets are only supported for sticky buffers")
	}

	opts, err := parseRuleOpts(rawstr, e.Logger)
	if err != nil {
		return err
	}

	var cmd Command
	switch opts.cmd {
	case "isset":
		cmd = CmdIsSet
	case "isnotset":
		cmd = CmdIsNotSet
	case "set":
		if opts.format.IsJSON() {
			return grammarErrorf("json format is not supported for 'set' command")
		}
		cmd = CmdSet
	case "unset":
		if opts.format.IsJSON() {
			return grammarErrorf("json format is not supported for 'unset' command")
		}
		cmd = CmdUnset
	default:
		return grammarErrorf("dataset action %q is not supported", opts.cmd)
	}

	if opts.format.IsJSON() {
		if opts.save != "" {
			return grammarErrorf("json format is not supported with 'save' or 'state' option")
		}
		if opts.contextKey == "" {
			return grammarErrorf("json format needs a 'context_key' parameter")
		}
		if opts.valueKey == "" {
			return grammarErrorf("json format needs a 'value_key' parameter")
		}
	}

	// Exactly one path resolution branch applies: just 'load' resolves
	// against the rule file's directory, just 'save' against the data
	// directory, and 'state' (save == load) resolves as save and mirrors
	// the result into load.
	switch {
	case opts.save == "" && opts.load != "":
		load, err := resolveLoadPath(e, opts.load)
		if err != nil {
			return err
		}
		opts.load = load
	case opts.save != "" && opts.load == "":
		save, err := resolveSavePath(e.Config, opts.save)
		if err != nil {
			return err
		}
		opts.save = save
	case opts.save != "" && opts.load != "" && opts.save == opts.load:
		save, err := resolveSavePath(e.Config, opts.save)
		if err != nil {
			return err
		}
		opts.save = save
		opts.load = save
	}

	regOpts := datasets.Options{
		Name:      opts.name,
		Type:      opts.typ,
		Format:    opts.format,
		LoadPath:  opts.load,
		SavePath:  opts.save,
		Memcap:    opts.memcap,
		Hashsize:  opts.hashsize,
		ValueKey:  opts.valueKey,
		RemoveKey: opts.removeKey,
	}
	if opts.format == datasets.FormatJSON {
		regOpts.ArrayKey = opts.arrayKey
	}

	set, err := e.Registry.GetOrCreate(regOpts)
	if err != nil {
		return bindingErrorf(err, "failed to set up dataset %q", opts.name)
	}

	mc := &MatchContext{
		set:    set,
		cmd:    cmd,
		format: opts.format,
		sigID:  s.ID,
	}
	if opts.format.IsJSON() {
		mc.contextKey = opts.contextKey
	}

	s.AppendMatch(list, mc)
	return nil
}
