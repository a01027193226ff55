package dataset

import (
	"os"
	"path/filepath"
	"strings"

	"veles-ids/veles/pkg/config"
	"veles-ids/veles/pkg/detect"
)

// maxPathLen bounds resolved dataset paths.
const maxPathLen = 4096

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// containsTraversal reports whether any element of the path is "..".
func containsTraversal(path string) bool {
	for _, elem := range strings.Split(filepath.ToSlash(path), "/") {
		if elem == ".." {
			return true
		}
	}
	return false
}

// resolveLoadPath resolves a dataset load path. Absolute paths pass
// through. A relative path is tried against the directory of the rule file
// being loaded, then against the engine's signature path resolution; the
// first candidate that exists on disk wins. When neither exists the path
// is returned as given and the registry's load routine deals with the
// missing file. Fails only on path-length overflow.
func resolveLoadPath(e *detect.EngineCtx, load string) (string, error) {
	if filepath.IsAbs(load) {
		return load, nil
	}

	if e.RuleFile != "" {
		candidate := filepath.Join(filepath.Dir(e.RuleFile), load)
		if len(candidate) > maxPathLen {
			return "", pathErrorf("resolved load path too long")
		}
		if pathExists(candidate) {
			return candidate, nil
		}
	}

	full, err := e.CompleteSigPath(load)
	if err == nil {
		if len(full) > maxPathLen {
			return "", pathErrorf("resolved load path too long")
		}
		if pathExists(full) {
			return full, nil
		}
	}

	return load, nil
}

// resolveSavePath resolves a dataset save path under the write policy.
// Rule-declared writes must be enabled; absolute names require the
// explicit absolute-filenames opt-in; traversal is rejected regardless of
// that opt-in. Relative names are joined with the configured data
// directory, so a rule can never write outside it without the operator's
// opt-in.
func resolveSavePath(cfg *config.Config, save string) (string, error) {
	if !cfg.Datasets.AllowWrite() {
		return "", pathErrorf("rules containing save/state datasets have been disabled")
	}

	if filepath.IsAbs(save) && !cfg.Datasets.AllowAbsoluteFilenames() {
		return "", pathErrorf("absolute paths not allowed: %s", save)
	}
	if containsTraversal(save) {
		return "", pathErrorf("directory traversals not allowed: %s", save)
	}

	if filepath.IsAbs(save) {
		return save, nil
	}

	resolved := filepath.Join(cfg.Datasets.DataDir, save)
	if len(resolved) > maxPathLen {
		return "", pathErrorf("resolved save path too long")
	}
	return resolved, nil
}
