package detect

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"veles-ids/veles/pkg/config"
	"veles-ids/veles/pkg/datasets"
)

// EngineCtx carries the state available while signatures are being
// compiled: the configuration, the shared dataset registry, and the path
// of the rule file currently loading. It is used single-threaded during
// setup.
type EngineCtx struct {
	// RuleFile is the path of the rule file currently being loaded.
	// Relative dataset load paths are resolved against its directory.
	RuleFile string

	// Config is the engine configuration.
	Config *config.Config

	// Registry is the shared named-dataset registry.
	Registry *datasets.Registry

	// Logger is the setup-time logger.
	Logger *slog.Logger
}

// NewEngineCtx creates an engine context for signature compilation.
func NewEngineCtx(cfg *config.Config, registry *datasets.Registry) *EngineCtx {
	return &EngineCtx{
		Config:   cfg,
		Registry: registry,
		Logger:   slog.Default().With("component", "detect"),
	}
}

// CompleteSigPath resolves a relative signature-data path against the
// configured rule directories. Absolute paths pass through unchanged; with
// no rule directories configured the name is returned as given.
func (e *EngineCtx) CompleteSigPath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty path")
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	if len(e.Config.RuleDirs) == 0 {
		return name, nil
	}
	return filepath.Join(e.Config.RuleDirs[0], name), nil
}
