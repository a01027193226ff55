package datasets

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"veles-ids/veles/pkg/config"
)

// Registry is the process-wide store of named datasets. It is created at
// configuration-load time, injected into the detection engine, and torn
// down at shutdown after a final SaveAll. All methods are safe for
// concurrent use.
type Registry struct {
	defaultMemcap   uint64
	defaultHashsize uint32

	logger  *slog.Logger
	metrics *Metrics

	mu   sync.RWMutex
	sets map[string]*Dataset
}

// NewRegistry creates an empty registry with defaults taken from the
// configuration.
func NewRegistry(cfg *config.Config) *Registry {
	return &Registry{
		defaultMemcap:   cfg.Datasets.DefaultMemcapBytes(),
		defaultHashsize: cfg.Datasets.DefaultHashsizeValue(),
		logger:          slog.Default().With("component", "datasets.registry"),
		sets:            make(map[string]*Dataset),
	}
}

// WithMetrics attaches Prometheus collectors to the registry. Datasets
// created afterwards record their operations; call before any GetOrCreate.
func (r *Registry) WithMetrics(m *Metrics) *Registry {
	r.metrics = m
	return r
}

func validateName(name string) error {
	if name == "" {
		return errors.New("dataset name is empty")
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("dataset name longer than %d characters", MaxNameLen)
	}
	if strings.ContainsAny(name, " \t") {
		return errors.New("dataset name contains whitespace")
	}
	return nil
}

// GetOrCreate returns the dataset registered under opts.Name, creating and
// loading it on first reference. A second reference with a different type
// or format fails; so does a first reference without a type.
func (r *Registry) GetOrCreate(opts Options) (*Dataset, error) {
	if err := validateName(opts.Name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sets[opts.Name]; ok {
		if opts.Type != TypeUnset && opts.Type != existing.typ {
			return nil, fmt.Errorf("dataset %q already registered with type %s, requested %s",
				opts.Name, existing.typ, opts.Type)
		}
		if opts.Format != existing.format {
			return nil, fmt.Errorf("dataset %q already registered with format %s, requested %s",
				opts.Name, existing.format, opts.Format)
		}
		return existing, nil
	}

	if opts.Type == TypeUnset {
		return nil, fmt.Errorf("dataset %q not yet registered and no type given", opts.Name)
	}
	if opts.Format.IsJSON() && opts.ValueKey == "" {
		return nil, fmt.Errorf("dataset %q: json formats need a value_key", opts.Name)
	}

	memcap := opts.Memcap
	if memcap == 0 {
		memcap = r.defaultMemcap
	}
	hashsize := opts.Hashsize
	if hashsize == 0 {
		hashsize = r.defaultHashsize
	}

	ds := &Dataset{
		id:        uuid.New(),
		name:      opts.Name,
		typ:       opts.Type,
		format:    opts.Format,
		loadPath:  opts.LoadPath,
		savePath:  opts.SavePath,
		memcap:    memcap,
		hashsize:  hashsize,
		valueKey:  opts.ValueKey,
		arrayKey:  opts.ArrayKey,
		removeKey: opts.RemoveKey,
		logger:    r.logger,
		metrics:   r.metrics,
		elems:     make(map[string]*element, hashsize),
	}

	if err := ds.load(); err != nil {
		return nil, fmt.Errorf("failed to load dataset %q: %w", opts.Name, err)
	}

	r.sets[opts.Name] = ds
	return ds, nil
}

// Get returns the dataset registered under name, if any.
func (r *Registry) Get(name string) (*Dataset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ds, ok := r.sets[name]
	return ds, ok
}

// All returns a snapshot of all registered datasets.
func (r *Registry) All() []*Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Dataset, 0, len(r.sets))
	for _, ds := range r.sets {
		out = append(out, ds)
	}
	return out
}

// SaveAll persists every dataset that carries a save path. All datasets
// are attempted; the first error is returned.
func (r *Registry) SaveAll() error {
	var firstErr error
	for _, ds := range r.All() {
		if err := ds.Save(); err != nil {
			r.logger.Error("dataset save failed", "dataset", ds.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
