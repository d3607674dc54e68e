package registry

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"slices"
	"sync"

	"github.com/wnxd/hotswap/internal/ctxlog"
	"github.com/wnxd/hotswap/module"
)

type Registry struct {
	mu         sync.Mutex
	open       module.Opener
	unit       module.Unit
	table      module.Table
	generation uint64
}

type Option func(*Registry)

// WithOpener replaces module.Open as the loader entry.
func WithOpener(open module.Opener) Option {
	return func(r *Registry) {
		r.open = open
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{open: module.Open}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load opens path and resolves a fresh table. The previous unit is closed and
// replaced only when resolution succeeds; otherwise it stays bound.
func (r *Registry) Load(ctx context.Context, path string) (module.Table, error) {
	logger := ctxlog.FromContext(ctx).With("path", path)
	unit, err := r.open(ctx, path)
	if err != nil {
		logger.Debug("open module failed", "error", err)
		return module.Table{}, &module.LoadError{Path: path, Err: err}
	}
	table, err := module.Resolve(unit)
	if err != nil {
		if cerr := unit.Close(); cerr != nil {
			logger.Warn("close rejected module failed", "error", cerr)
		}
		return module.Table{}, &module.LoadError{Path: path, Err: err}
	}

	r.mu.Lock()
	old := r.unit
	r.generation++
	table.Path = path
	table.Generation = r.generation
	r.unit, r.table = unit, table
	r.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			logger.Warn("close previous module failed", "error", err)
		}
	}
	if si, ok := unit.(module.SymbolIter); ok && logger.Enabled(ctx, slog.LevelDebug) {
		logger.Debug("module exports", "symbols", slices.Collect(iter.Seq[string](si.Symbols)))
	}
	logger.Debug("module bound", "generation", table.Generation)
	return table, nil
}

func (r *Registry) Unload() error {
	r.mu.Lock()
	unit := r.unit
	r.unit, r.table = nil, module.Table{}
	r.mu.Unlock()
	if unit == nil {
		return nil
	}
	err := unit.Close()
	if errors.Is(err, module.ErrUnitClosed) {
		err = nil
	}
	return err
}

func (r *Registry) Table() module.Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table
}
