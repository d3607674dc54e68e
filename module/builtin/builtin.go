// Package builtin serves modules whose entry points are compiled into the
// host binary. Paths take the form "builtin:<name>".
package builtin

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/wnxd/hotswap/module"
)

const Scheme = "builtin"

var (
	mu      sync.RWMutex
	modules = make(map[string]map[string]module.Symbol)
)

type unit struct {
	name    string
	symbols map[string]module.Symbol
	closed  atomic.Bool
}

func init() {
	module.Register(Scheme, Open)
}

// Register publishes symbols under name, replacing any previous registration.
// Units opened earlier keep the symbols they were opened with.
func Register(name string, symbols map[string]module.Symbol) {
	mu.Lock()
	defer mu.Unlock()
	modules[name] = maps.Clone(symbols)
}

func Unregister(name string) {
	mu.Lock()
	defer mu.Unlock()
	delete(modules, name)
}

func Path(name string) string {
	return Scheme + ":" + name
}

func Open(ctx context.Context, name string) (module.Unit, error) {
	mu.RLock()
	symbols, ok := modules[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("builtin module %q not registered", name)
	}
	return &unit{name: name, symbols: symbols}, nil
}

func (u *unit) Name() string {
	return Path(u.name)
}

func (u *unit) Close() error {
	if !u.closed.CompareAndSwap(false, true) {
		return module.ErrUnitClosed
	}
	return nil
}

func (u *unit) Lookup(name string) (module.Symbol, error) {
	if u.closed.Load() {
		return nil, module.ErrUnitClosed
	}
	sym, ok := u.symbols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", module.ErrSymbolNotFound, name)
	}
	return sym, nil
}

func (u *unit) Symbols(yield func(string) bool) {
	for _, name := range slices.Sorted(maps.Keys(u.symbols)) {
		if !yield(name) {
			return
		}
	}
}
