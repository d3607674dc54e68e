// Package goplugin loads modules built with -buildmode=plugin. Entry points
// are exported under their camel-cased ABI names (hotswap_init is
// HotswapInit).
//
// The Go runtime never unmaps plugin code and hands back the cached plugin
// when a path is opened twice, so each build must be written to a new path.
// Opening a path a second time fails with ErrAlreadyLoaded.
package goplugin

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"plugin"
	"strings"
	"sync"

	"github.com/wnxd/hotswap/module"
)

const Scheme = "plugin"

var ErrAlreadyLoaded = errors.New("plugin already loaded, rebuild to a new path")

type symbolTable interface {
	Lookup(name string) (plugin.Symbol, error)
}

type unit struct {
	mu   sync.Mutex
	path string
	p    symbolTable
}

var (
	mu     sync.Mutex
	opened = make(map[string]struct{})

	openPlugin = func(path string) (symbolTable, error) {
		p, err := plugin.Open(path)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
)

func init() {
	module.Register(Scheme, Open, ".so")
}

func Open(ctx context.Context, path string) (module.Unit, error) {
	key := canonical(path)
	mu.Lock()
	defer mu.Unlock()
	if _, ok := opened[key]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyLoaded, path)
	}
	p, err := openPlugin(path)
	if err != nil {
		return nil, err
	}
	opened[key] = struct{}{}
	return &unit{path: path, p: p}, nil
}

func canonical(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	return path
}

func ExportName(name string) string {
	var b strings.Builder
	for part := range strings.SplitSeq(name, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

func (u *unit) Name() string {
	return u.path
}

// Close drops the plugin. Its path stays marked as loaded.
func (u *unit) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.p == nil {
		return module.ErrUnitClosed
	}
	u.p = nil
	return nil
}

func (u *unit) Lookup(name string) (module.Symbol, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.p == nil {
		return nil, module.ErrUnitClosed
	}
	sym, err := u.p.Lookup(ExportName(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", module.ErrSymbolNotFound, name, err)
	}
	return sym, nil
}
