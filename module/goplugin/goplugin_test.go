package goplugin

import (
	"context"
	"errors"
	"path/filepath"
	"plugin"
	"testing"

	"github.com/wnxd/hotswap/module"
)

func TestExportName(t *testing.T) {
	tests := map[string]string{
		module.SymInit:       "HotswapInit",
		module.SymPreReload:  "HotswapPreReload",
		module.SymPostReload: "HotswapPostReload",
		"__x":                "X",
	}
	for in, want := range tests {
		if got := ExportName(in); got != want {
			t.Fatalf("ExportName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOpenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.so")
	if _, err := module.Open(context.Background(), path); err == nil {
		t.Fatal("expected error opening missing plugin")
	}
}

type fakePlugin map[string]plugin.Symbol

func (p fakePlugin) Lookup(name string) (plugin.Symbol, error) {
	if sym, ok := p[name]; ok {
		return sym, nil
	}
	return nil, errors.New("symbol " + name + " not found in plugin")
}

func stubOpen(t *testing.T, p fakePlugin) {
	t.Helper()
	prev := openPlugin
	openPlugin = func(path string) (symbolTable, error) { return p, nil }
	t.Cleanup(func() {
		openPlugin = prev
		mu.Lock()
		clear(opened)
		mu.Unlock()
	})
}

func TestLookupAndClose(t *testing.T) {
	updates := 0
	stubOpen(t, fakePlugin{
		"HotswapInit":   func() {},
		"HotswapUpdate": func() { updates++ },
	})
	path := filepath.Join(t.TempDir(), "mod.so")
	unit, err := module.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	table, err := module.Resolve(unit)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	table.Update()
	if updates != 1 || table.PreReload != nil {
		t.Fatalf("updates = %d, table = %+v", updates, table)
	}
	if _, err := unit.Lookup(module.SymPrint); !errors.Is(err, module.ErrSymbolNotFound) {
		t.Fatalf("lookup missing err = %v", err)
	}

	if err := unit.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := unit.Close(); !errors.Is(err, module.ErrUnitClosed) {
		t.Fatalf("second close err = %v", err)
	}
	if _, err := unit.Lookup(module.SymInit); !errors.Is(err, module.ErrUnitClosed) {
		t.Fatalf("lookup after close err = %v", err)
	}
}

func TestOpenSamePathTwice(t *testing.T) {
	stubOpen(t, fakePlugin{})
	dir := t.TempDir()
	path := filepath.Join(dir, "mod.so")
	if _, err := Open(context.Background(), path); err != nil {
		t.Fatalf("first open: %v", err)
	}
	_, err := Open(context.Background(), filepath.Join(dir, ".", "mod.so"))
	if !errors.Is(err, ErrAlreadyLoaded) {
		t.Fatalf("second open err = %v", err)
	}
	if _, err := Open(context.Background(), filepath.Join(dir, "mod2.so")); err != nil {
		t.Fatalf("new path: %v", err)
	}
}
