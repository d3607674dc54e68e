package builtin

import (
	"context"
	"errors"
	"testing"

	"github.com/wnxd/hotswap/module"
)

func TestOpenThroughModule(t *testing.T) {
	Register("counter", map[string]module.Symbol{
		module.SymInit:   func() {},
		module.SymUpdate: func() {},
	})
	defer Unregister("counter")

	unit, err := module.Open(context.Background(), "builtin:counter")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if unit.Name() != "builtin:counter" {
		t.Fatalf("name = %q", unit.Name())
	}
	var names []string
	unit.(module.SymbolIter).Symbols(func(name string) bool {
		names = append(names, name)
		return true
	})
	if len(names) != 2 || names[0] != module.SymInit {
		t.Fatalf("symbols = %v", names)
	}
	if _, err := unit.Lookup(module.SymContinue); !errors.Is(err, module.ErrSymbolNotFound) {
		t.Fatalf("lookup err = %v", err)
	}
	if err := unit.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := unit.Lookup(module.SymInit); !errors.Is(err, module.ErrUnitClosed) {
		t.Fatalf("lookup after close err = %v", err)
	}
	if err := unit.Close(); !errors.Is(err, module.ErrUnitClosed) {
		t.Fatalf("second close err = %v", err)
	}
}

func TestOpenUnknown(t *testing.T) {
	if _, err := Open(context.Background(), "nope"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := module.Open(context.Background(), "nowhere:thing"); !errors.Is(err, module.ErrLoaderNotFound) {
		t.Fatalf("err = %v, want ErrLoaderNotFound", err)
	}
}
