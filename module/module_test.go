package module

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type mapUnit map[string]Symbol

func (u mapUnit) Name() string { return "map" }
func (u mapUnit) Close() error { return nil }

func (u mapUnit) Lookup(name string) (Symbol, error) {
	if sym, ok := u[name]; ok {
		return sym, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, name)
}

func TestRegisterAndOpen(t *testing.T) {
	var opened string
	open := func(ctx context.Context, path string) (Unit, error) {
		opened = path
		return mapUnit{}, nil
	}
	if !Register("test-scheme", open, ".testext") {
		t.Fatal("register failed")
	}
	if Register("test-scheme", open) {
		t.Fatal("duplicate register succeeded")
	}

	tests := map[string]string{
		"test-scheme:thing": "thing",
		"dir/file.testext":  "dir/file.testext",
		"test-scheme:a:b:c": "a:b:c",
	}
	for path, want := range tests {
		if _, err := Open(context.Background(), path); err != nil {
			t.Fatalf("open %q: %v", path, err)
		}
		if opened != want {
			t.Fatalf("opener got %q, want %q", opened, want)
		}
	}
	if _, err := Open(context.Background(), "file.unknown"); !errors.Is(err, ErrLoaderNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestEntryPoints(t *testing.T) {
	eps := EntryPoints()
	if len(eps) != 6 {
		t.Fatalf("len = %d", len(eps))
	}
	required := map[string]bool{}
	for _, ep := range eps {
		required[ep.Name] = ep.Required
	}
	if !required[SymInit] || !required[SymUpdate] || required[SymPreReload] || required[SymContinue] {
		t.Fatalf("required flags = %v", required)
	}
}

func TestResolve(t *testing.T) {
	var updates int
	unit := mapUnit{
		SymInit:     func() {},
		SymUpdate:   func() { updates++ },
		SymContinue: func(c byte) bool { return c == 'y' },
	}
	table, err := Resolve(unit)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !table.Bound() || table.Path != "map" || table.PreReload != nil {
		t.Fatalf("table = %+v", table)
	}
	table.Update()
	if updates != 1 || !table.Continue('y') {
		t.Fatal("bound functions not callable")
	}
}

type namedUpdate func()

func TestResolveConvertsNamedFuncTypes(t *testing.T) {
	unit := mapUnit{
		SymInit:   namedUpdate(func() {}),
		SymUpdate: namedUpdate(func() {}),
	}
	if _, err := Resolve(unit); err != nil {
		t.Fatalf("resolve: %v", err)
	}
}

func TestResolveFailures(t *testing.T) {
	tests := []struct {
		name    string
		unit    mapUnit
		missing []string
		target  error
	}{
		{"no required", mapUnit{}, []string{SymInit, SymUpdate}, ErrSymbolNotFound},
		{"wrong optional signature", mapUnit{
			SymInit:      func() {},
			SymUpdate:    func() {},
			SymPreReload: func() int { return 0 },
		}, []string{SymPreReload}, ErrSymbolMismatch},
		{"nil func", mapUnit{
			SymInit:   (func())(nil),
			SymUpdate: func() {},
		}, []string{SymInit}, ErrSymbolNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.unit)
			var sme *SymbolMissingError
			if !errors.As(err, &sme) {
				t.Fatalf("err = %v", err)
			}
			if fmt.Sprint(sme.Names) != fmt.Sprint(tt.missing) {
				t.Fatalf("missing = %v, want %v", sme.Names, tt.missing)
			}
			if !errors.Is(err, tt.target) {
				t.Fatalf("err = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestAbort(t *testing.T) {
	defer func() {
		ar, ok := recover().(*AbortRequest)
		if !ok || ar.Reason != "stop" {
			t.Fatalf("recovered %v", ar)
		}
	}()
	Abort("stop")
}
