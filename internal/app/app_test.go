package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wnxd/hotswap/internal/config"
	"github.com/wnxd/hotswap/internal/demo"
	"github.com/wnxd/hotswap/module"
	"github.com/wnxd/hotswap/module/builtin"
)

var zero int

func testConfig(t *testing.T, modulePath string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Module = modulePath
	cfg.Journal = filepath.Join(t.TempDir(), "events.db")
	return cfg
}

func TestRunDemo(t *testing.T) {
	var out bytes.Buffer
	demo.Register(&out)
	cfg := testConfig(t, "builtin:demo")
	a := New(strings.NewReader("u\nr\nu\nq\n"), &out, io.Discard, cfg)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	for _, s := range []string{"ready", "update #1", "reloaded builtin:demo (generation 2)", "update #2"} {
		if !strings.Contains(text, s) {
			t.Fatalf("output missing %q:\n%s", s, text)
		}
	}

	out.Reset()
	if err := a.History(context.Background(), 10); err != nil {
		t.Fatalf("history: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 || !strings.Contains(lines[0], "quit") || !strings.Contains(lines[2], "load") {
		t.Fatalf("history:\n%s", out.String())
	}
}

func TestRunFirstLoadFailure(t *testing.T) {
	cfg := testConfig(t, "builtin:missing")
	a := New(strings.NewReader(""), io.Discard, io.Discard, cfg)
	err := a.Run(context.Background())
	var fle *FirstLoadError
	if !errors.As(err, &fle) {
		t.Fatalf("err = %v, want FirstLoadError", err)
	}
	var le *module.LoadError
	if !errors.As(err, &le) || le.Path != "builtin:missing" {
		t.Fatalf("err = %v, want wrapped LoadError", err)
	}
}

func TestRunDebugPrintHook(t *testing.T) {
	var out, logs bytes.Buffer
	demo.Register(&out)
	cfg := testConfig(t, "builtin:demo")
	cfg.LogLevel = "debug"
	a := New(strings.NewReader("q\n"), &out, &logs, cfg)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "demo counter at 0") {
		t.Fatalf("print hook not invoked:\n%s", out.String())
	}
	if !strings.Contains(logs.String(), "module loaded") {
		t.Fatalf("logs:\n%s", logs.String())
	}
}

func TestRunJournalsFaults(t *testing.T) {
	builtin.Register("faulty", map[string]module.Symbol{
		module.SymInit:   func() {},
		module.SymUpdate: func() { _ = 1 / zero },
	})
	defer builtin.Unregister("faulty")

	var out bytes.Buffer
	cfg := testConfig(t, builtin.Path("faulty"))
	a := New(strings.NewReader("u\nq\n"), &out, io.Discard, cfg)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "*** arithmetic exception in hotswap_update ***") {
		t.Fatalf("output:\n%s", out.String())
	}

	out.Reset()
	if err := a.History(context.Background(), 10); err != nil {
		t.Fatalf("history: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 || !strings.Contains(lines[1], "fault") || !strings.Contains(lines[1], "[hotswap_update]") {
		t.Fatalf("history:\n%s", out.String())
	}
}
