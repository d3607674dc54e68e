package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	var out bytes.Buffer
	opts, exit, err := Parse([]string{"-log-level", "DEBUG", "-recompile", "make mod", "game.lua"}, &out)
	if err != nil || exit {
		t.Fatalf("parse: exit=%v err=%v", exit, err)
	}
	cfg := opts.Config
	if cfg.Module != "game.lua" || cfg.LogLevel != "debug" || cfg.LogFormat != "text" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !slices.Equal(cfg.Recompile, []string{"make", "mod"}) {
		t.Fatalf("recompile = %v", cfg.Recompile)
	}
}

func TestParsePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotswap.hcl")
	os.WriteFile(path, []byte(`
module    = "file.lua"
log_level = "warn"
journal   = "file.db"
`), 0o644)
	t.Setenv("HOTSWAP_LOG_LEVEL", "error")
	t.Setenv("HOTSWAP_JOURNAL", "env.db")

	opts, _, err := Parse([]string{"-config", path, "-journal", "flag.db"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg := opts.Config
	if cfg.Module != "file.lua" || cfg.LogLevel != "error" || cfg.Journal != "flag.db" {
		t.Fatalf("precedence broken: %+v", cfg)
	}
}

func TestParseUsageErrors(t *testing.T) {
	tests := [][]string{
		{"-log-format", "xml", "m.lua"},
		{"-log-level", "loud", "m.lua"},
		{"-unknown-flag"},
		{"-config", "/does/not/exist.hcl", "m.lua"},
		{"-history", "5"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, _, err := Parse(args, &bytes.Buffer{})
			var ee *ExitError
			if !errors.As(err, &ee) || ee.Code != ExitCode_Usage {
				t.Fatalf("err = %v, want usage ExitError", err)
			}
		})
	}
}

func TestParseHelp(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {}} {
		var out bytes.Buffer
		opts, exit, err := Parse(args, &out)
		if err != nil || !exit || opts != nil {
			t.Fatalf("Parse(%v) = %v, %v, %v", args, opts, exit, err)
		}
		if !strings.Contains(out.String(), "Usage:") {
			t.Fatalf("usage not printed: %q", out.String())
		}
	}
}

func TestParseHistory(t *testing.T) {
	opts, exit, err := Parse([]string{"-journal", "events.db", "-history", "3"}, &bytes.Buffer{})
	if err != nil || exit || opts.History != 3 {
		t.Fatalf("parse: %+v %v %v", opts, exit, err)
	}
}
