package console

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/wnxd/hotswap/supervisor"
)

func TestRenderFault(t *testing.T) {
	site := supervisor.Site{
		EntryPoint: "hotswap_update",
		Stack:      []byte("main.update()\n\t/src/main.go:12\n" + strings.Repeat("x", 200)),
		Process:    supervisor.ProcessInfo{Program: "hotswap", PID: 42, PPID: 1, WorkDir: "/tmp", Env: []string{"PATH=/bin"}},
	}

	tests := []struct {
		name  string
		fault supervisor.Fault
		want  []string
	}{
		{"memory", supervisor.NewMemoryAccessFault(site, 0x10, true, nil), []string{
			"*** memory access violation in hotswap_update ***",
			"address: 0x0000000000000010",
		}},
		{"memory without address", supervisor.NewMemoryAccessFault(site, 0, false, nil), []string{
			"address: unknown",
		}},
		{"arithmetic", supervisor.NewArithmeticFault(site, supervisor.ArithCode_IntDivide, nil), []string{
			"*** arithmetic exception in hotswap_update ***",
			"type:    integer divide by zero",
		}},
		{"abort", supervisor.NewAbortFault(site, "gave up", nil), []string{
			"reason:  gave up",
			"program: hotswap (pid 42, ppid 1)",
			"  PATH=/bin",
		}},
	}
	child := site
	child.Origin = "signal 11 (segmentation fault)"
	tests = append(tests, struct {
		name  string
		fault supervisor.Fault
		want  []string
	}{"child signal", supervisor.NewMemoryAccessFault(child, 0, false, nil), []string{
		"origin:  signal 11 (segmentation fault), sending process 42",
	}})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			RenderFault(&buf, tt.fault)
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Fatalf("missing %q in:\n%s", want, out)
				}
			}
		})
	}
}

func TestRenderBoxAligned(t *testing.T) {
	var buf bytes.Buffer
	renderBox(&buf, "Stack Trace", []byte("short\n\tindented\n"+strings.Repeat("y", 300)))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("lines = %d\n%s", len(lines), buf.String())
	}
	want := maxBoxWidth + 4
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n != want {
			t.Fatalf("line %q width %d, want %d", line, n, want)
		}
	}
	if !strings.Contains(lines[0], " Stack Trace ") || !strings.Contains(lines[2], "    indented") {
		t.Fatalf("unexpected box:\n%s", buf.String())
	}
}

func TestRenderBoxEmpty(t *testing.T) {
	var buf bytes.Buffer
	renderBox(&buf, "Stack Trace", nil)
	if !strings.Contains(buf.String(), "(no stack captured)") {
		t.Fatalf("got:\n%s", buf.String())
	}
}
