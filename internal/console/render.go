package console

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/wnxd/hotswap/supervisor"
)

const maxBoxWidth = 120

type addresser interface {
	Address() (uintptr, bool)
}

type coder interface {
	Code() supervisor.ArithCode
}

// RenderFault writes a human readable fault report.
func RenderFault(w io.Writer, fault supervisor.Fault) {
	site := fault.Site()
	fmt.Fprintf(w, "*** %s in %s ***\n", fault.Kind(), site.EntryPoint)
	if a, ok := fault.(addresser); ok {
		if addr, ok := a.Address(); ok {
			fmt.Fprintf(w, "address: 0x%016X\n", addr)
		} else {
			fmt.Fprintln(w, "address: unknown")
		}
	}
	if c, ok := fault.(coder); ok {
		fmt.Fprintf(w, "type:    %s\n", c.Code())
	}
	if r, ok := fault.(interface{ Reason() string }); ok && r.Reason() != "" {
		fmt.Fprintf(w, "reason:  %s\n", r.Reason())
	} else if cause, ok := fault.(interface{ Cause() any }); ok && cause.Cause() != nil {
		fmt.Fprintf(w, "cause:   %v\n", cause.Cause())
	}
	if site.Origin != "" {
		fmt.Fprintf(w, "origin:  %s, sending process %d\n", site.Origin, site.Process.PID)
	}
	renderProcess(w, site.Process)
	renderBox(w, "Stack Trace", site.Stack)
}

func renderProcess(w io.Writer, p supervisor.ProcessInfo) {
	fmt.Fprintf(w, "program: %s (pid %d, ppid %d)\n", p.Program, p.PID, p.PPID)
	fmt.Fprintf(w, "cwd:     %s\n", p.WorkDir)
	for _, kv := range p.Env {
		fmt.Fprintf(w, "  %s\n", kv)
	}
}

func renderBox(w io.Writer, title string, body []byte) {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(body))
	for sc.Scan() {
		lines = append(lines, strings.ReplaceAll(sc.Text(), "\t", "    "))
	}
	if len(lines) == 0 {
		lines = append(lines, "(no stack captured)")
	}

	width := utf8.RuneCountInString(title) + 4
	for _, line := range lines {
		width = max(width, utf8.RuneCountInString(line))
	}
	width = min(width, maxBoxWidth)

	pad := width - utf8.RuneCountInString(title) - 2
	left := pad / 2
	fmt.Fprintf(w, "+%s %s %s+\n", strings.Repeat("-", left+1), title, strings.Repeat("-", pad-left+1))
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > width {
			line = string([]rune(line)[:width])
		} else {
			line += strings.Repeat(" ", width-n)
		}
		fmt.Fprintf(w, "| %s |\n", line)
	}
	fmt.Fprintf(w, "+%s+\n", strings.Repeat("-", width+2))
}
