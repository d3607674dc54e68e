package main

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/wnxd/hotswap/internal/cli"
)

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		input string
		code  int
	}{
		{"quit", []string{"builtin:demo"}, "q\n", cli.ExitCode_OK},
		{"first load", []string{"builtin:absent"}, "", cli.ExitCode_FirstLoad},
		{"usage", []string{"-log-format", "yaml", "builtin:demo"}, "", cli.ExitCode_Usage},
		{"help", []string{"-h"}, "", cli.ExitCode_OK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(strings.NewReader(tt.input), &out, io.Discard, tt.args)
			code := cli.ExitCode_OK
			if err != nil {
				var ee *cli.ExitError
				if !errors.As(err, &ee) {
					t.Fatalf("unexpected error: %v", err)
				}
				code = ee.Code
			}
			if code != tt.code {
				t.Fatalf("exit code = %d, want %d (%v)", code, tt.code, err)
			}
		})
	}
}
