package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/wnxd/hotswap/internal/config"
)

const (
	ExitCode_OK        = 0
	ExitCode_Failure   = 1
	ExitCode_Usage     = 2
	ExitCode_FirstLoad = 5
)

// ExitError is an error that carries a process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

type Options struct {
	Config     config.Config
	ConfigPath string
	History    int
}

// Parse processes command-line arguments. It returns the resolved options, a
// flag telling the caller to exit cleanly (help was printed), or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	flagSet := flag.NewFlagSet("hotswap", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
hotswap - run a module and reload it without restarting the host.

Usage:
  hotswap [options] [MODULE]

Arguments:
  MODULE
    Module to load: builtin:<name>, <file>.lua, <file>.so or exec:<program>.

Commands (read from stdin):
  r  reload the module
  c  clear the screen
  q  quit
  anything else runs the module's update entry point

Options:
`)
		flagSet.PrintDefaults()
	}

	var (
		configPath   = flagSet.String("config", "", "Path to an HCL configuration file.")
		modulePath   = flagSet.String("module", "", "Module to load.")
		recompile    = flagSet.String("recompile", "", "Command run before every reload.")
		recompileDir = flagSet.String("recompile-dir", "", "Working directory of the recompile command.")
		logLevel     = flagSet.String("log-level", "", "Logging level: 'debug', 'info', 'warn', 'error'.")
		logFormat    = flagSet.String("log-format", "", "Log output format: 'text' or 'json'.")
		journalPath  = flagSet.String("journal", "", "SQLite file recording loads, reloads and faults.")
		otelEndpoint = flagSet.String("otel-endpoint", "", "OTLP/HTTP endpoint for traces.")
		history      = flagSet.Int("history", 0, "Print the N most recent journal events and exit.")
	)

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitCode_Usage, Message: err.Error()}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, false, &ExitError{Code: ExitCode_Usage, Message: err.Error()}
	}
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "module":
			cfg.Module = *modulePath
		case "recompile":
			cfg.Recompile = strings.Fields(*recompile)
		case "recompile-dir":
			cfg.RecompileDir = *recompileDir
		case "log-level":
			cfg.LogLevel = strings.ToLower(*logLevel)
		case "log-format":
			cfg.LogFormat = strings.ToLower(*logFormat)
		case "journal":
			cfg.Journal = *journalPath
		case "otel-endpoint":
			cfg.OTelEndpoint = *otelEndpoint
		}
	})
	if flagSet.NArg() > 0 {
		cfg.Module = flagSet.Arg(0)
	}
	slog.Debug("Arguments parsed.", "module", cfg.Module, "config", *configPath)

	opts := &Options{Config: cfg, ConfigPath: *configPath, History: *history}
	if opts.History > 0 {
		if cfg.Journal == "" {
			return nil, false, &ExitError{Code: ExitCode_Usage, Message: "-history requires a journal"}
		}
		return opts, false, nil
	}
	if cfg.Module == "" {
		flagSet.Usage()
		return nil, true, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: ExitCode_Usage, Message: err.Error()}
	}
	return opts, false, nil
}
