// Package app wires the supervisor components together for one run.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/wnxd/hotswap/internal/config"
	"github.com/wnxd/hotswap/internal/console"
	"github.com/wnxd/hotswap/internal/ctxlog"
	"github.com/wnxd/hotswap/internal/journal"
	"github.com/wnxd/hotswap/internal/registry"
	"github.com/wnxd/hotswap/internal/reload"
	"github.com/wnxd/hotswap/internal/supervisor"
	"github.com/wnxd/hotswap/internal/telemetry"

	_ "github.com/wnxd/hotswap/internal/demo"
	_ "github.com/wnxd/hotswap/module/builtin"
	_ "github.com/wnxd/hotswap/module/goplugin"
	_ "github.com/wnxd/hotswap/module/luamod"
	_ "github.com/wnxd/hotswap/module/procmod"
)

const serviceName = "hotswap"

// FirstLoadError reports that the module could not be loaded at startup.
type FirstLoadError struct {
	Err error
}

func (e *FirstLoadError) Error() string {
	return fmt.Sprintf("initial load failed: %v", e.Err)
}

func (e *FirstLoadError) Unwrap() error {
	return e.Err
}

type App struct {
	cfg    config.Config
	in     io.Reader
	out    io.Writer
	logger *slog.Logger
}

func New(in io.Reader, out, logW io.Writer, cfg config.Config) *App {
	return &App{
		cfg:    cfg,
		in:     in,
		out:    out,
		logger: newLogger(cfg.LogLevel, cfg.LogFormat, logW),
	}
}

// Run loads the module and serves console commands until quit.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	shutdown, err := telemetry.Setup(ctx, serviceName, a.cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if serr := shutdown(sctx); serr != nil {
			a.logger.Warn("tracing shutdown failed", "error", serr)
		}
	}()

	sup := supervisor.New()
	if err := sup.Install(); err != nil {
		return fmt.Errorf("failed to install fault interception: %w", err)
	}

	var opts []console.Option
	if a.cfg.Journal != "" {
		j, err := journal.Open(a.cfg.Journal)
		if err != nil {
			return err
		}
		defer j.Close()
		hook, err := console.JournalFaults(sup, j, a.cfg.Module)
		if err != nil {
			return fmt.Errorf("failed to install fault journal: %w", err)
		}
		defer hook.Close()
		opts = append(opts, console.WithJournal(j))
	}
	reg := registry.New()
	coord := reload.New(a.cfg.Module, reg, sup, a.recompiler())
	loop := console.New(a.in, a.out, reg, coord, sup, opts...)

	if err := loop.Start(ctx); err != nil {
		return &FirstLoadError{Err: err}
	}
	a.logger.Debug("control loop running", "module", a.cfg.Module)
	return loop.Run(ctx)
}

func (a *App) recompiler() reload.Recompiler {
	if len(a.cfg.Recompile) == 0 {
		return nil
	}
	return &reload.Command{
		Name:   a.cfg.Recompile[0],
		Args:   a.cfg.Recompile[1:],
		Dir:    a.cfg.RecompileDir,
		Output: a.out,
	}
}

// History prints the n most recent journal events, newest first.
func (a *App) History(ctx context.Context, n int) error {
	j, err := journal.Open(a.cfg.Journal)
	if err != nil {
		return err
	}
	defer j.Close()
	events, err := j.Recent(ctx, n)
	if err != nil {
		return err
	}
	for _, ev := range events {
		fmt.Fprintf(a.out, "%s  %-13s %s", ev.At.Local().Format(time.DateTime), ev.Kind, ev.Module)
		if ev.EntryPoint != "" {
			fmt.Fprintf(a.out, " [%s]", ev.EntryPoint)
		}
		if ev.Detail != "" {
			fmt.Fprintf(a.out, ": %s", ev.Detail)
		}
		fmt.Fprintln(a.out)
	}
	return nil
}
