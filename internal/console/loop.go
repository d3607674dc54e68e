package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wnxd/hotswap/internal/ctxlog"
	"github.com/wnxd/hotswap/internal/journal"
	"github.com/wnxd/hotswap/internal/reload"
	"github.com/wnxd/hotswap/module"
	"github.com/wnxd/hotswap/supervisor"
)

type State int

const (
	State_Idle State = iota
	State_Running
	State_Terminated
)

type Registry interface {
	Table() module.Table
	Unload() error
}

type Reloader interface {
	Path() string
	Load(ctx context.Context) (module.Table, error)
	Reload(ctx context.Context) (reload.Result, error)
}

type Caller interface {
	Call(ctx context.Context, entry string, fn func() any) (supervisor.Outcome, error)
}

type Recorder interface {
	Record(ctx context.Context, ev journal.Event) error
}

type Loop struct {
	in       *bufio.Reader
	out      io.Writer
	registry Registry
	reloader Reloader
	caller   Caller
	journal  Recorder
	clear    func(io.Writer)
	state    State
	last     byte
}

type Option func(*Loop)

func WithJournal(rec Recorder) Option {
	return func(l *Loop) {
		l.journal = rec
	}
}

func WithClear(clear func(io.Writer)) Option {
	return func(l *Loop) {
		l.clear = clear
	}
}

func New(in io.Reader, out io.Writer, registry Registry, reloader Reloader, caller Caller, opts ...Option) *Loop {
	l := &Loop{
		in:       bufio.NewReader(in),
		out:      out,
		registry: registry,
		reloader: reloader,
		caller:   caller,
		clear:    ClearScreen,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func ClearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}

func (l *Loop) State() State {
	return l.state
}

// Start performs the first load and runs the module's init entry point. A
// load failure is returned as is; an init fault is reported and ignored.
func (l *Loop) Start(ctx context.Context) error {
	path := l.reloader.Path()
	table, err := l.reloader.Load(ctx)
	if err != nil {
		l.record(ctx, journal.Event{Kind: journal.EventKind_LoadFailed, Detail: err.Error()})
		return err
	}
	l.record(ctx, journal.Event{Kind: journal.EventKind_Load})
	ctxlog.FromContext(ctx).Info("module loaded", "path", path, "generation", table.Generation)

	if _, err := l.guard(ctx, module.SymInit, func() any {
		table.Init()
		return nil
	}); err != nil {
		return err
	}
	l.state = State_Running
	return nil
}

// Run processes commands until quit, end of input, or the module's continue
// predicate declines.
func (l *Loop) Run(ctx context.Context) error {
	if l.state != State_Running {
		return errors.New("console: loop not started")
	}
	for {
		if ok, err := l.proceed(ctx); err != nil {
			return err
		} else if !ok {
			return l.quit(ctx)
		}
		fmt.Fprint(l.out, "> ")
		line, err := l.in.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				return l.quit(ctx)
			}
			return err
		}
		cmd := byte('\n')
		if s := strings.TrimSpace(line); s != "" {
			cmd = s[0]
		}
		l.last = cmd

		switch cmd {
		case 'q':
			return l.quit(ctx)
		case 'r':
			if err := l.reload(ctx); err != nil {
				return err
			}
		case 'c':
			l.clear(l.out)
		default:
			if err := l.update(ctx); err != nil {
				return err
			}
		}
	}
}

func (l *Loop) proceed(ctx context.Context) (bool, error) {
	table := l.registry.Table()
	if table.Continue == nil {
		return true, nil
	}
	last := l.last
	out, err := l.guard(ctx, module.SymContinue, func() any {
		return table.Continue(last)
	})
	if err != nil || !out.Completed() {
		return true, err
	}
	ok, _ := out.Value.(bool)
	return ok, nil
}

func (l *Loop) update(ctx context.Context) error {
	table := l.registry.Table()
	out, err := l.guard(ctx, module.SymUpdate, func() any {
		table.Update()
		return nil
	})
	if err == nil && out.Completed() {
		fmt.Fprintln(l.out, "update completed")
		ctxlog.FromContext(ctx).Debug("update completed", "generation", table.Generation)
	}
	return err
}

func (l *Loop) reload(ctx context.Context) error {
	res, err := l.reloader.Reload(ctx)
	var re *reload.Error
	if errors.As(err, &re) {
		fmt.Fprintf(l.out, "reload failed: %v\n", re.Err)
		l.record(ctx, journal.Event{Kind: journal.EventKind_ReloadFailed, Detail: re.Err.Error()})
		return nil
	} else if err != nil {
		return err
	}
	for _, fault := range []supervisor.Fault{res.PreFault, res.PostFault} {
		if fault != nil {
			RenderFault(l.out, fault)
		}
	}
	fmt.Fprintf(l.out, "reloaded %s (generation %d)\n", l.reloader.Path(), res.Table.Generation)
	l.record(ctx, journal.Event{Kind: journal.EventKind_Reload, Detail: fmt.Sprintf("generation %d", res.Table.Generation)})
	return nil
}

func (l *Loop) quit(ctx context.Context) error {
	l.state = State_Terminated
	l.record(ctx, journal.Event{Kind: journal.EventKind_Quit})
	return l.registry.Unload()
}

// guard performs a guarded call and renders a fault. Journaling faults is
// left to the hook installed by JournalFaults. The error is only set
// when the call could not be made at all.
func (l *Loop) guard(ctx context.Context, entry string, fn func() any) (supervisor.Outcome, error) {
	out, err := l.caller.Call(ctx, entry, fn)
	if err != nil {
		return out, fmt.Errorf("call %s: %w", entry, err)
	}
	if !out.Completed() {
		RenderFault(l.out, out.Fault)
	}
	return out, nil
}

func (l *Loop) record(ctx context.Context, ev journal.Event) {
	if l.journal == nil {
		return
	}
	ev.Module = l.reloader.Path()
	if err := l.journal.Record(ctx, ev); err != nil {
		ctxlog.FromContext(ctx).Warn("journal write failed", "error", err)
	}
}
