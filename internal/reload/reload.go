package reload

import (
	"context"
	"log/slog"

	"github.com/wnxd/hotswap/internal/ctxlog"
	"github.com/wnxd/hotswap/module"
	"github.com/wnxd/hotswap/supervisor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/wnxd/hotswap/internal/reload"

type Registry interface {
	Table() module.Table
	Load(ctx context.Context, path string) (module.Table, error)
}

type Caller interface {
	Call(ctx context.Context, entry string, fn func() any) (supervisor.Outcome, error)
}

type Recompiler interface {
	Recompile(ctx context.Context) error
}

type Coordinator struct {
	path      string
	registry  Registry
	caller    Caller
	recompile Recompiler
	tracer    trace.Tracer
}

// Result describes a reload that bound a new module. Faults raised by the
// state hooks are carried here; they do not undo the bind.
type Result struct {
	Table     module.Table
	PreFault  supervisor.Fault
	PostFault supervisor.Fault
}

func New(path string, registry Registry, caller Caller, recompile Recompiler) *Coordinator {
	return &Coordinator{
		path:      path,
		registry:  registry,
		caller:    caller,
		recompile: recompile,
		tracer:    otel.Tracer(tracerName),
	}
}

func (c *Coordinator) Path() string {
	return c.path
}

// Load binds the module without any state handoff.
func (c *Coordinator) Load(ctx context.Context) (module.Table, error) {
	table, err := c.registry.Load(ctx, c.path)
	if err != nil {
		return table, err
	}
	c.print(ctx, table)
	return table, nil
}

func (c *Coordinator) Reload(ctx context.Context) (Result, error) {
	ctx, span := c.tracer.Start(ctx, "reload", trace.WithAttributes(attribute.String("hotswap.module", c.path)))
	defer span.End()
	logger := ctxlog.FromContext(ctx)

	var res Result
	if c.recompile != nil {
		if err := c.recompile.Recompile(ctx); err != nil {
			logger.Warn("recompile failed", "error", err)
		}
	}

	var state module.State
	if old := c.registry.Table(); old.PreReload != nil {
		out, err := c.caller.Call(ctx, module.SymPreReload, func() any {
			return old.PreReload()
		})
		if err != nil {
			return res, err
		} else if out.Completed() {
			state = out.Value
		} else {
			res.PreFault = out.Fault
		}
	}

	table, err := c.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return res, &Error{Path: c.path, Err: err}
	}
	res.Table = table
	logger.Info("module reloaded", "path", c.path, "generation", table.Generation)

	if table.PostReload != nil {
		out, err := c.caller.Call(ctx, module.SymPostReload, func() any {
			table.PostReload(state)
			return nil
		})
		if err != nil {
			return res, err
		}
		res.PostFault = out.Fault
	}
	return res, nil
}

// print runs the module's diagnostic print hook when debug logging is on.
func (c *Coordinator) print(ctx context.Context, table module.Table) {
	if table.Print == nil || !ctxlog.FromContext(ctx).Enabled(ctx, slog.LevelDebug) {
		return
	}
	c.caller.Call(ctx, module.SymPrint, func() any {
		table.Print()
		return nil
	})
}
