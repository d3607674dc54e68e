package supervisor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/wnxd/hotswap/internal/ctxlog"
	"github.com/wnxd/hotswap/supervisor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/wnxd/hotswap/internal/supervisor"

type Supervisor struct {
	hookManager
	once      sync.Once
	installed atomic.Bool
	armed     atomic.Bool
	process   supervisor.ProcessInfo
	tracer    trace.Tracer
}

type result struct {
	value any
	fault supervisor.Fault
}

var _ supervisor.Supervisor = (*Supervisor)(nil)

func New() *Supervisor {
	return &Supervisor{tracer: otel.Tracer(tracerName)}
}

// Install enables fault interception. Calling it again is a no-op.
func (s *Supervisor) Install() error {
	s.once.Do(func() {
		s.process = supervisor.CurrentProcess()
		s.installed.Store(true)
	})
	return nil
}

// Call runs fn on a fresh worker goroutine and waits for it. A fault raised
// by fn is classified, dispatched to the fault hooks and returned in the
// outcome; the worker is abandoned.
func (s *Supervisor) Call(ctx context.Context, entry string, fn func() any) (supervisor.Outcome, error) {
	if !s.installed.Load() {
		return supervisor.Outcome{}, supervisor.ErrNotInstalled
	} else if !s.armed.CompareAndSwap(false, true) {
		return supervisor.Outcome{}, supervisor.ErrReentrantCall
	}
	defer s.armed.Store(false)

	ctx, span := s.tracer.Start(ctx, "guarded "+entry, trace.WithAttributes(attribute.String("hotswap.entry_point", entry)))
	defer span.End()

	ch := make(chan result, 1)
	go s.run(entry, fn, ch)
	r := <-ch
	if r.fault == nil {
		return supervisor.Outcome{Value: r.value}, nil
	}

	span.RecordError(r.fault)
	span.SetStatus(codes.Error, r.fault.Kind().String())
	ctxlog.FromContext(ctx).Debug("guarded call faulted", "entry", entry, "kind", r.fault.Kind().String(), "error", r.fault)
	s.dispatch(ctx, r.fault)
	return supervisor.Outcome{Fault: r.fault}, nil
}
