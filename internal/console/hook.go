package console

import (
	"context"

	"github.com/wnxd/hotswap/internal/ctxlog"
	"github.com/wnxd/hotswap/internal/journal"
	"github.com/wnxd/hotswap/supervisor"
)

type Hooker interface {
	AddHook(kind supervisor.Kind, callback any, data any) (supervisor.HookHandler, error)
}

// JournalFaults installs a fault hook that appends every fault raised by
// module path to rec.
func JournalFaults(h Hooker, rec Recorder, path string) (supervisor.HookHandler, error) {
	return h.AddHook(supervisor.Kind_Any, recordFault(rec), path)
}

func recordFault(rec Recorder) supervisor.FaultCallback {
	return func(ctx context.Context, fault supervisor.Fault, data any) supervisor.HookResult {
		path, _ := data.(string)
		err := rec.Record(ctx, journal.Event{
			Kind:       journal.EventKind_Fault,
			Module:     path,
			EntryPoint: fault.Site().EntryPoint,
			Detail:     fault.Error(),
		})
		if err != nil {
			ctxlog.FromContext(ctx).Warn("journal write failed", "error", err)
		}
		return supervisor.HookResult_Next
	}
}
