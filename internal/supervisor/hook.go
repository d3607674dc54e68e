package supervisor

import (
	"context"
	"sync"

	"github.com/wnxd/hotswap/supervisor"
)

type hookManager struct {
	hooks sync.Map
}

type hookHandler struct {
	releases []func() error
	kind     supervisor.Kind
	callback supervisor.FaultCallback
	data     any
}

func (h *hookManager) addHook(kind supervisor.Kind, callback any, data any) (supervisor.HookHandler, error) {
	cb, ok := callback.(supervisor.FaultCallback)
	if !ok {
		return nil, supervisor.ErrHookCallbackType
	}
	handler := &hookHandler{kind: kind, callback: cb, data: data}
	handler.releases = append(handler.releases, func() error {
		h.hooks.Delete(handler)
		return nil
	})
	h.hooks.Store(handler, struct{}{})
	return handler, nil
}

func (h *hookManager) dispatch(ctx context.Context, fault supervisor.Fault) supervisor.HookResult {
	result := supervisor.HookResult_Next
	for hook := range h.hooks.Range {
		handler := hook.(*hookHandler)
		if handler.valid(fault.Kind()) {
			result = handler.callback(ctx, fault, handler.data)
			if result == supervisor.HookResult_Done {
				break
			}
		}
	}
	return result
}

func (h *hookHandler) Close() error {
	for i := len(h.releases) - 1; i >= 0; i-- {
		h.releases[i]()
	}
	h.releases = nil
	return nil
}

func (h *hookHandler) Kind() supervisor.Kind {
	return h.kind
}

func (h *hookHandler) valid(kind supervisor.Kind) bool {
	return h.kind == supervisor.Kind_Any || h.kind == kind
}

func (s *Supervisor) AddHook(kind supervisor.Kind, callback any, data any) (supervisor.HookHandler, error) {
	return s.hookManager.addHook(kind, callback, data)
}
