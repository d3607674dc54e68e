package supervisor

import (
	"context"
	"io"
)

type HookResult int

const (
	HookResult_Done HookResult = -1
	HookResult_Next HookResult = 0
)

type FaultCallback = func(ctx context.Context, fault Fault, data any) HookResult

type HookHandler interface {
	io.Closer
	Kind() Kind
}

type Outcome struct {
	Value any
	Fault Fault
}

func (o Outcome) Completed() bool {
	return o.Fault == nil
}

type Supervisor interface {
	Install() error
	Call(ctx context.Context, entry string, fn func() any) (Outcome, error)
	AddHook(kind Kind, callback any, data any) (HookHandler, error)
}
