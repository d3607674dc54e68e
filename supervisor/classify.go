package supervisor

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/wnxd/hotswap/module"
)

type addrError interface {
	Addr() uintptr
}

// Classify maps a recovered panic value onto a fault signal. A nil value
// stands for runtime.Goexit.
func Classify(ex any) *Signal {
	switch v := ex.(type) {
	case nil:
		return &Signal{Kind: Kind_Abort, Reason: "goroutine exited during call"}
	case *Signal:
		return v
	case *module.AbortRequest:
		return &Signal{Kind: Kind_Abort, Reason: v.Reason, Cause: v}
	case runtime.Error:
		return classifyRuntime(v)
	case error:
		var sig *Signal
		if errors.As(v, &sig) {
			return sig
		}
		var abort *module.AbortRequest
		if errors.As(v, &abort) {
			return &Signal{Kind: Kind_Abort, Reason: abort.Reason, Cause: v}
		}
		return &Signal{Kind: Kind_Abort, Reason: v.Error(), Cause: v}
	default:
		return &Signal{Kind: Kind_Abort, Reason: fmt.Sprint(v), Cause: v}
	}
}

func classifyRuntime(err runtime.Error) *Signal {
	sig := &Signal{Kind: Kind_Abort, Reason: err.Error(), Cause: err}
	if ae, ok := err.(addrError); ok {
		sig.Kind = Kind_MemoryAccess
		sig.Addr = ae.Addr()
		return sig
	}
	switch msg := sig.Reason; {
	case strings.Contains(msg, "divide by zero"):
		sig.Kind = Kind_Arithmetic
		sig.Code = ArithCode_IntDivide
	case strings.Contains(msg, "integer overflow"):
		sig.Kind = Kind_Arithmetic
		sig.Code = ArithCode_IntOverflow
	case strings.Contains(msg, "nil pointer dereference"),
		strings.Contains(msg, "invalid memory address"),
		strings.Contains(msg, "index out of range"),
		strings.Contains(msg, "slice bounds out of range"):
		sig.Kind = Kind_MemoryAccess
	}
	return sig
}

// NewFault builds the fault report for sig observed at site.
func NewFault(site Site, sig *Signal) Fault {
	site.Origin = sig.Origin
	if len(sig.Stack) > 0 {
		site.Stack = sig.Stack
	}
	if sig.PID != 0 && sig.PID != site.Process.PID {
		site.Process.PPID = site.Process.PID
		site.Process.PID = sig.PID
	}
	cause := sig.Cause
	if cause == nil {
		cause = sig
	}
	switch sig.Kind {
	case Kind_MemoryAccess:
		return NewMemoryAccessFault(site, sig.Addr, sig.Addr != 0, cause)
	case Kind_Arithmetic:
		return NewArithmeticFault(site, sig.Code, cause)
	default:
		return NewAbortFault(site, sig.Reason, cause)
	}
}
