package supervisor

import (
	"errors"
	"fmt"
)

var (
	ErrNotInstalled     = errors.New("fault interception not installed")
	ErrReentrantCall    = errors.New("guarded call already in flight")
	ErrHookCallbackType = errors.New("hook callback type exception")
)

type Fault interface {
	error
	Kind() Kind
	Site() Site
}

// Site describes where a fault was intercepted.
type Site struct {
	EntryPoint string
	// Origin names what delivered the fault when it came from outside the
	// host, such as the signal that killed a child process.
	Origin  string
	Stack   []byte
	Process ProcessInfo
}

type fault struct {
	site  Site
	cause any
}

type MemoryAccessFault struct {
	fault
	addr    uintptr
	hasAddr bool
}

type AbortFault struct {
	fault
	reason string
}

type ArithmeticFault struct {
	fault
	code ArithCode
}

func (e *fault) String() string {
	return fmt.Sprintf("entry: %s, pid: %d", e.site.EntryPoint, e.site.Process.PID)
}

func (e *fault) Site() Site {
	return e.site
}

func (e *fault) Cause() any {
	return e.cause
}

func (e *fault) Unwrap() error {
	err, _ := e.cause.(error)
	return err
}

func (e *MemoryAccessFault) Error() string {
	if !e.hasAddr {
		return fmt.Sprintf("[MemoryAccess] %s, cause: %v", &e.fault, e.cause)
	}
	return fmt.Sprintf("[MemoryAccess] %s, addr: %016X, cause: %v", &e.fault, e.addr, e.cause)
}

func (e *MemoryAccessFault) Kind() Kind {
	return Kind_MemoryAccess
}

func (e *MemoryAccessFault) Address() (uintptr, bool) {
	return e.addr, e.hasAddr
}

func (e *AbortFault) Error() string {
	return fmt.Sprintf("[Abort] %s, reason: %s", &e.fault, e.reason)
}

func (e *AbortFault) Kind() Kind {
	return Kind_Abort
}

func (e *AbortFault) Reason() string {
	return e.reason
}

func (e *ArithmeticFault) Error() string {
	return fmt.Sprintf("[Arithmetic] %s, type: %v, cause: %v", &e.fault, e.code, e.cause)
}

func (e *ArithmeticFault) Kind() Kind {
	return Kind_Arithmetic
}

func (e *ArithmeticFault) Code() ArithCode {
	return e.code
}

func NewMemoryAccessFault(site Site, addr uintptr, hasAddr bool, cause any) Fault {
	return &MemoryAccessFault{
		fault:   fault{site, cause},
		addr:    addr,
		hasAddr: hasAddr,
	}
}

func NewAbortFault(site Site, reason string, cause any) Fault {
	return &AbortFault{
		fault:  fault{site, cause},
		reason: reason,
	}
}

func NewArithmeticFault(site Site, code ArithCode, cause any) Fault {
	return &ArithmeticFault{
		fault: fault{site, cause},
		code:  code,
	}
}
