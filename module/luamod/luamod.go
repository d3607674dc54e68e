// Package luamod loads modules written in Lua. Entry points are global
// functions named after the module ABI.
//
// Values crossing the VM boundary are copied. Tables become []any when their
// keys are exactly 1..n, map[string]any when every key is a string, and
// map[any]any otherwise, so numeric and boolean keys keep their type on the
// way back. Cyclic tables, tables nested deeper than 200 levels, and tables
// keyed by other tables cannot be copied; such a value faults the call.
package luamod

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Shopify/go-lua"
	"github.com/wnxd/hotswap/module"
	"github.com/wnxd/hotswap/supervisor"
)

const Scheme = "lua"

// Output receives text written by hotswap.print.
var Output io.Writer = os.Stdout

type unit struct {
	mu     sync.Mutex
	path   string
	state  *lua.State
	closed bool
}

func init() {
	module.Register(Scheme, Open, ".lua")
}

func Open(ctx context.Context, path string) (module.Unit, error) {
	l := lua.NewState()
	lua.OpenLibraries(l)
	lua.Require(l, "hotswap", openLibrary, true)
	l.Pop(1)
	if err := lua.DoFile(l, path); err != nil {
		return nil, fmt.Errorf("lua: %w", err)
	}
	return &unit{path: path, state: l}, nil
}

func (u *unit) Name() string {
	return u.path
}

func (u *unit) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return module.ErrUnitClosed
	}
	u.closed = true
	u.state = nil
	return nil
}

func (u *unit) Lookup(name string) (module.Symbol, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil, module.ErrUnitClosed
	}
	u.state.Global(name)
	ok := u.state.IsFunction(-1)
	u.state.Pop(1)
	if !ok {
		return nil, fmt.Errorf("%w: %s", module.ErrSymbolNotFound, name)
	}
	switch name {
	case module.SymPreReload:
		return func() module.State {
			return u.call(name, nil, true)
		}, nil
	case module.SymPostReload:
		return func(state module.State) {
			u.call(name, []any{state}, false)
		}, nil
	case module.SymContinue:
		return func(c byte) bool {
			v := u.call(name, []any{string(rune(c))}, true)
			b, _ := v.(bool)
			return b
		}, nil
	default:
		return func() {
			u.call(name, nil, false)
		}, nil
	}
}

func (u *unit) Symbols(yield func(string) bool) {
	for _, ep := range module.EntryPoints() {
		if _, err := u.Lookup(ep.Name); err == nil && !yield(ep.Name) {
			return
		}
	}
}

// call runs the global function name in protected mode. A Lua error is
// re-raised as a fault signal on the calling goroutine.
func (u *unit) call(name string, args []any, result bool) any {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		supervisor.Raise(&supervisor.Signal{Kind: supervisor.Kind_Abort, Reason: module.ErrUnitClosed.Error()})
	}
	l := u.state
	base := l.Top()
	defer l.SetTop(base)

	l.PushGoFunction(traceback)
	handler := l.Top()
	l.Global(name)
	for _, arg := range args {
		if err := push(l, arg); err != nil {
			supervisor.Raise(stateSignal(name, err))
		}
	}
	results := 0
	if result {
		results = 1
	}
	if err := l.ProtectedCall(len(args), results, handler); err != nil {
		var trace []byte
		if msg, ok := l.ToString(-1); ok && strings.Contains(msg, "stack traceback") {
			trace = []byte(msg)
		}
		supervisor.Raise(signalFor(err, trace))
	}
	if !result {
		return nil
	}
	v, err := toGo(l, -1)
	if err != nil {
		supervisor.Raise(stateSignal(name, err))
	}
	return v
}

// stateSignal reports a value that could not cross the VM boundary.
func stateSignal(name string, err error) *supervisor.Signal {
	return &supervisor.Signal{
		Kind:   supervisor.Kind_Abort,
		Reason: fmt.Sprintf("%s: convert value: %v", name, err),
		Cause:  err,
	}
}

func traceback(l *lua.State) int {
	msg, _ := l.ToString(1)
	lua.Traceback(l, l, msg, 1)
	return 1
}

func signalFor(err error, trace []byte) *supervisor.Signal {
	var sig *supervisor.Signal
	if errors.As(err, &sig) {
		if len(sig.Stack) == 0 {
			sig.Stack = trace
		}
		return sig
	}
	msg := err.Error()
	sig = &supervisor.Signal{Kind: supervisor.Kind_Abort, Reason: msg, Stack: trace}
	switch {
	case strings.Contains(msg, "attempt to perform arithmetic"):
		sig.Kind = supervisor.Kind_Arithmetic
		sig.Code = supervisor.ArithCode_FloatInvalid
	case strings.Contains(msg, "attempt to index"):
		sig.Kind = supervisor.Kind_MemoryAccess
	}
	return sig
}
