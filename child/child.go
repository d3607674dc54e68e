// Package child lets a separate Go program serve module entry points to a
// hotswap host over stdin/stdout.
package child

import (
	"errors"
	"io"
	"os"
	"runtime/debug"

	"github.com/wnxd/hotswap/encoding"
	"github.com/wnxd/hotswap/module"
	"github.com/wnxd/hotswap/supervisor"
)

// Module lists the entry points a child exports. Nil fields are not exported.
type Module struct {
	Init       func()
	Update     func()
	PreReload  func() []byte
	PostReload func([]byte)
	Continue   func(byte) bool
	Print      func()
}

// Serve answers host requests until the host quits or closes stdin. The
// protocol owns the real stdout; os.Stdout is pointed at stderr so module
// output cannot corrupt frames.
func Serve(m Module) error {
	out := os.Stdout
	os.Stdout = os.Stderr
	return ServeIO(os.Stdin, out, m)
}

func ServeIO(r io.Reader, w io.Writer, m Module) error {
	hello := Hello{Version: ProtocolVersion, PID: os.Getpid(), Symbols: m.symbols()}
	if err := encoding.WriteFrame(w, &hello); err != nil {
		return err
	}
	for {
		var req Request
		if err := encoding.ReadFrame(r, &req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if req.Op == Op_Quit {
			return nil
		}
		resp := m.dispatch(&req)
		if err := encoding.WriteFrame(w, &resp); err != nil {
			return err
		}
	}
}

func (m *Module) symbols() []string {
	var names []string
	add := func(ok bool, name string) {
		if ok {
			names = append(names, name)
		}
	}
	add(m.Init != nil, module.SymInit)
	add(m.Update != nil, module.SymUpdate)
	add(m.PreReload != nil, module.SymPreReload)
	add(m.PostReload != nil, module.SymPostReload)
	add(m.Continue != nil, module.SymContinue)
	add(m.Print != nil, module.SymPrint)
	return names
}

func (m *Module) dispatch(req *Request) (resp Response) {
	defer func() {
		if ex := recover(); ex != nil {
			sig := supervisor.Classify(ex)
			resp = Response{
				Status: Status_Fault,
				Kind:   int32(sig.Kind),
				Code:   int32(sig.Code),
				Addr:   uint64(sig.Addr),
				Reason: sig.Reason,
				Stack:  string(debug.Stack()),
			}
		}
	}()
	debug.SetPanicOnFault(true)
	switch {
	case req.Name == module.SymInit && m.Init != nil:
		m.Init()
	case req.Name == module.SymUpdate && m.Update != nil:
		m.Update()
	case req.Name == module.SymPreReload && m.PreReload != nil:
		resp.State = m.PreReload()
	case req.Name == module.SymPostReload && m.PostReload != nil:
		var state []byte
		if req.HasState {
			state = req.State
		}
		m.PostReload(state)
	case req.Name == module.SymContinue && m.Continue != nil:
		resp.Bool = m.Continue(req.Char)
	case req.Name == module.SymPrint && m.Print != nil:
		m.Print()
	default:
		resp.Status = Status_Missing
	}
	return
}
