// Package procmod runs a module as a child process. Paths take the form
// "exec:<program>". The child speaks the framed protocol from package child.
package procmod

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"sync"
	"time"

	"github.com/wnxd/hotswap/child"
	"github.com/wnxd/hotswap/encoding"
	"github.com/wnxd/hotswap/module"
	"github.com/wnxd/hotswap/supervisor"
)

const Scheme = "exec"

// Stderr receives the child's stderr in addition to the fault tail.
var Stderr io.Writer = os.Stderr

var quitTimeout = 2 * time.Second

type unit struct {
	mu      sync.Mutex
	path    string
	proc    *process
	symbols []string
	closed  bool
}

type process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	tail   *tail
	exited chan struct{}
	state  *os.ProcessState
}

func init() {
	module.Register(Scheme, Open)
}

func Open(ctx context.Context, path string) (module.Unit, error) {
	u := &unit{path: path}
	proc, hello, err := start(path)
	if err != nil {
		return nil, err
	}
	u.proc = proc
	u.symbols = hello.Symbols
	return u, nil
}

func start(path string) (*process, *child.Hello, error) {
	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	proc := &process{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
		tail:   newTail(8 << 10),
		exited: make(chan struct{}),
	}
	cmd.Stderr = io.MultiWriter(Stderr, proc.tail)
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}
	go func() {
		cmd.Wait()
		proc.state = cmd.ProcessState
		close(proc.exited)
	}()

	var hello child.Hello
	if err := encoding.ReadFrame(proc.stdout, &hello); err != nil {
		proc.kill()
		return nil, nil, fmt.Errorf("exec %s: handshake: %w", path, err)
	} else if hello.Version != child.ProtocolVersion {
		proc.kill()
		return nil, nil, fmt.Errorf("exec %s: protocol version %d, want %d", path, hello.Version, child.ProtocolVersion)
	}
	return proc, &hello, nil
}

func (p *process) kill() {
	p.cmd.Process.Kill()
	<-p.exited
}

// quit asks the child to leave and kills it when it does not.
func (p *process) quit() {
	encoding.WriteFrame(p.stdin, &child.Request{Op: child.Op_Quit})
	p.stdin.Close()
	select {
	case <-p.exited:
	case <-time.After(quitTimeout):
		p.kill()
	}
}

func (u *unit) Name() string {
	return Scheme + ":" + u.path
}

func (u *unit) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return module.ErrUnitClosed
	}
	u.closed = true
	if u.proc != nil {
		u.proc.quit()
		u.proc = nil
	}
	return nil
}

func (u *unit) Symbols(yield func(string) bool) {
	for _, name := range u.symbols {
		if !yield(name) {
			return
		}
	}
}

func (u *unit) Lookup(name string) (module.Symbol, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil, module.ErrUnitClosed
	} else if !slices.Contains(u.symbols, name) {
		return nil, fmt.Errorf("%w: %s", module.ErrSymbolNotFound, name)
	}
	switch name {
	case module.SymPreReload:
		return func() module.State {
			resp := u.call(&child.Request{Op: child.Op_Call, Name: name})
			if resp.State == nil {
				return nil
			}
			return resp.State
		}, nil
	case module.SymPostReload:
		return func(state module.State) {
			req := &child.Request{Op: child.Op_Call, Name: name}
			req.State, req.HasState = state.([]byte)
			u.call(req)
		}, nil
	case module.SymContinue:
		return func(c byte) bool {
			return u.call(&child.Request{Op: child.Op_Call, Name: name, Char: c}).Bool
		}, nil
	default:
		return func() {
			u.call(&child.Request{Op: child.Op_Call, Name: name})
		}, nil
	}
}

// call performs one request. A child that faults or dies raises a signal on
// the calling goroutine; a dead child is restarted on the next call.
func (u *unit) call(req *child.Request) *child.Response {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		supervisor.Raise(&supervisor.Signal{Kind: supervisor.Kind_Abort, Reason: module.ErrUnitClosed.Error()})
	}
	if u.proc == nil {
		if err := u.restart(); err != nil {
			supervisor.Raise(&supervisor.Signal{Kind: supervisor.Kind_Abort, Reason: err.Error(), Cause: err})
		}
	}
	proc := u.proc
	proc.tail.Reset()

	resp, err := proc.roundTrip(req)
	if err != nil {
		u.proc = nil
		supervisor.Raise(proc.exitSignal(err))
	}
	switch resp.Status {
	case child.Status_Fault:
		supervisor.Raise(&supervisor.Signal{
			Kind:   supervisor.Kind(resp.Kind),
			Code:   supervisor.ArithCode(resp.Code),
			Addr:   uintptr(resp.Addr),
			Reason: resp.Reason,
			PID:    proc.cmd.Process.Pid,
			Stack:  []byte(resp.Stack),
		})
	case child.Status_Missing:
		supervisor.Raise(&supervisor.Signal{
			Kind:   supervisor.Kind_Abort,
			Reason: fmt.Sprintf("%v: %s", module.ErrSymbolNotFound, req.Name),
			PID:    proc.cmd.Process.Pid,
		})
	}
	return resp
}

// restart starts a fresh child and re-runs its init entry point.
func (u *unit) restart() error {
	proc, hello, err := start(u.path)
	if err != nil {
		return err
	}
	u.proc = proc
	u.symbols = hello.Symbols
	if slices.Contains(u.symbols, module.SymInit) {
		resp, err := proc.roundTrip(&child.Request{Op: child.Op_Call, Name: module.SymInit})
		if err != nil {
			u.proc = nil
			return fmt.Errorf("exec %s: init after restart: %w", u.path, err)
		} else if resp.Status != child.Status_OK {
			return fmt.Errorf("exec %s: init after restart: %s", u.path, resp.Reason)
		}
	}
	return nil
}

func (p *process) roundTrip(req *child.Request) (*child.Response, error) {
	if err := encoding.WriteFrame(p.stdin, req); err != nil {
		return nil, err
	}
	var resp child.Response
	if err := encoding.ReadFrame(p.stdout, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (p *process) exitSignal(cause error) *supervisor.Signal {
	select {
	case <-p.exited:
	case <-time.After(quitTimeout):
		p.kill()
	}
	sig := exitSignal(p.state)
	sig.PID = p.cmd.Process.Pid
	sig.Stack = p.tail.Bytes()
	sig.Cause = cause
	return sig
}
