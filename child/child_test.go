package child

import (
	"io"
	"slices"
	"testing"

	"github.com/wnxd/hotswap/encoding"
	"github.com/wnxd/hotswap/module"
	"github.com/wnxd/hotswap/supervisor"
)

func TestServeIO(t *testing.T) {
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	count := 0
	m := Module{
		Init:   func() {},
		Update: func() { count++ },
		PreReload: func() []byte {
			var p *[]byte
			if count > 1 {
				return *p
			}
			return []byte{byte(count)}
		},
	}
	done := make(chan error, 1)
	go func() { done <- ServeIO(reqR, respW, m) }()

	var hello Hello
	if err := encoding.ReadFrame(respR, &hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	want := []string{module.SymInit, module.SymUpdate, module.SymPreReload}
	if hello.Version != ProtocolVersion || !slices.Equal(hello.Symbols, want) {
		t.Fatalf("hello = %+v", hello)
	}

	call := func(name string) Response {
		t.Helper()
		if err := encoding.WriteFrame(reqW, &Request{Op: Op_Call, Name: name}); err != nil {
			t.Fatalf("write request: %v", err)
		}
		var resp Response
		if err := encoding.ReadFrame(respR, &resp); err != nil {
			t.Fatalf("read response: %v", err)
		}
		return resp
	}

	if resp := call(module.SymUpdate); resp.Status != Status_OK {
		t.Fatalf("update: %+v", resp)
	}
	if resp := call(module.SymPreReload); resp.Status != Status_OK || len(resp.State) != 1 || resp.State[0] != 1 {
		t.Fatalf("pre reload: %+v", resp)
	}
	if resp := call(module.SymPrint); resp.Status != Status_Missing {
		t.Fatalf("print: %+v", resp)
	}
	call(module.SymUpdate)
	resp := call(module.SymPreReload)
	if resp.Status != Status_Fault || supervisor.Kind(resp.Kind) != supervisor.Kind_MemoryAccess || resp.Stack == "" {
		t.Fatalf("faulting pre reload: %+v", resp)
	}

	if err := encoding.WriteFrame(reqW, &Request{Op: Op_Quit}); err != nil {
		t.Fatalf("write quit: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("serve: %v", err)
	}
}

func TestServeIOEmptyState(t *testing.T) {
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	var got []byte
	m := Module{
		Init:       func() {},
		Update:     func() {},
		PreReload:  func() []byte { return []byte{} },
		PostReload: func(state []byte) { got = state },
	}
	done := make(chan error, 1)
	go func() { done <- ServeIO(reqR, respW, m) }()

	var hello Hello
	if err := encoding.ReadFrame(respR, &hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	roundTrip := func(req *Request) Response {
		t.Helper()
		if err := encoding.WriteFrame(reqW, req); err != nil {
			t.Fatalf("write request: %v", err)
		}
		var resp Response
		if err := encoding.ReadFrame(respR, &resp); err != nil {
			t.Fatalf("read response: %v", err)
		}
		return resp
	}

	resp := roundTrip(&Request{Op: Op_Call, Name: module.SymPreReload})
	if resp.Status != Status_OK || resp.State == nil || len(resp.State) != 0 {
		t.Fatalf("pre reload: %#v", resp.State)
	}
	roundTrip(&Request{Op: Op_Call, Name: module.SymPostReload, HasState: true, State: resp.State})
	if got == nil || len(got) != 0 {
		t.Fatalf("post reload got %#v", got)
	}

	if err := encoding.WriteFrame(reqW, &Request{Op: Op_Quit}); err != nil {
		t.Fatalf("write quit: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("serve: %v", err)
	}
}
