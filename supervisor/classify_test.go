package supervisor

import (
	"errors"
	"fmt"
	"testing"

	"github.com/wnxd/hotswap/module"
)

type fakeAddrError struct{}

func (fakeAddrError) Error() string { return "unexpected fault address" }
func (fakeAddrError) RuntimeError() {}
func (fakeAddrError) Addr() uintptr { return 0xdead }

var zero int

func recovered(fn func()) (ex any) {
	defer func() { ex = recover() }()
	fn()
	return nil
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		ex   any
		kind Kind
		code ArithCode
		addr uintptr
	}{
		{"goexit", nil, Kind_Abort, ArithCode_Unknown, 0},
		{"divide", recovered(func() { _ = 1 / zero }), Kind_Arithmetic, ArithCode_IntDivide, 0},
		{"nil", recovered(func() {
			var p *int
			*p = 1
		}), Kind_MemoryAccess, ArithCode_Unknown, 0},
		{"slice", recovered(func() {
			s := make([]int, 1)
			_ = s[1+zero:][1]
		}), Kind_MemoryAccess, ArithCode_Unknown, 0},
		{"address", fakeAddrError{}, Kind_MemoryAccess, ArithCode_Unknown, 0xdead},
		{"abort", &module.AbortRequest{Reason: "x"}, Kind_Abort, ArithCode_Unknown, 0},
		{"wrapped abort", fmt.Errorf("ctx: %w", &module.AbortRequest{Reason: "x"}), Kind_Abort, ArithCode_Unknown, 0},
		{"signal", &Signal{Kind: Kind_Arithmetic, Code: ArithCode_FloatOverflow}, Kind_Arithmetic, ArithCode_FloatOverflow, 0},
		{"error", errors.New("plain"), Kind_Abort, ArithCode_Unknown, 0},
		{"value", 17, Kind_Abort, ArithCode_Unknown, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := Classify(tt.ex)
			if sig.Kind != tt.kind || sig.Code != tt.code || sig.Addr != tt.addr {
				t.Fatalf("Classify = %+v", sig)
			}
		})
	}
}

func TestNewFault(t *testing.T) {
	site := Site{EntryPoint: "hotswap_update", Stack: []byte("host"), Process: ProcessInfo{PID: 10, PPID: 1}}

	f := NewFault(site, &Signal{Kind: Kind_MemoryAccess, Addr: 0x40, PID: 99, Origin: "signal 11", Stack: []byte("child")})
	mf, ok := f.(*MemoryAccessFault)
	if !ok {
		t.Fatalf("fault = %T", f)
	}
	if addr, ok := mf.Address(); !ok || addr != 0x40 {
		t.Fatalf("address = %x, %v", addr, ok)
	}
	if got := f.Site(); got.Process.PID != 99 || got.Process.PPID != 10 || got.Origin != "signal 11" || string(got.Stack) != "child" {
		t.Fatalf("site = %+v", got)
	}

	f = NewFault(site, &Signal{Kind: Kind_Abort, Reason: "bye"})
	if af, ok := f.(*AbortFault); !ok || af.Reason() != "bye" || string(f.Site().Stack) != "host" {
		t.Fatalf("fault = %v", f)
	}
	var sig *Signal
	if !errors.As(f, &sig) {
		t.Fatal("fault should unwrap to its signal")
	}
}

func TestKindStrings(t *testing.T) {
	if Kind_Arithmetic.String() != "arithmetic exception" || ArithCode_IntDivide.String() != "integer divide by zero" {
		t.Fatal("unexpected names")
	}
}
