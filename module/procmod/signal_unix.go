//go:build unix

package procmod

import (
	"fmt"
	"os"
	"syscall"

	"github.com/wnxd/hotswap/supervisor"
)

func exitSignal(state *os.ProcessState) *supervisor.Signal {
	if state == nil {
		return &supervisor.Signal{Kind: supervisor.Kind_Abort, Reason: "child process lost"}
	}
	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return &supervisor.Signal{
			Kind:   supervisor.Kind_Abort,
			Reason: fmt.Sprintf("child exited during call with status %d", state.ExitCode()),
			Origin: fmt.Sprintf("exit status %d", state.ExitCode()),
		}
	}
	return signalFor(ws.Signal())
}

func signalFor(sig syscall.Signal) *supervisor.Signal {
	s := &supervisor.Signal{
		Kind:   supervisor.Kind_Abort,
		Reason: "child killed by " + sig.String(),
		Origin: fmt.Sprintf("signal %d (%s)", int(sig), sig),
	}
	switch sig {
	case syscall.SIGSEGV, syscall.SIGBUS:
		s.Kind = supervisor.Kind_MemoryAccess
	case syscall.SIGFPE:
		s.Kind = supervisor.Kind_Arithmetic
	}
	return s
}
