//go:build !unix

package procmod

import (
	"fmt"
	"os"

	"github.com/wnxd/hotswap/supervisor"
)

func exitSignal(state *os.ProcessState) *supervisor.Signal {
	if state == nil {
		return &supervisor.Signal{Kind: supervisor.Kind_Abort, Reason: "child process lost"}
	}
	return &supervisor.Signal{Kind: supervisor.Kind_Abort, Reason: fmt.Sprintf("child exited during call with status %d", state.ExitCode())}
}
