package supervisor

import (
	"runtime/debug"

	"github.com/wnxd/hotswap/supervisor"
)

func (s *Supervisor) run(entry string, fn func() any, ch chan<- result) {
	done := false
	defer func() {
		if done {
			return
		}
		sig := supervisor.Classify(recover())
		site := supervisor.Site{EntryPoint: entry, Stack: debug.Stack(), Process: s.process}
		ch <- result{fault: supervisor.NewFault(site, sig)}
	}()
	debug.SetPanicOnFault(true)
	value := fn()
	done = true
	ch <- result{value: value}
}
