package supervisor

import "fmt"

// Signal is raised (as a panic value) by module runtimes that detect a fault
// themselves, such as a script VM or a crashed child process.
type Signal struct {
	Kind   Kind
	Addr   uintptr
	Code   ArithCode
	Reason string
	PID    int
	Origin string
	Stack  []byte
	Cause  any
}

func (s *Signal) Error() string {
	return fmt.Sprintf("%v: %s", s.Kind, s.Reason)
}

func Raise(sig *Signal) {
	panic(sig)
}
