package supervisor

import (
	"os"
	"strings"
)

type ProcessInfo struct {
	Program string
	PID     int
	PPID    int
	WorkDir string
	Env     []string
}

var reportedEnv = []string{"PATH=", "LD_LIBRARY_PATH="}

func CurrentProcess() ProcessInfo {
	info := ProcessInfo{
		PID:  os.Getpid(),
		PPID: os.Getppid(),
	}
	if exe, err := os.Executable(); err == nil {
		info.Program = exe
	}
	if wd, err := os.Getwd(); err == nil {
		info.WorkDir = wd
	}
	for _, kv := range os.Environ() {
		for _, prefix := range reportedEnv {
			if strings.HasPrefix(kv, prefix) {
				info.Env = append(info.Env, kv)
			}
		}
	}
	return info
}
