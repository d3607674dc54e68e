package reload

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/wnxd/hotswap/internal/ctxlog"
)

// Command runs an external build step before each reload.
type Command struct {
	Name   string
	Args   []string
	Dir    string
	Output io.Writer
}

func (c *Command) Recompile(ctx context.Context) error {
	if c.Name == "" {
		return nil
	}
	out := c.Output
	if out == nil {
		out = os.Stderr
	}
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = out
	cmd.Stderr = out
	start := time.Now()
	err := cmd.Run()
	ctxlog.FromContext(ctx).Debug("recompile finished", "command", c.Name, "elapsed", time.Since(start), "error", err)
	if err != nil {
		return fmt.Errorf("recompile %s: %w", c.Name, err)
	}
	return nil
}
