// Package demo registers builtin:demo, a counter module used when no module
// is built yet and by the end-to-end tests.
package demo

import (
	"fmt"
	"io"
	"os"

	"github.com/wnxd/hotswap/module"
	"github.com/wnxd/hotswap/module/builtin"
)

const Name = "demo"

type counter struct {
	out   io.Writer
	count int
}

func init() {
	Register(os.Stdout)
}

// Register (re)publishes the demo module writing to out.
func Register(out io.Writer) {
	c := &counter{out: out}
	builtin.Register(Name, map[string]module.Symbol{
		module.SymInit:       c.init,
		module.SymUpdate:     c.update,
		module.SymPreReload:  c.preReload,
		module.SymPostReload: c.postReload,
		module.SymPrint:      c.print,
	})
}

func (c *counter) init() {
	fmt.Fprintln(c.out, "ready")
}

func (c *counter) update() {
	c.count++
	fmt.Fprintf(c.out, "update #%d\n", c.count)
}

func (c *counter) preReload() module.State {
	return c.count
}

func (c *counter) postReload(state module.State) {
	if n, ok := state.(int); ok {
		c.count = n
	}
}

func (c *counter) print() {
	fmt.Fprintf(c.out, "demo counter at %d\n", c.count)
}
