// hotswap-child is a module served over the exec protocol. Run it with
// "hotswap exec:/path/to/hotswap-child".
package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/wnxd/hotswap/child"
)

func main() {
	var count uint64
	err := child.Serve(child.Module{
		Init: func() {
			fmt.Println("child ready")
		},
		Update: func() {
			count++
			fmt.Printf("child update #%d\n", count)
		},
		PreReload: func() []byte {
			return binary.LittleEndian.AppendUint64(nil, count)
		},
		PostReload: func(state []byte) {
			if len(state) == 8 {
				count = binary.LittleEndian.Uint64(state)
			}
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
