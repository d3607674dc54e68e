package luamod

import (
	"fmt"

	"github.com/Shopify/go-lua"
	"github.com/wnxd/hotswap/supervisor"
)

var library = []lua.RegistryFunction{
	{Name: "print", Function: libPrint},
	{Name: "abort", Function: libAbort},
	{Name: "idiv", Function: libIntDivide},
}

func openLibrary(l *lua.State) int {
	lua.NewLibrary(l, library)
	return 1
}

func libPrint(l *lua.State) int {
	n := l.Top()
	for i := 1; i <= n; i++ {
		if i > 1 {
			fmt.Fprint(Output, "\t")
		}
		if v, err := toGo(l, i); err == nil {
			fmt.Fprint(Output, v)
		} else {
			fmt.Fprint(Output, lua.TypeNameOf(l, i))
		}
	}
	fmt.Fprintln(Output)
	return 0
}

func libAbort(l *lua.State) int {
	supervisor.Raise(&supervisor.Signal{
		Kind:   supervisor.Kind_Abort,
		Reason: lua.OptString(l, 1, "abort requested"),
	})
	return 0
}

func libIntDivide(l *lua.State) int {
	a, b := lua.CheckInteger(l, 1), lua.CheckInteger(l, 2)
	if b == 0 {
		supervisor.Raise(&supervisor.Signal{
			Kind:   supervisor.Kind_Arithmetic,
			Code:   supervisor.ArithCode_IntDivide,
			Reason: "integer divide by zero",
		})
	}
	l.PushInteger(a / b)
	return 1
}
