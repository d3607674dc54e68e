package luamod

import (
	"errors"
	"math"
	"reflect"

	"github.com/Shopify/go-lua"
)

const maxDepth = 200

var (
	errCyclic   = errors.New("cyclic table")
	errTooDeep  = errors.New("value nested too deeply")
	errStack    = errors.New("lua stack exhausted")
	errTableKey = errors.New("unsupported table key")
)

// toGo copies the Lua value at index into a Go value. A table whose keys are
// exactly 1..n becomes []any, one with only string keys map[string]any, and
// any other table map[any]any so numeric keys keep their type. Functions do
// not survive the copy.
func toGo(l *lua.State, index int) (any, error) {
	d := decoder{l: l, seen: make(map[any]struct{})}
	return d.value(l.AbsIndex(index), 0)
}

// push is the inverse of toGo. Unknown Go values are pushed as userdata.
func push(l *lua.State, v any) error {
	e := encoder{l: l, seen: make(map[uintptr]struct{})}
	return e.value(v, 0)
}

func number(n float64) any {
	if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
		return int(n)
	}
	return n
}

type decoder struct {
	l    *lua.State
	seen map[any]struct{}
}

func (d *decoder) value(index, depth int) (any, error) {
	l := d.l
	switch l.TypeOf(index) {
	case lua.TypeBoolean:
		return l.ToBoolean(index), nil
	case lua.TypeNumber:
		n, _ := l.ToNumber(index)
		return number(n), nil
	case lua.TypeString:
		s, _ := l.ToString(index)
		return s, nil
	case lua.TypeTable:
		return d.table(index, depth)
	case lua.TypeUserData, lua.TypeLightUserData:
		return l.ToUserData(index), nil
	}
	return nil, nil
}

// key reads a table key without converting it in place, which would confuse
// Next.
func (d *decoder) key(index int) (any, error) {
	switch d.l.TypeOf(index) {
	case lua.TypeNumber:
		n, _ := d.l.ToNumber(index)
		return number(n), nil
	case lua.TypeString:
		s, _ := d.l.ToString(index)
		return s, nil
	case lua.TypeBoolean:
		return d.l.ToBoolean(index), nil
	}
	return nil, errTableKey
}

func (d *decoder) table(index, depth int) (any, error) {
	l := d.l
	if depth >= maxDepth {
		return nil, errTooDeep
	}
	id := l.ToValue(index)
	if _, ok := d.seen[id]; ok {
		return nil, errCyclic
	}
	d.seen[id] = struct{}{}
	defer delete(d.seen, id)
	if !l.CheckStack(3) {
		return nil, errStack
	}

	entries := make(map[any]any)
	allStrings := true
	l.PushNil()
	for l.Next(index) {
		k, err := d.key(-2)
		var v any
		if err == nil {
			v, err = d.value(l.AbsIndex(-1), depth+1)
		}
		if err != nil {
			l.Pop(2)
			return nil, err
		}
		if _, ok := k.(string); !ok {
			allStrings = false
		}
		entries[k] = v
		l.Pop(1)
	}

	if list, ok := sequence(entries); ok {
		return list, nil
	} else if allStrings {
		m := make(map[string]any, len(entries))
		for k, v := range entries {
			m[k.(string)] = v
		}
		return m, nil
	}
	return entries, nil
}

func sequence(entries map[any]any) ([]any, bool) {
	if len(entries) == 0 {
		return nil, false
	}
	list := make([]any, len(entries))
	for i := range list {
		v, ok := entries[i+1]
		if !ok {
			return nil, false
		}
		list[i] = v
	}
	return list, true
}

type encoder struct {
	l    *lua.State
	seen map[uintptr]struct{}
}

func (e *encoder) value(v any, depth int) error {
	l := e.l
	if !l.CheckStack(3) {
		return errStack
	}
	switch v := v.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(v)
	case int:
		l.PushInteger(v)
	case int64:
		l.PushNumber(float64(v))
	case float64:
		l.PushNumber(v)
	case string:
		l.PushString(v)
	case []any:
		leave, err := e.enter(v, depth)
		if err != nil {
			return err
		}
		defer leave()
		l.CreateTable(len(v), 0)
		for i, elem := range v {
			if err := e.value(elem, depth+1); err != nil {
				return err
			}
			l.RawSetInt(-2, i+1)
		}
	case map[string]any:
		leave, err := e.enter(v, depth)
		if err != nil {
			return err
		}
		defer leave()
		l.CreateTable(0, len(v))
		for k, elem := range v {
			if err := e.value(elem, depth+1); err != nil {
				return err
			}
			l.SetField(-2, k)
		}
	case map[any]any:
		leave, err := e.enter(v, depth)
		if err != nil {
			return err
		}
		defer leave()
		l.CreateTable(0, len(v))
		for k, elem := range v {
			switch k.(type) {
			case bool, int, int64, float64, string:
			default:
				return errTableKey
			}
			if err := e.value(k, depth+1); err != nil {
				return err
			}
			if err := e.value(elem, depth+1); err != nil {
				return err
			}
			l.RawSet(-3)
		}
	default:
		l.PushUserData(v)
	}
	return nil
}

func (e *encoder) enter(v any, depth int) (func(), error) {
	if depth >= maxDepth {
		return nil, errTooDeep
	}
	p := reflect.ValueOf(v).Pointer()
	if p == 0 {
		return func() {}, nil
	}
	if _, ok := e.seen[p]; ok {
		return nil, errCyclic
	}
	e.seen[p] = struct{}{}
	return func() { delete(e.seen, p) }, nil
}
