package module

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/modern-go/reflect2"
)

const (
	SymInit       = "hotswap_init"
	SymUpdate     = "hotswap_update"
	SymPreReload  = "hotswap_pre_reload"
	SymPostReload = "hotswap_post_reload"
	SymContinue   = "hotswap_continue"
	SymPrint      = "hotswap_print"
)

// Table is the set of entry points resolved from one unit. Fields tagged with
// "entry" form the module contract.
type Table struct {
	Init       func()          `entry:"hotswap_init,required"`
	Update     func()          `entry:"hotswap_update,required"`
	PreReload  func() State    `entry:"hotswap_pre_reload"`
	PostReload func(State)     `entry:"hotswap_post_reload"`
	Continue   func(byte) bool `entry:"hotswap_continue"`
	Print      func()          `entry:"hotswap_print"`

	Path       string
	Generation uint64
}

func (t Table) Bound() bool {
	return t.Init != nil && t.Update != nil
}

type EntryPoint struct {
	Name     string
	Required bool
	Type     reflect.Type
	field    reflect2.StructField
}

var entryPoints = buildEntryPoints()

func EntryPoints() []EntryPoint {
	return slices.Clone(entryPoints)
}

func buildEntryPoints() []EntryPoint {
	st := reflect2.TypeOf(Table{}).(reflect2.StructType)
	eps := make([]EntryPoint, 0, st.NumField())
	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		tag, ok := field.Tag().Lookup("entry")
		if !ok {
			continue
		}
		name, opt, _ := strings.Cut(tag, ",")
		eps = append(eps, EntryPoint{
			Name:     name,
			Required: opt == "required",
			Type:     field.Type().Type1(),
			field:    field,
		})
	}
	return eps
}

// Resolve binds every entry point of unit into a fresh table. It fails as a
// whole when a required symbol is absent or any exported symbol has the wrong
// signature.
func Resolve(unit Unit) (Table, error) {
	var (
		table   Table
		missing []string
		errs    []error
	)
	for _, ep := range entryPoints {
		sym, err := unit.Lookup(ep.Name)
		if err == nil {
			err = ep.bind(&table, sym)
		}
		if err == nil {
			continue
		} else if !ep.Required && errors.Is(err, ErrSymbolNotFound) {
			continue
		}
		missing = append(missing, ep.Name)
		errs = append(errs, err)
	}
	if len(missing) > 0 {
		return Table{}, &SymbolMissingError{Names: missing, Err: errors.Join(errs...)}
	}
	table.Path = unit.Name()
	return table, nil
}

func (ep EntryPoint) bind(table *Table, sym Symbol) error {
	v := reflect.ValueOf(sym)
	if v.Kind() == reflect.Pointer && v.Type().Elem().Kind() == reflect.Func {
		if v.IsNil() {
			return fmt.Errorf("%w: %s", ErrSymbolNotFound, ep.Name)
		}
		v = v.Elem()
	}
	if !v.IsValid() || (v.Kind() == reflect.Func && v.IsNil()) {
		return fmt.Errorf("%w: %s", ErrSymbolNotFound, ep.Name)
	} else if !v.Type().ConvertibleTo(ep.Type) {
		return fmt.Errorf("%w: %s is %v, want %v", ErrSymbolMismatch, ep.Name, v.Type(), ep.Type)
	}
	val := reflect.New(ep.Type)
	val.Elem().Set(v.Convert(ep.Type))
	ep.field.Set(table, val.Interface())
	return nil
}
