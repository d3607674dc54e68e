package module

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnitClosed     = errors.New("unit closed")
	ErrLoaderNotFound = errors.New("loader not found")
	ErrSymbolNotFound = errors.New("symbol not found")
	ErrSymbolMismatch = errors.New("symbol type mismatch")
)

type LoadError struct {
	Path string
	Err  error
}

type SymbolMissingError struct {
	Names []string
	Err   error
}

// AbortRequest is the panic value raised by Abort.
type AbortRequest struct {
	Reason string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *SymbolMissingError) Error() string {
	return "missing entry points: " + strings.Join(e.Names, ", ")
}

func (e *SymbolMissingError) Unwrap() error {
	return e.Err
}

func (e *AbortRequest) Error() string {
	return "abort: " + e.Reason
}

// Abort terminates the current entry point call. Under a guarded call it is
// reported as an abnormal termination.
func Abort(reason string) {
	panic(&AbortRequest{Reason: reason})
}
