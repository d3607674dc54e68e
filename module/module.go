package module

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

type Symbol = any

// State is the token a module hands to its successor across a reload. The
// host never looks inside it.
type State = any

type SymbolIter interface {
	Symbols(yield func(string) bool)
}

type Unit interface {
	io.Closer
	Name() string
	Lookup(name string) (Symbol, error)
}

type Opener func(ctx context.Context, path string) (Unit, error)

var (
	mu      sync.RWMutex
	openers = make(map[string]Opener)
	extMap  = make(map[string]string)
)

// Register binds a loader to a path scheme ("builtin:name") and, optionally,
// to file extensions (".lua").
func Register(scheme string, open Opener, exts ...string) bool {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := openers[scheme]; ok {
		return false
	}
	openers[scheme] = open
	for _, ext := range exts {
		extMap[ext] = scheme
	}
	return true
}

func Open(ctx context.Context, path string) (Unit, error) {
	open, target, err := lookupOpener(path)
	if err != nil {
		return nil, err
	}
	return open(ctx, target)
}

func lookupOpener(path string) (Opener, string, error) {
	mu.RLock()
	defer mu.RUnlock()
	if scheme, rest, ok := strings.Cut(path, ":"); ok {
		if open, ok := openers[scheme]; ok {
			return open, rest, nil
		}
	}
	if scheme, ok := extMap[filepath.Ext(path)]; ok {
		return openers[scheme], path, nil
	}
	return nil, "", ErrLoaderNotFound
}
