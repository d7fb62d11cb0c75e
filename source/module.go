package source

import (
	"fmt"
	"plugin"
	"reflect"

	"github.com/cpcf/measy/errs"
)

// Symbols looked up in a Go plugin, in order. Package-level variables are
// dereferenced; functions are returned as they are.
var moduleSymbols = []string{"Default", "Exports"}

func openPlugin(path string) (any, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, errs.NewIOError("open plugin", path, err)
	}

	for _, name := range moduleSymbols {
		sym, err := p.Lookup(name)
		if err != nil {
			continue
		}
		return derefSymbol(sym), nil
	}

	return nil, &errs.ParseError{
		Path:    path,
		Message: fmt.Sprintf("plugin exports none of %v", moduleSymbols),
	}
}

func derefSymbol(sym any) any {
	v := reflect.ValueOf(sym)
	if v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Kind() != reflect.Func {
		return v.Elem().Interface()
	}
	return sym
}
