package source

import (
	"fmt"
	"maps"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/cpcf/measy/casing"
	"github.com/cpcf/measy/errs"
)

// Resolver merges loaded sources into template context and function tables.
type Resolver struct {
	loader *Loader
}

func NewResolver(loader *Loader) *Resolver {
	return &Resolver{loader: loader}
}

// Loader returns the loader sources are read through.
func (r *Resolver) Loader() *Loader {
	return r.loader
}

// Key is the name a source is nested under: its base name without extension,
// in camelCase. "path/my-data.json" -> "myData".
func Key(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		name = strings.TrimPrefix(base, ".")
	}
	return casing.Camel(name)
}

// Context loads sources in order and merges them. With root set the keys of
// each source are merged directly; otherwise each source is nested under its
// Key. Merging is shallow and later sources win. No sources yields an empty
// map.
func (r *Resolver) Context(sources []string, root bool) (map[string]any, error) {
	out := map[string]any{}
	for _, src := range sources {
		v, err := r.loader.Load(src)
		if err != nil {
			return nil, err
		}

		if !root {
			out[Key(src)] = v
			continue
		}

		m, ok := asMap(v)
		if !ok {
			return nil, &errs.ParseError{
				Path:    src,
				Message: fmt.Sprintf("root context source must contain a mapping, got %T", v),
			}
		}
		maps.Copy(out, m)
	}
	return out, nil
}

// Functions loads function sources in order and merges their callables. With
// root set callables keep their names; otherwise each is renamed to the
// source Key followed by the capitalized name ("helper.yaml" exporting "uc"
// becomes "helperUc").
func (r *Resolver) Functions(sources []string, root bool) (map[string]any, error) {
	out := map[string]any{}
	for _, src := range sources {
		funcs, err := r.functionsOf(src)
		if err != nil {
			return nil, err
		}

		if root {
			maps.Copy(out, funcs)
			continue
		}

		key := Key(src)
		for name, fn := range funcs {
			out[key+casing.UcFirst(name)] = fn
		}
	}
	return out, nil
}

func (r *Resolver) functionsOf(src string) (map[string]any, error) {
	v, err := r.loader.Load(src)
	if err != nil {
		return nil, err
	}

	m, ok := asMap(v)
	if !ok {
		return nil, &errs.ParseError{
			Path:    src,
			Message: fmt.Sprintf("function source must map names to functions or jq expressions, got %T", v),
		}
	}

	funcs := make(map[string]any, len(m))
	for name, value := range m {
		switch fn := value.(type) {
		case string:
			compiled, err := compileJQ(fn)
			if err != nil {
				return nil, &errs.ParseError{
					Path:    src,
					Message: fmt.Sprintf("function %q", name),
					Errs:    []error{err},
				}
			}
			funcs[name] = compiled
		default:
			if value == nil || reflect.TypeOf(value).Kind() != reflect.Func {
				return nil, &errs.ParseError{
					Path:    src,
					Message: fmt.Sprintf("function %q is neither a function nor a jq expression (%T)", name, value),
				}
			}
			funcs[name] = value
		}
	}
	return funcs, nil
}

// asMap accepts any map keyed by strings.
func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
