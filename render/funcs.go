package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"go/token"
	"math"
	"reflect"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cpcf/measy/casing"
)

// FuncMap returns the functions every Go template can call. Functions coming
// from function files are layered on top and replace these on name clashes.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"snake":   casing.Snake,
		"camel":   casing.Camel,
		"pascal":  casing.Pascal,
		"kebab":   casing.Kebab,
		"ucFirst": casing.UcFirst,

		"lower":      strings.ToLower,
		"upper":      strings.ToUpper,
		"trim":       strings.TrimSpace,
		"trimPrefix": strings.TrimPrefix,
		"trimSuffix": strings.TrimSuffix,
		"replace":    strings.ReplaceAll,
		"split":      strings.Split,
		"join":       join,
		"contains":   strings.Contains,
		"hasPrefix":  strings.HasPrefix,
		"hasSuffix":  strings.HasSuffix,
		"repeat":     strings.Repeat,

		"plural":    pluralize,
		"humanize":  humanize,
		"indent":    indentLines,
		"quote":     quote,
		"squote":    singleQuote,
		"comment":   comment,
		"goComment": goComment,
		"truncate":  truncate,

		"add":      add,
		"subtract": subtract,
		"multiply": multiply,
		"divide":   divide,

		"now":        time.Now,
		"formatTime": formatTime,
		"uuid":       generateUUID,

		"default":  defaultValue,
		"coalesce": coalesce,
		"ternary":  ternary,
		"toString": toString,
		"toInt":    toInt,
		"toJson":   toJSON,
		"toYaml":   toYAML,
		"list":     list,
		"dict":     dict,
	}
}

// mergeFuncs layers user functions over the built-ins. Names text/template
// cannot call are reported in skipped.
func mergeFuncs(user map[string]any) (funcs template.FuncMap, skipped []string) {
	funcs = FuncMap()
	for name, fn := range user {
		if !token.IsIdentifier(name) || fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func || !validTemplateFunc(reflect.TypeOf(fn)) {
			skipped = append(skipped, name)
			continue
		}
		funcs[name] = fn
	}
	return funcs, skipped
}

// text/template panics on functions that return nothing, more than two values
// or a second value other than error.
func validTemplateFunc(t reflect.Type) bool {
	switch t.NumOut() {
	case 1:
		return true
	case 2:
		return t.Out(1) == errorType
	default:
		return false
	}
}

var (
	errorType = reflect.TypeOf((*error)(nil)).Elem()
	anyType   = reflect.TypeOf((*any)(nil)).Elem()
)

func join(sep string, items any) string {
	v := reflect.ValueOf(items)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return toString(items)
	}
	parts := make([]string, v.Len())
	for i := range parts {
		parts[i] = toString(v.Index(i).Interface())
	}
	return strings.Join(parts, sep)
}

func defaultValue(def any, given any) any {
	if given == nil {
		return def
	}
	if s, ok := given.(string); ok && s == "" {
		return def
	}
	return given
}

func coalesce(values ...any) any {
	for _, v := range values {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		return v
	}
	return nil
}

func ternary(condition bool, trueVal, falseVal any) any {
	if condition {
		return trueVal
	}
	return falseVal
}

func toString(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}

func toInt(value any) (int, error) {
	f, err := toNumber(value)
	if err != nil {
		return 0, fmt.Errorf("toInt: %w", err)
	}
	return int(f), nil
}

func toJSON(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func toYAML(value any) (string, error) {
	data, err := yaml.Marshal(value)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

func list(items ...any) []any {
	return items
}

func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict requires an even number of arguments, got %d", len(pairs))
	}
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings, got %T", pairs[i])
		}
		out[key] = pairs[i+1]
	}
	return out, nil
}

// Numbers reach templates as float64 (JSON), int (YAML), int64 (TOML) or
// strings (dotenv, --context), so arithmetic accepts any of them and returns
// an int64 when the result is whole.
func arithmetic(name string, op func(x, y float64) (float64, error)) func(a, b any) (any, error) {
	return func(a, b any) (any, error) {
		x, err := toNumber(a)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		y, err := toNumber(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		result, err := op(x, y)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if result == math.Trunc(result) && math.Abs(result) < 1<<53 {
			return int64(result), nil
		}
		return result, nil
	}
}

var (
	add      = arithmetic("add", func(x, y float64) (float64, error) { return x + y, nil })
	subtract = arithmetic("subtract", func(x, y float64) (float64, error) { return x - y, nil })
	multiply = arithmetic("multiply", func(x, y float64) (float64, error) { return x * y, nil })
	divide   = arithmetic("divide", func(x, y float64) (float64, error) {
		if y == 0 {
			return 0, errors.New("division by zero")
		}
		return x / y, nil
	})
)

func toNumber(value any) (float64, error) {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v.String())
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot use %T as a number", value)
	}
}

func formatTime(t time.Time, layout string) string {
	return t.Format(layout)
}

func generateUUID() string {
	return uuid.New().String()
}
