package render

import (
	"fmt"
	"reflect"
)

// callFunc calls fn with args, converting each argument to the parameter type
// where Go allows it. A trailing error result is returned as the error.
func callFunc(fn reflect.Value, args []any) (any, error) {
	t := fn.Type()

	in := make([]reflect.Value, 0, len(args))
	for i, arg := range args {
		var want reflect.Type
		switch {
		case t.IsVariadic() && i >= t.NumIn()-1:
			want = t.In(t.NumIn() - 1).Elem()
		case i < t.NumIn():
			want = t.In(i)
		default:
			return nil, fmt.Errorf("too many arguments: want %d, got %d", t.NumIn(), len(args))
		}

		v, err := convertArg(arg, want)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		in = append(in, v)
	}

	required := t.NumIn()
	if t.IsVariadic() {
		required--
	}
	if len(in) < required {
		return nil, fmt.Errorf("not enough arguments: want %d, got %d", required, len(in))
	}

	out := fn.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		last := out[len(out)-1]
		if last.Type() == errorType && !last.IsNil() {
			return nil, last.Interface().(error)
		}
		return out[0].Interface(), nil
	}
}

func convertArg(arg any, want reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(want), nil
	}

	v := reflect.ValueOf(arg)
	switch {
	case v.Type().AssignableTo(want):
		return v, nil
	case v.Type().ConvertibleTo(want) && v.Kind() != reflect.String && want.Kind() != reflect.String:
		return v.Convert(want), nil
	case v.Kind() == reflect.String && want.Kind() == reflect.String:
		return v.Convert(want), nil
	default:
		return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, want)
	}
}
