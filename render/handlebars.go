package render

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/aymerick/raymond"
	"github.com/aymerick/raymond/ast"
	"github.com/aymerick/raymond/parser"
)

// HandlebarsEngine renders Handlebars templates with raymond. Functions are
// registered as helpers and partials by name.
type HandlebarsEngine struct{}

func NewHandlebarsEngine() *HandlebarsEngine {
	return &HandlebarsEngine{}
}

func (e *HandlebarsEngine) Name() string {
	return Handlebars
}

func (e *HandlebarsEngine) Render(req *Request) (string, error) {
	tpl, err := raymond.Parse(req.Source)
	if err != nil {
		return "", renderError(Handlebars, req.Path, err)
	}

	if err := registerHandlebars(tpl, req); err != nil {
		return "", renderError(Handlebars, req.Path, err)
	}

	out, err := tpl.Exec(req.Context)
	if err != nil {
		return "", renderError(Handlebars, req.Path, err)
	}
	return out, nil
}

// raymond reports registration problems by panicking.
func registerHandlebars(tpl *raymond.Template, req *Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	for _, name := range sortedKeys(req.Partials) {
		tpl.RegisterPartial(name, req.Partials[name])
	}

	if len(req.Functions) == 0 {
		return nil
	}
	arities, err := helperArities(req.Source)
	if err != nil {
		return err
	}

	helpers := make(map[string]any, len(req.Functions))
	for _, name := range sortedKeys(req.Functions) {
		helper, err := handlebarsHelper(req.Functions[name], arities[name])
		if err != nil {
			return fmt.Errorf("helper %s: %w", name, err)
		}
		if helper != nil {
			helpers[name] = helper
		}
	}
	if len(helpers) > 0 {
		tpl.RegisterHelpers(helpers)
	}
	return nil
}

var optionsType = reflect.TypeOf((*raymond.Options)(nil))

// handlebarsHelper adapts fn to raymond's helper contract. raymond binds
// template arguments to parameters one to one, optionally followed by the
// options, so a function with a single result and fixed parameters is used
// as-is. Any other function (variadic, or returning an error) is wrapped in a
// helper taking exactly as many arguments as the template passes it; arities
// lists the argument counts of its call sites. A non-empty hash is passed as a
// trailing map argument. The helper is nil when the template never calls fn.
func handlebarsHelper(fn any, arities []int) (any, error) {
	v := reflect.ValueOf(fn)
	if fn == nil || v.Kind() != reflect.Func {
		return nil, fmt.Errorf("not a function: %T", fn)
	}

	t := v.Type()
	if t.NumOut() == 1 && !t.IsVariadic() {
		return fn, nil
	}

	switch len(arities) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("called with %d different argument counts %v; handlebars helpers take a fixed number of arguments", len(arities), arities)
	}

	in := make([]reflect.Type, 0, arities[0]+1)
	for n := 0; n < arities[0]; n++ {
		in = append(in, anyType)
	}
	in = append(in, optionsType)
	helperType := reflect.FuncOf(in, []reflect.Type{anyType}, false)

	helper := reflect.MakeFunc(helperType, func(params []reflect.Value) []reflect.Value {
		options := params[len(params)-1].Interface().(*raymond.Options)
		args := make([]any, 0, len(params))
		for _, p := range params[:len(params)-1] {
			args = append(args, p.Interface())
		}
		if hash := options.Hash(); len(hash) > 0 {
			args = append(args, hash)
		}

		out, err := callFunc(v, args)
		if err != nil {
			// Exec recovers this into its returned error.
			panic(err)
		}
		return []reflect.Value{reflect.ValueOf(&out).Elem()}
	})
	return helper.Interface(), nil
}

// helperArities parses source and returns, per helper name, the distinct
// numbers of positional arguments it is called with.
func helperArities(source string) (map[string][]int, error) {
	program, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}

	seen := map[string]map[int]bool{}
	walkHandlebars(program, seen)

	arities := make(map[string][]int, len(seen))
	for name, counts := range seen {
		for n := range counts {
			arities[name] = append(arities[name], n)
		}
		sort.Ints(arities[name])
	}
	return arities, nil
}

func walkHandlebars(node ast.Node, seen map[string]map[int]bool) {
	switch n := node.(type) {
	case *ast.Program:
		if n == nil {
			return
		}
		for _, child := range n.Body {
			walkHandlebars(child, seen)
		}
	case *ast.MustacheStatement:
		walkExpression(n.Expression, seen)
	case *ast.BlockStatement:
		walkExpression(n.Expression, seen)
		walkHandlebars(n.Program, seen)
		walkHandlebars(n.Inverse, seen)
	case *ast.PartialStatement:
		for _, param := range n.Params {
			walkHandlebars(param, seen)
		}
		walkHash(n.Hash, seen)
	case *ast.SubExpression:
		walkExpression(n.Expression, seen)
	case *ast.Expression:
		walkExpression(n, seen)
	}
}

func walkExpression(expr *ast.Expression, seen map[string]map[int]bool) {
	if expr == nil {
		return
	}
	if name := expr.HelperName(); name != "" {
		if seen[name] == nil {
			seen[name] = map[int]bool{}
		}
		seen[name][len(expr.Params)] = true
	}
	for _, param := range expr.Params {
		walkHandlebars(param, seen)
	}
	walkHash(expr.Hash, seen)
}

func walkHash(hash *ast.Hash, seen map[string]map[int]bool) {
	if hash == nil {
		return
	}
	for _, pair := range hash.Pairs {
		walkHandlebars(pair.Val, seen)
	}
}
