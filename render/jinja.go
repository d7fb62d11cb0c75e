package render

import (
	"fmt"
	"maps"

	"github.com/nikolalohinski/gonja"
)

// maxPartialDepth bounds partials rendering partials.
const maxPartialDepth = 32

// JinjaEngine renders Jinja2 (and Nunjucks-compatible) templates with gonja.
// Functions are available as globals and partials through
// {{ partial("name") }}, rendered with the same context.
type JinjaEngine struct{}

func NewJinjaEngine() *JinjaEngine {
	return &JinjaEngine{}
}

func (e *JinjaEngine) Name() string {
	return Jinja
}

func (e *JinjaEngine) Render(req *Request) (string, error) {
	tpl, err := gonja.FromString(req.Source)
	if err != nil {
		return "", renderError(Jinja, req.Path, err)
	}

	ctx := gonja.Context{}
	maps.Copy(ctx, req.Functions)
	ctx["partial"] = e.partialFunc(req, ctx)
	maps.Copy(ctx, req.Context)

	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", renderError(Jinja, req.Path, err)
	}
	return out, nil
}

func (e *JinjaEngine) partialFunc(req *Request, ctx gonja.Context) func(string) (string, error) {
	depth := 0
	return func(name string) (string, error) {
		src, ok := req.Partials[name]
		if !ok {
			return "", fmt.Errorf("partial %q not found", name)
		}
		if depth >= maxPartialDepth {
			return "", fmt.Errorf("partial %q: nesting deeper than %d", name, maxPartialDepth)
		}

		tpl, err := gonja.FromString(src)
		if err != nil {
			return "", fmt.Errorf("partial %s: %w", name, err)
		}

		depth++
		defer func() { depth-- }()
		return tpl.Execute(ctx)
	}
}
