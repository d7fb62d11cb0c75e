package render

import (
	"strings"
	"text/template"

	"github.com/rs/zerolog"
)

// GoTemplateEngine renders text/template templates. Partials become named
// templates and functions are added to the built-in FuncMap.
type GoTemplateEngine struct {
	logger zerolog.Logger
}

func NewGoTemplateEngine(logger zerolog.Logger) *GoTemplateEngine {
	return &GoTemplateEngine{logger: logger}
}

func (e *GoTemplateEngine) Name() string {
	return GoTemplate
}

func (e *GoTemplateEngine) Render(req *Request) (string, error) {
	funcs, skipped := mergeFuncs(req.Functions)
	if len(skipped) > 0 {
		e.logger.Warn().Str("template", req.Path).Strs("functions", skipped).
			Msg("functions cannot be called from Go templates and were skipped")
	}

	tmpl, err := template.New(req.Path).Funcs(funcs).Option("missingkey=default").Parse(req.Source)
	if err != nil {
		return "", renderError(GoTemplate, req.Path, err)
	}

	if err := registerPartials(tmpl, req.Partials); err != nil {
		return "", renderError(GoTemplate, req.Path, err)
	}
	e.logger.Trace().Str("template", req.Path).Strs("partials", templateNames(tmpl)).Msg("parsed template")

	var buf strings.Builder
	if err := tmpl.Execute(&buf, req.Context); err != nil {
		return "", renderError(GoTemplate, req.Path, err)
	}
	return buf.String(), nil
}
