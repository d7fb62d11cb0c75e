package render

import (
	"github.com/cbroglie/mustache"
	"github.com/rs/zerolog"
)

// MustacheEngine renders logic-less Mustache templates. Mustache has no
// helpers, so functions are ignored.
type MustacheEngine struct {
	logger zerolog.Logger
}

func NewMustacheEngine(logger zerolog.Logger) *MustacheEngine {
	return &MustacheEngine{logger: logger}
}

func (e *MustacheEngine) Name() string {
	return Mustache
}

func (e *MustacheEngine) Render(req *Request) (string, error) {
	if len(req.Functions) > 0 {
		e.logger.Debug().Str("template", req.Path).Int("functions", len(req.Functions)).
			Msg("mustache templates cannot call functions")
	}

	partials := &mustache.StaticProvider{Partials: req.Partials}
	out, err := mustache.RenderPartials(req.Source, partials, req.Context)
	if err != nil {
		return "", renderError(Mustache, req.Path, err)
	}
	return out, nil
}
