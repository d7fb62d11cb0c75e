package engine

import (
	"context"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cpcf/measy/frontmatter"
	"github.com/cpcf/measy/render"
)

type RenderOptions struct {
	Template string
	Inputs
}

// Render renders a template and returns the result. The whole file,
// front-matter included, goes through the template engine; the front-matter
// block is removed from the result unless IncludeMeta is set.
func (e *Engine) Render(ctx context.Context, opts RenderOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	md, err := e.meta.Process(opts.Template)
	if err != nil {
		return "", err
	}

	ext := strings.TrimPrefix(filepath.Ext(opts.Template), ".")
	name := opts.Engine
	if name == "" {
		name = e.registry.EngineOf(ext)
	}
	eng, err := e.registry.Get(name)
	if err != nil {
		return "", err
	}

	index := map[string]string{}
	partialDirs := append(slices.Clone(md.PartialDirs), opts.PartialDirs...)
	if len(partialDirs) > 0 {
		cached, err := e.indexer.Index(partialDirs, ext)
		if err != nil {
			return "", err
		}
		index = maps.Clone(cached)
	}

	partials, err := render.LoadPartials(e.fs, index)
	if err != nil {
		return "", err
	}

	data, err := e.renderContext(md, opts.Inputs, index)
	if err != nil {
		return "", err
	}
	funcs, err := e.renderFunctions(md, opts.Inputs)
	if err != nil {
		return "", err
	}

	e.logger.Debug().
		Str("template", opts.Template).
		Str("engine", eng.Name()).
		Int("partials", len(partials)).
		Int("functions", len(funcs)).
		Msg("rendering template")

	out, err := eng.Render(&render.Request{
		Path:      opts.Template,
		Source:    md.Content,
		Context:   data,
		Functions: funcs,
		Partials:  partials,
	})
	if err != nil {
		return "", err
	}

	if !opts.IncludeMeta {
		out = frontmatter.Strip(out)
	}
	return out, nil
}
