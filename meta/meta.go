// Package meta resolves the metadata of a single template file: its
// front-matter, the context and functions it declares and its partial
// directories.
package meta

import (
	"maps"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/cpcf/measy/cache"
	"github.com/cpcf/measy/errs"
	"github.com/cpcf/measy/frontmatter"
	"github.com/cpcf/measy/source"
)

// Metadata is everything measy knows about a template before rendering it.
// Values are shared between callers through the cache and must not be
// modified.
type Metadata struct {
	// Content is the raw file text, front-matter included.
	Content string
	// Body is the text following the front-matter block.
	Body            string
	Context         map[string]any
	Functions       map[string]any
	PartialDirs     []string
	TargetExtension string
}

type Processor struct {
	fs       afero.Fs
	resolver *source.Resolver
	cache    *cache.Cache[string, *Metadata]
	logger   zerolog.Logger
}

type Option func(*Processor)

func WithFs(fs afero.Fs) Option {
	return func(p *Processor) {
		p.fs = fs
	}
}

// WithResolver sets the resolver front-matter sources are loaded through.
// It should read from the same filesystem as the processor.
func WithResolver(r *source.Resolver) Option {
	return func(p *Processor) {
		p.resolver = r
	}
}

func WithCache(c *cache.Cache[string, *Metadata]) Option {
	return func(p *Processor) {
		p.cache = c
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

func New(opts ...Option) *Processor {
	p := &Processor{
		fs:     afero.NewOsFs(),
		cache:  cache.New[string, *Metadata](),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.resolver == nil {
		p.resolver = source.NewResolver(source.NewLoader(source.WithFs(p.fs), source.WithLogger(p.logger)))
	}
	return p
}

// Process reads the template at path and resolves its front-matter. Paths
// named in the front-matter are relative to the template's directory unless
// absolute. Results are memoized per absolute path.
func (p *Processor) Process(path string) (*Metadata, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errs.NewIOError("resolve", path, err)
	}

	return p.cache.GetOrCompute(abs, func() (*Metadata, error) {
		return p.process(abs)
	})
}

func (p *Processor) process(path string) (*Metadata, error) {
	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return nil, errs.NewIOError("read", path, err)
	}

	content := string(data)
	doc, err := frontmatter.Split(content)
	if err != nil {
		if parseErr, ok := err.(*errs.ParseError); ok {
			parseErr.Path = path
		}
		return nil, err
	}

	dir := filepath.Dir(path)
	attrs := doc.Attributes

	ctx, err := p.context(resolveAll(dir, attrs.ContextFiles), resolveAll(dir, attrs.RootContextFiles))
	if err != nil {
		return nil, err
	}

	funcs, err := p.functions(resolveAll(dir, attrs.FunctionFiles), resolveAll(dir, attrs.RootFunctionFiles))
	if err != nil {
		return nil, err
	}

	md := &Metadata{
		Content:         content,
		Body:            doc.Body,
		Context:         ctx,
		Functions:       funcs,
		PartialDirs:     resolveAll(dir, attrs.PartialDirs),
		TargetExtension: attrs.TargetExtension,
	}

	p.logger.Debug().
		Str("path", path).
		Int("context_keys", len(ctx)).
		Int("functions", len(funcs)).
		Strs("partial_dirs", md.PartialDirs).
		Msg("processed metadata")

	return md, nil
}

func (p *Processor) context(files, rootFiles []string) (map[string]any, error) {
	ctx, err := p.resolver.Context(files, false)
	if err != nil {
		return nil, err
	}
	root, err := p.resolver.Context(rootFiles, true)
	if err != nil {
		return nil, err
	}
	maps.Copy(ctx, root)
	return ctx, nil
}

func (p *Processor) functions(files, rootFiles []string) (map[string]any, error) {
	funcs, err := p.resolver.Functions(files, false)
	if err != nil {
		return nil, err
	}
	root, err := p.resolver.Functions(rootFiles, true)
	if err != nil {
		return nil, err
	}
	maps.Copy(funcs, root)
	return funcs, nil
}

func resolveAll(dir string, paths frontmatter.PathList) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		out = append(out, filepath.Clean(p))
	}
	return out
}
