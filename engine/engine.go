// Package engine renders template files and writes the results, resolving
// each template's front-matter, context, functions and partials on the way.
package engine

import (
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/cpcf/measy/meta"
	"github.com/cpcf/measy/postprocess"
	"github.com/cpcf/measy/render"
	"github.com/cpcf/measy/scan"
	"github.com/cpcf/measy/source"
	"github.com/cpcf/measy/write"
)

type Engine struct {
	fs             afero.Fs
	logger         zerolog.Logger
	failMode       FailureMode
	concurrency    int
	codeModules    bool
	moduleOpener   func(path string) (any, error)
	reporter       Reporter
	registry       *render.Registry
	writer         write.Writer
	writeOptions   write.Options
	postprocessors *postprocess.Chain
	caches         *caches

	resolver *source.Resolver
	meta     *meta.Processor
	scanner  *scan.Scanner
	indexer  *scan.Indexer
}

type FailureMode int

const (
	// FailFast returns the first error of a batch. Templates already started
	// still finish and may write their output.
	FailFast FailureMode = iota
	// FailAtEnd processes every template and returns all failures as a
	// *MultiError.
	FailAtEnd
	// BestEffort logs failures and reports success.
	BestEffort
)

func (m FailureMode) String() string {
	switch m {
	case FailFast:
		return "fail-fast"
	case FailAtEnd:
		return "fail-at-end"
	case BestEffort:
		return "best-effort"
	default:
		return "unknown"
	}
}

// Reporter is told about every file written.
type Reporter func(path string)

func New(opts ...Option) *Engine {
	e := &Engine{
		fs:             afero.NewOsFs(),
		logger:         zerolog.Nop(),
		failMode:       FailFast,
		concurrency:    runtime.GOMAXPROCS(0),
		writeOptions:   write.DefaultOptions,
		postprocessors: postprocess.NewChain(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.registry == nil {
		e.registry = render.DefaultRegistry(e.logger)
	}
	if e.writer == nil {
		e.writer = write.NewBaseWriter(e.fs)
	}
	if e.caches == nil {
		e.caches = newCaches()
	}

	loaderOpts := []source.LoaderOption{
		source.WithFs(e.fs),
		source.WithCache(e.caches.sources),
		source.WithCodeModules(e.codeModules),
		source.WithLogger(e.logger),
	}
	if e.moduleOpener != nil {
		loaderOpts = append(loaderOpts, source.WithModuleOpener(e.moduleOpener))
	}
	e.resolver = source.NewResolver(source.NewLoader(loaderOpts...))

	e.meta = meta.New(
		meta.WithFs(e.fs),
		meta.WithResolver(e.resolver),
		meta.WithCache(e.caches.metadata),
		meta.WithLogger(e.logger),
	)
	e.scanner = scan.NewScanner(e.meta,
		scan.WithFs(e.fs),
		scan.WithLogger(e.logger),
		scan.WithConcurrency(e.concurrency),
	)
	e.indexer = scan.NewIndexer(
		scan.WithIndexFs(e.fs),
		scan.WithIndexCache(e.caches.partials),
	)

	return e
}

// Registry returns the engines templates can be rendered with.
func (e *Engine) Registry() *render.Registry {
	return e.registry
}

// AddPostProcessor adds a post-processor to the processing chain.
// Processors are applied in the order they are added.
func (e *Engine) AddPostProcessor(processor postprocess.Processor) {
	e.postprocessors.Add(processor)
}

// AddPostProcessorFunc adds a function as a post-processor to the processing chain.
func (e *Engine) AddPostProcessorFunc(fn func(path string, content []byte) ([]byte, error)) {
	e.postprocessors.AddFunc(fn)
}

// Reset forgets every memoized source, metadata record and partial index so
// the next run reads files again.
func (e *Engine) Reset() {
	e.caches.clear()
}
