package engine

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/cpcf/measy/cache"
	"github.com/cpcf/measy/postprocess"
	"github.com/cpcf/measy/render"
	"github.com/cpcf/measy/write"
)

type Option func(*Engine)

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithFs sets the filesystem templates, sources and outputs live on.
func WithFs(fs afero.Fs) Option {
	return func(e *Engine) {
		e.fs = fs
	}
}

func WithFailureMode(mode FailureMode) Option {
	return func(e *Engine) {
		e.failMode = mode
	}
}

// WithConcurrency bounds how many templates are processed at once.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithCodeModules allows Go plugins as context and function sources. Plugins
// run arbitrary code when loaded; only enable this for trusted inputs.
func WithCodeModules(enabled bool) Option {
	return func(e *Engine) {
		e.codeModules = enabled
	}
}

// WithModuleOpener replaces how code modules are opened.
func WithModuleOpener(open func(path string) (any, error)) Option {
	return func(e *Engine) {
		e.moduleOpener = open
	}
}

func WithReporter(r Reporter) Option {
	return func(e *Engine) {
		e.reporter = r
	}
}

func WithRegistry(r *render.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

func WithWriter(w write.Writer, options write.Options) Option {
	return func(e *Engine) {
		e.writer = w
		e.writeOptions = options
	}
}

func WithPostProcessors(chain *postprocess.Chain) Option {
	return func(e *Engine) {
		if chain != nil {
			e.postprocessors = chain
		}
	}
}

// WithCacheOptions configures the source, metadata and partial caches.
func WithCacheOptions(opts ...cache.Option) Option {
	return func(e *Engine) {
		e.caches = newCaches(opts...)
	}
}
