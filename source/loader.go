// Package source loads context and function sources: data files (JSON with
// comments, YAML, TOML, dotenv, extension-less text) and, when explicitly
// enabled, Go plugins.
package source

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/cpcf/measy/cache"
	"github.com/cpcf/measy/errs"
)

// Loader reads and parses sources, memoizing results per absolute path.
type Loader struct {
	fs          afero.Fs
	cache       *cache.Cache[string, any]
	codeModules bool
	openModule  func(path string) (any, error)
	logger      zerolog.Logger
}

type LoaderOption func(*Loader)

// WithFs sets the filesystem sources are read from.
func WithFs(fs afero.Fs) LoaderOption {
	return func(l *Loader) {
		l.fs = fs
	}
}

// WithCache replaces the memoization cache.
func WithCache(c *cache.Cache[string, any]) LoaderOption {
	return func(l *Loader) {
		l.cache = c
	}
}

// WithCodeModules allows loading Go plugins (.so). Plugins run arbitrary code
// inside the process, so only enable this for trusted sources.
func WithCodeModules(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.codeModules = enabled
	}
}

// WithModuleOpener replaces plugin loading, mostly for tests.
func WithModuleOpener(open func(path string) (any, error)) LoaderOption {
	return func(l *Loader) {
		l.openModule = open
	}
}

func WithLogger(logger zerolog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:         afero.NewOsFs(),
		cache:      cache.New[string, any](),
		openModule: openPlugin,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the parsed content of the source at path.
func (l *Loader) Load(path string) (any, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errs.NewIOError("resolve", path, err)
	}

	kind := KindOf(abs)
	switch kind {
	case KindUnsupported:
		return nil, &errs.UnsupportedSourceError{Path: abs, Extension: filepath.Ext(abs)}
	case KindModule:
		if !l.codeModules {
			return nil, &errs.UnsupportedSourceError{
				Path:      abs,
				Extension: filepath.Ext(abs),
				Reason:    "code modules execute arbitrary code and must be enabled explicitly",
			}
		}
	}

	return l.cache.GetOrCompute(abs, func() (any, error) {
		return l.load(abs, kind)
	})
}

func (l *Loader) load(path string, kind Kind) (any, error) {
	if kind == KindModule {
		l.logger.Debug().Str("path", path).Msg("opening code module")
		return l.openModule(path)
	}

	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, errs.NewIOError("read", path, err)
	}

	v, err := parse(kind, data)
	if err != nil {
		if parseErr, ok := err.(*errs.ParseError); ok {
			parseErr.Path = path
			return nil, parseErr
		}
		return nil, &errs.ParseError{Path: path, Message: "cannot parse " + kind.String() + " source", Errs: []error{err}}
	}

	l.logger.Debug().Str("path", path).Stringer("kind", kind).Msg("loaded source")
	return v, nil
}
