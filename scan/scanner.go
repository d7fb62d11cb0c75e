package scan

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/cpcf/measy/errs"
	"github.com/cpcf/measy/meta"
)

type Request struct {
	Dir               string
	TemplateExtension string
	// PartialDirs are excluded from the template set in addition to the
	// partial directories templates declare in their front-matter.
	PartialDirs  []string
	ExcludePaths []string
}

type Result struct {
	// TemplateFiles are absolute and sorted.
	TemplateFiles []string
	// PartialDirs are absolute, in first-seen order: front-matter declarations
	// in template order, then the requested ones.
	PartialDirs []string
}

// Scanner finds the template files of a directory tree.
type Scanner struct {
	fs          afero.Fs
	meta        *meta.Processor
	logger      zerolog.Logger
	concurrency int
}

type Option func(*Scanner)

func WithFs(fs afero.Fs) Option {
	return func(s *Scanner) {
		s.fs = fs
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithConcurrency bounds how many templates have their metadata read at once.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func NewScanner(processor *meta.Processor, opts ...Option) *Scanner {
	s := &Scanner{
		fs:          afero.NewOsFs(),
		meta:        processor,
		logger:      zerolog.Nop(),
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan lists the templates under req.Dir in two passes. The first pass skips
// the excluded paths and the requested partial directories and reads the
// metadata of every file found, collecting the partial directories they
// declare. The second pass lists again, skipping every partial directory.
//
// Partial directories declared by files that only the second pass would
// reach are not discovered.
func (s *Scanner) Scan(ctx context.Context, req Request) (*Result, error) {
	if req.TemplateExtension == "" {
		return nil, errs.NewConfigurationError("template-extension", "Template extension is required")
	}

	dir, err := filepath.Abs(req.Dir)
	if err != nil {
		return nil, errs.NewIOError("resolve", req.Dir, err)
	}
	exts := []string{req.TemplateExtension}

	candidates, err := List(s.fs, dir, ListOptions{
		Extensions: exts,
		Ignore:     append(append([]string{}, req.ExcludePaths...), literalPatterns(distinctRelative(dir, req.PartialDirs))...),
	})
	if err != nil {
		return nil, err
	}

	declared, err := s.declaredPartialDirs(ctx, candidates)
	if err != nil {
		return nil, err
	}

	partialDirs := distinctRelative(dir, append(declared, req.PartialDirs...))

	files, err := List(s.fs, dir, ListOptions{
		Extensions: exts,
		Ignore:     append(append([]string{}, req.ExcludePaths...), literalPatterns(partialDirs)...),
	})
	if err != nil {
		return nil, err
	}

	result := &Result{TemplateFiles: files, PartialDirs: make([]string, len(partialDirs))}
	for i, rel := range partialDirs {
		result.PartialDirs[i] = filepath.Join(dir, rel)
	}

	s.logger.Debug().
		Str("dir", dir).
		Int("candidates", len(candidates)).
		Int("templates", len(files)).
		Strs("partial_dirs", result.PartialDirs).
		Msg("scanned directory")

	return result, nil
}

func (s *Scanner) declaredPartialDirs(ctx context.Context, files []string) ([]string, error) {
	perFile := make([][]string, len(files))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			md, err := s.meta.Process(file)
			if err != nil {
				return err
			}
			perFile[i] = md.PartialDirs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []string
	for _, dirs := range perFile {
		out = append(out, dirs...)
	}
	return out, nil
}

func distinctRelative(dir string, paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if filepath.IsAbs(p) {
			if rel, err := filepath.Rel(dir, p); err == nil {
				p = rel
			}
		}
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// literalPatterns turns paths into patterns matching exactly those paths.
func literalPatterns(rels []string) []string {
	out := make([]string, len(rels))
	for i, rel := range rels {
		out[i] = escape(filepath.ToSlash(rel))
	}
	return out
}
