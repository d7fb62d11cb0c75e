package engine

import (
	"context"
	"path/filepath"
	"syscall"

	"github.com/cpcf/measy/errs"
	"github.com/cpcf/measy/scan"
	"github.com/cpcf/measy/write"
)

type WriteOptions struct {
	Inputs
	// Out is the file every template is written to. When empty each template
	// is written next to itself with its extension replaced.
	Out string
	// TargetExtension is used when the template's front-matter has none.
	TargetExtension string
	// Silent suppresses the reporter.
	Silent bool
}

type WriteDirOptions struct {
	Inputs
	TemplateExtension string
	TargetExtension   string
	// Out is the directory outputs are written into, mirroring the layout
	// of the template directory. It defaults to the template directory.
	Out          string
	ExcludePaths []string
	Silent       bool
}

// Write renders templates and writes each result. Templates are processed
// concurrently; directories are rejected.
func (e *Engine) Write(ctx context.Context, templates []string, opts WriteOptions) error {
	return e.forEach(ctx, templates, func(template string) error {
		if info, err := e.fs.Stat(template); err == nil && info.IsDir() {
			return directoryError(template)
		}

		target := opts.Out
		if target == "" {
			md, err := e.meta.Process(template)
			if err != nil {
				if errs.IsDirectory(err) {
					return directoryError(template)
				}
				return err
			}
			target = write.ReplaceExtension(template, firstNonEmpty(md.TargetExtension, opts.TargetExtension))
		}

		err := e.writeTemplate(ctx, template, target, opts.Inputs, opts.Silent)
		if errs.IsDirectory(err) {
			return directoryError(template)
		}
		return err
	})
}

// WriteDir renders every template found under dir and writes the results
// into opts.Out, keeping their relative paths.
func (e *Engine) WriteDir(ctx context.Context, dir string, opts WriteDirOptions) error {
	result, err := e.scanner.Scan(ctx, scan.Request{
		Dir:               dir,
		TemplateExtension: opts.TemplateExtension,
		PartialDirs:       opts.PartialDirs,
		ExcludePaths:      opts.ExcludePaths,
	})
	if err != nil {
		return err
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return errs.NewIOError("resolve", dir, err)
	}
	out := opts.Out
	if out == "" {
		out = root
	}

	inputs := opts.Inputs
	if inputs.Engine == "" {
		inputs.Engine = e.registry.EngineOf(opts.TemplateExtension)
	}

	e.logger.Debug().
		Str("dir", root).
		Int("templates", len(result.TemplateFiles)).
		Strs("partial_dirs", result.PartialDirs).
		Msg("scanned template directory")

	return e.forEach(ctx, result.TemplateFiles, func(template string) error {
		md, err := e.meta.Process(template)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, template)
		if err != nil {
			return errs.NewIOError("resolve", template, err)
		}
		ext := firstNonEmpty(md.TargetExtension, opts.TargetExtension)
		target := write.ReplaceExtension(filepath.Join(out, rel), ext)
		return e.writeTemplate(ctx, template, target, inputs, opts.Silent)
	})
}

func (e *Engine) writeTemplate(ctx context.Context, template, target string, in Inputs, silent bool) error {
	content, err := e.Render(ctx, RenderOptions{Template: template, Inputs: in})
	if err != nil {
		return err
	}

	data := []byte(content)
	if e.postprocessors.Len() > 0 {
		processed, err := e.postprocessors.Process(target, data)
		if err != nil {
			e.logger.Warn().Err(err).Str("path", target).Msg("post-processing failed")
			// Continue with unprocessed content rather than failing
		} else {
			data = processed
		}
	}

	written, err := e.writer.Write(target, data, e.writeOptions)
	if err != nil {
		return err
	}

	e.logger.Info().
		Str("template", template).
		Str("output", target).
		Bool("changed", written).
		Msg("rendered template")

	if !silent && e.reporter != nil {
		e.reporter(target)
	}
	return nil
}

func directoryError(template string) error {
	return &errs.IOError{
		Op:      "read",
		Path:    template,
		Err:     syscall.EISDIR,
		Message: template + " is a directory. Directories are not supported when multiple templates provided.",
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
