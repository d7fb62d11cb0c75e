package commands

import (
	"context"
	"os"

	"github.com/cpcf/measy/config"
	"github.com/cpcf/measy/engine"
	"github.com/cpcf/measy/errs"
)

// job is one resolved invocation: either a directory or a list of
// templates, with every path made absolute.
type job struct {
	engine *engine.Engine
	paths  []string
	isDir  bool
	inputs engine.Inputs

	out               string
	templateExtension string
	targetExtension   string
	excludePaths      []string
	silent            bool
}

func (c *cli) newJob(cfg *config.Config, args []string) (*job, error) {
	paths, err := absAll(args)
	if err != nil {
		return nil, err
	}
	info, err := os.Lstat(paths[0])
	if err != nil {
		return nil, errs.NewIOError("stat", paths[0], err)
	}

	data, err := parseContext(cfg.Context)
	if err != nil {
		return nil, err
	}

	j := &job{
		engine:            c.newEngine(cfg),
		paths:             paths,
		isDir:             len(paths) == 1 && info.IsDir(),
		templateExtension: cfg.TemplateExtension,
		targetExtension:   cfg.TargetExtension,
		silent:            cfg.Silence,
		inputs: engine.Inputs{
			Context:     data,
			Engine:      cfg.Engine,
			IncludeMeta: cfg.IncludeMeta,
		},
	}

	lists := []struct {
		in  []string
		out *[]string
	}{
		{cfg.ContextFiles, &j.inputs.ContextFiles},
		{cfg.RootContextFiles, &j.inputs.RootContextFiles},
		{cfg.FunctionFiles, &j.inputs.FunctionFiles},
		{cfg.RootFunctionFiles, &j.inputs.RootFunctionFiles},
		{cfg.PartialDirs, &j.inputs.PartialDirs},
		{cfg.ExcludePaths, &j.excludePaths},
	}
	for _, l := range lists {
		if *l.out, err = absAll(l.in); err != nil {
			return nil, err
		}
	}

	if cfg.Out != "" {
		if j.out, err = absPath(cfg.Out); err != nil {
			return nil, err
		}
	}
	return j, nil
}

func (j *job) run(ctx context.Context) error {
	if j.isDir {
		return j.engine.WriteDir(ctx, j.paths[0], engine.WriteDirOptions{
			Inputs:            j.inputs,
			TemplateExtension: j.templateExtension,
			TargetExtension:   j.targetExtension,
			Out:               j.out,
			ExcludePaths:      j.excludePaths,
			Silent:            j.silent,
		})
	}
	return j.engine.Write(ctx, j.paths, engine.WriteOptions{
		Inputs:          j.inputs,
		Out:             j.out,
		TargetExtension: j.targetExtension,
		Silent:          j.silent,
	})
}

// watchPaths are the inputs whose changes trigger a new run.
func (j *job) watchPaths() []string {
	var paths []string
	paths = append(paths, j.paths...)
	for _, list := range [][]string{
		j.inputs.ContextFiles, j.inputs.RootContextFiles,
		j.inputs.FunctionFiles, j.inputs.RootFunctionFiles,
		j.inputs.PartialDirs,
	} {
		for _, p := range list {
			if _, err := os.Stat(p); err == nil {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

func absPath(path string) (string, error) {
	out, err := absAll([]string{path})
	if err != nil {
		return "", err
	}
	return out[0], nil
}
