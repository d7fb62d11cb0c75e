// Package commands implements the measy command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cpcf/measy/config"
	"github.com/cpcf/measy/engine"
	"github.com/cpcf/measy/errs"
	"github.com/cpcf/measy/logging"
	"github.com/cpcf/measy/postprocess"
	"github.com/cpcf/measy/processors"
	"github.com/cpcf/measy/source"
	"github.com/cpcf/measy/watch"
)

// Version is set at build time.
var Version = "dev"

var errNoInput = errs.NewConfigurationError("templates", "Template files or dir is required")

const long = `Renders template files into files, resolving front-matter, context files,
function files and partials for every template.

Given a directory, every file with the template extension below it is rendered
into --out (default: the directory itself), keeping relative paths.

Engines: gotemplate (tmpl, tpl, gotmpl), handlebars (hbs, handlebars),
mustache (mustache), jinja / nunjucks (jinja, j2, njk).

Settings may also come from .measy.yaml (or --config) and MEASY_* environment
variables; explicitly set flags win.`

const examples = `  measy --context-files package.json README.njk
  measy --context '{ codeName: "Jay" }' --out last.txt member.hbs
  measy --template-extension hbs --out docs my-templates`

// cli holds the state of one invocation.
type cli struct {
	stdout     io.Writer
	stderr     io.Writer
	configFile string
	debug      bool
	logger     zerolog.Logger

	// mu serializes writes to stdout from concurrent templates.
	mu sync.Mutex
}

// Execute runs measy with args and returns the process exit code. With
// --debug a failure is logged with its full chain and re-raised as a panic.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr, logger: zerolog.Nop()}
	cmd := c.command()
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	if c.debug {
		c.logger.Error().Err(err).Str("type", fmt.Sprintf("%T", err)).Msg("measy failed")
		panic(err)
	}
	fmt.Fprintf(stderr, "%s %s\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err)
	return 1
}

func (c *cli) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "measy [flags] <template files or dir>",
		Short:         "Create files from templates",
		Long:          long,
		Example:       examples,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          c.run,
	}
	cmd.SetOut(c.stdout)
	cmd.SetErr(c.stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errs.NewConfigurationError("flags", "%s", err.Error())
	})

	f := cmd.Flags()
	f.String("template-extension", "", "file extension of the templates (required for a directory)")
	f.String("target-extension", "", "file extension of generated files; front-matter targetExtension wins")
	f.String("out", "", "file (for templates) or directory (for a directory) to generate into")
	f.String("context", "", "data passed to templates, as JSON5 or YAML")
	f.StringSlice("context-files", nil, "files whose data is passed to templates under a key named after the file")
	f.StringSlice("root-context-files", nil, "files whose data is passed to templates at the top level")
	f.StringSlice("function-files", nil, "files of helper functions, prefixed with a key named after the file")
	f.StringSlice("root-function-files", nil, "files of helper functions available by their own names")
	f.StringSlice("partial-dirs", nil, "directories containing partials")
	f.StringSlice("exclude-paths", nil, "paths or globs to skip (directory input only)")
	f.String("engine", "", "template engine; defaults from the template extension")
	f.Bool("include-meta", false, "keep front-matter in generated files")
	f.Bool("debug", false, "log the full error and its stack trace on failure")
	f.Bool("silence", false, "prevent console output")
	f.Bool("allow-code-modules", false, "allow Go plugins (.so) as context and function files; they run arbitrary code")
	f.Bool("format-go", false, "run goimports on generated .go files")
	f.Bool("fail-at-end", false, "render every template and report all failures at the end")
	f.Bool("watch", false, "render again whenever inputs change")
	f.Int("concurrency", 0, "templates rendered at once (default: number of CPUs)")
	f.String("log-level", "", "log level (trace, debug, info, warn, error)")
	f.CountP("verbose", "v", "log more; repeat for more detail")
	f.StringVar(&c.configFile, "config", "", "config file (default: ./"+config.DefaultFile+")")

	return cmd
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	// Debug is honoured even if loading the rest of the settings fails.
	c.debug, _ = cmd.Flags().GetBool("debug")

	if len(args) == 0 {
		if err := cmd.Help(); err != nil {
			return err
		}
		return errNoInput
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(config.LoadOptions{
		File:  c.configFile,
		Dir:   cwd,
		Flags: changedFlags(cmd.Flags()),
	})
	if err != nil {
		return err
	}
	c.debug = cfg.Debug
	c.logger = newLogger(cfg, c.stderr)

	job, err := c.newJob(cfg, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := job.run(ctx); err != nil {
		return err
	}
	c.finished(cfg)

	if !cfg.Watch {
		return nil
	}
	return c.watch(ctx, cfg, job)
}

func (c *cli) finished(cfg *config.Config) {
	if !cfg.Silence {
		fmt.Fprintln(c.stdout, "Finished.")
	}
}

func (c *cli) watch(ctx context.Context, cfg *config.Config, j *job) error {
	w, err := watch.New(j.watchPaths(), watch.WithLogger(c.logger))
	if err != nil {
		return err
	}
	c.logger.Info().Strs("paths", j.watchPaths()).Msg("watching for changes")

	return w.Run(ctx, func(ctx context.Context) error {
		j.engine.Reset()
		if err := j.run(ctx); err != nil {
			if !cfg.Silence {
				fmt.Fprintf(c.stderr, "%s %s\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err)
			}
			return err
		}
		c.finished(cfg)
		return nil
	})
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	level := logging.LevelFromVerbosity(cfg.Verbose)
	if cfg.LogLevel != "" {
		// Validated by config.Load.
		level, _ = logging.ParseLevel(cfg.LogLevel)
	}
	if cfg.Debug && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	return logging.New(logging.Config{
		Level:  level,
		Output: out,
		Pretty: true,
		Caller: cfg.Debug,
	})
}

func (c *cli) newEngine(cfg *config.Config) *engine.Engine {
	mode := engine.FailFast
	if cfg.FailAtEnd {
		mode = engine.FailAtEnd
	}

	written := color.New(color.FgGreen).Sprint("File written:")
	e := engine.New(
		engine.WithLogger(c.logger),
		engine.WithFailureMode(mode),
		engine.WithConcurrency(cfg.Concurrency),
		engine.WithCodeModules(cfg.AllowCodeModules),
		engine.WithReporter(func(path string) {
			c.mu.Lock()
			defer c.mu.Unlock()
			fmt.Fprintf(c.stdout, "%s %s\n", written, path)
		}),
	)
	if cfg.FormatGo {
		e.AddPostProcessor(postprocess.Match(processors.NewGoImports(), "*.go"))
	}
	return e
}

// changedFlags returns the flags set on the command line, keyed by name,
// for layering over the config file and environment.
func changedFlags(flags *pflag.FlagSet) map[string]any {
	out := map[string]any{}
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "config", "help", "version":
			return
		}

		switch f.Value.Type() {
		case "stringSlice":
			v, _ := flags.GetStringSlice(f.Name)
			out[f.Name] = v
		case "bool":
			v, _ := flags.GetBool(f.Name)
			out[f.Name] = v
		case "count":
			v, _ := flags.GetCount(f.Name)
			out[f.Name] = v
		case "int":
			v, _ := flags.GetInt(f.Name)
			out[f.Name] = v
		default:
			out[f.Name] = f.Value.String()
		}
	})
	return out
}

func parseContext(text string) (map[string]any, error) {
	if text == "" {
		return nil, nil
	}
	v, err := source.ParseString(text)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errs.NewConfigurationError("context", "context must be an object, got %T", v)
	}
	return m, nil
}

func absAll(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errs.NewIOError("resolve", p, err)
		}
		out[i] = abs
	}
	return out, nil
}
