// Package config layers measy's command-line settings: built-in defaults,
// a YAML config file, MEASY_* environment variables and explicitly set flags,
// each overriding the one before.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/cpcf/measy/errs"
	"github.com/cpcf/measy/logging"
)

// DefaultFile is the config file read from the working directory when no
// file is named explicitly.
const DefaultFile = ".measy.yaml"

// EnvPrefix prefixes the environment variables measy reads, e.g.
// MEASY_TEMPLATE_EXTENSION.
const EnvPrefix = "MEASY_"

// Validator defines an interface that configuration types can implement
// to provide custom validation logic
type Validator interface {
	Validate() error
}

// Config holds every CLI setting. Keys match the long flag names.
type Config struct {
	TemplateExtension string   `koanf:"template-extension"`
	TargetExtension   string   `koanf:"target-extension"`
	Out               string   `koanf:"out"`
	Context           string   `koanf:"context"`
	ContextFiles      []string `koanf:"context-files"`
	RootContextFiles  []string `koanf:"root-context-files"`
	FunctionFiles     []string `koanf:"function-files"`
	RootFunctionFiles []string `koanf:"root-function-files"`
	PartialDirs       []string `koanf:"partial-dirs"`
	ExcludePaths      []string `koanf:"exclude-paths"`
	Engine            string   `koanf:"engine"`
	IncludeMeta       bool     `koanf:"include-meta"`
	Debug             bool     `koanf:"debug"`
	Silence           bool     `koanf:"silence"`
	AllowCodeModules  bool     `koanf:"allow-code-modules"`
	FormatGo          bool     `koanf:"format-go"`
	FailAtEnd         bool     `koanf:"fail-at-end"`
	Watch             bool     `koanf:"watch"`
	Concurrency       int      `koanf:"concurrency"`
	Verbose           int      `koanf:"verbose"`
	LogLevel          string   `koanf:"log-level"`
}

// Defaults returns the built-in value of every known key.
func Defaults() map[string]any {
	return map[string]any{
		"template-extension":  "",
		"target-extension":    "",
		"out":                 "",
		"context":             "",
		"context-files":       []string{},
		"root-context-files":  []string{},
		"function-files":      []string{},
		"root-function-files": []string{},
		"partial-dirs":        []string{},
		"exclude-paths":       []string{},
		"engine":              "",
		"include-meta":        false,
		"debug":               false,
		"silence":             false,
		"allow-code-modules":  false,
		"format-go":           false,
		"fail-at-end":         false,
		"watch":               false,
		"concurrency":         0,
		"verbose":             0,
		"log-level":           "",
	}
}

func (c *Config) Validate() error {
	if c.Concurrency < 0 {
		return errs.NewConfigurationError("concurrency", "concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.Verbose < 0 {
		return errs.NewConfigurationError("verbose", "verbose must not be negative, got %d", c.Verbose)
	}
	if c.LogLevel != "" {
		if _, err := logging.ParseLevel(c.LogLevel); err != nil {
			return errs.NewConfigurationError("log-level", "unknown log level %q", c.LogLevel)
		}
	}
	return nil
}

// LoadOptions say where settings come from.
type LoadOptions struct {
	// File is a YAML config file that must exist. When empty DefaultFile is
	// read from Dir if present.
	File string
	Dir  string
	// Environ is the environment; nil reads the process environment.
	Environ []string
	// Flags are the explicitly set flags, keyed by long name.
	Flags map[string]any
}

// Load merges the layers into a validated Config. Unknown keys in the config
// file are reported as configuration errors.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path, err := configPath(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		fileK := koanf.New(".")
		if err := fileK.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		if err := checkKeys(fileK.Keys()); err != nil {
			return nil, err
		}
		if err := k.Merge(fileK); err != nil {
			return nil, fmt.Errorf("failed to merge config from %s: %w", path, err)
		}
	}

	envK := koanf.New(".")
	if err := envK.Load(envProvider(opts.Environ), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}
	if err := k.Merge(envK); err != nil {
		return nil, fmt.Errorf("failed to merge env vars: %w", err)
	}

	if len(opts.Flags) > 0 {
		if err := checkKeys(sortedKeys(opts.Flags)); err != nil {
			return nil, err
		}
		if err := k.Load(confmap.Provider(opts.Flags, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.normalize()

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func configPath(opts LoadOptions) (string, error) {
	if opts.File != "" {
		abs, err := filepath.Abs(opts.File)
		if err != nil {
			return "", fmt.Errorf("failed to resolve path %q: %w", opts.File, err)
		}
		if _, err := os.Stat(abs); err != nil {
			return "", errs.NewIOError("read config", abs, err)
		}
		return abs, nil
	}

	path := filepath.Join(opts.Dir, DefaultFile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", errs.NewIOError("read config", path, err)
	}
	return path, nil
}

// envProvider maps MEASY_TEMPLATE_EXTENSION to template-extension.
func envProvider(environ []string) koanf.Provider {
	cb := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", "-")
	}
	if environ == nil {
		return env.Provider(EnvPrefix, ".", cb)
	}

	vars := map[string]any{}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		vars[cb(key)] = value
	}
	return confmap.Provider(vars, ".")
}

func checkKeys(keys []string) error {
	known := Defaults()
	for _, key := range keys {
		if _, ok := known[key]; !ok {
			return errs.NewConfigurationError(key, "Unknown option '%s'", key)
		}
	}
	return nil
}

// normalize trims list entries and drops empty ones, so "a, b," and
// [a, b] mean the same.
func (c *Config) normalize() {
	for _, list := range []*[]string{
		&c.ContextFiles, &c.RootContextFiles, &c.FunctionFiles,
		&c.RootFunctionFiles, &c.PartialDirs, &c.ExcludePaths,
	} {
		*list = splitList(*list)
	}
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func validate(target any) error {
	if validator, ok := target.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
