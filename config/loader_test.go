package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpcf/measy/errs"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(LoadOptions{Dir: t.TempDir(), Environ: []string{}})
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadLayers(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, DefaultFile, `
template-extension: hbs
target-extension: md
engine: handlebars
partial-dirs: [partials, "shared "]
exclude-paths: "drafts, tmp"
silence: true
`)

	cfg, err := Load(LoadOptions{
		Dir: dir,
		Environ: []string{
			"MEASY_TARGET_EXTENSION=txt",
			"MEASY_INCLUDE_META=true",
			"MEASY_CONTEXT_FILES=a.json,b.yaml",
			"MEASY_CONCURRENCY=3",
			"HOME=/root",
		},
		Flags: map[string]any{
			"engine":  "mustache",
			"verbose": 2,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "hbs", cfg.TemplateExtension, "file")
	assert.Equal(t, "txt", cfg.TargetExtension, "env over file")
	assert.Equal(t, "mustache", cfg.Engine, "flag over file")
	assert.True(t, cfg.IncludeMeta)
	assert.True(t, cfg.Silence)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 2, cfg.Verbose)
	assert.Equal(t, []string{"a.json", "b.yaml"}, cfg.ContextFiles)
	assert.Equal(t, []string{"partials", "shared"}, cfg.PartialDirs)
	assert.Equal(t, []string{"drafts", "tmp"}, cfg.ExcludePaths)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, DefaultFile, "engine: handlebars\n")
	other := writeConfig(t, dir, "other.yaml", "engine: jinja\n")

	cfg, err := Load(LoadOptions{File: other, Dir: dir, Environ: []string{}})
	require.NoError(t, err)
	assert.Equal(t, "jinja", cfg.Engine)

	_, err = Load(LoadOptions{File: filepath.Join(dir, "missing.yaml"), Environ: []string{}})
	var ioErr *errs.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestLoadRejectsUnknownOptions(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, DefaultFile, "templateExtension: hbs\n")

	_, err := Load(LoadOptions{Dir: dir, Environ: []string{}})
	var cfgErr *errs.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.EqualError(t, err, "Unknown option 'templateExtension'")

	_, err = Load(LoadOptions{Dir: t.TempDir(), Environ: []string{}, Flags: map[string]any{"nope": true}})
	assert.EqualError(t, err, "Unknown option 'nope'")
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, DefaultFile, "engine: [unclosed\n")

	_, err := Load(LoadOptions{Dir: dir, Environ: []string{}})
	assert.ErrorContains(t, err, "failed to load config from")
}

func TestLoadValidates(t *testing.T) {
	tests := map[string]map[string]any{
		"negative concurrency": {"concurrency": -1},
		"unknown log level":    {"log-level": "loud"},
	}
	for name, flags := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(LoadOptions{Dir: t.TempDir(), Environ: []string{}, Flags: flags})
			assert.ErrorContains(t, err, "configuration validation failed")
		})
	}
}
