package commands

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpcf/measy/testutil"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = Execute(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestNoInput(t *testing.T) {
	code, stdout, stderr := execute(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "measy [flags] <template files or dir>")
	assert.Contains(t, stdout, "--template-extension")
	assert.Equal(t, "Error: Template files or dir is required\n", stderr)
}

func TestWriteTemplate(t *testing.T) {
	dir := testutil.Tree{"member.hbs": "Hi {{codeName}}"}.Write(t)
	out := testutil.Path(dir, "last.txt")

	code, stdout, stderr := execute(t,
		"--context", `{ codeName: "Jay" }`,
		"--out", out,
		testutil.Path(dir, "member.hbs"),
	)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "File written: "+out+"\nFinished.\n", stdout)
	assert.Equal(t, "Hi Jay", testutil.Read(t, dir)["last.txt"])
}

func TestWriteDirectory(t *testing.T) {
	dir := testutil.Tree{
		"README.hbs":         "---\npartialDirs: partials\n---\n{{> title}}{{data.name}}\n",
		"partials/title.hbs": "# ",
		"docs/guide.hbs":     "{{data.name}} guide\n",
		"data.json":          `{"name": "measy", /* comment */}`,
		"drafts/ignored.hbs": "nope",
	}.Write(t)
	out := t.TempDir()

	code, stdout, stderr := execute(t,
		"--template-extension", "hbs",
		"--target-extension", "md",
		"--context-files", testutil.Path(dir, "data.json"),
		"--exclude-paths", testutil.Path(dir, "drafts"),
		"--out", out,
		"--silence",
		dir,
	)
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)
	assert.Equal(t, testutil.Tree{
		"README.md":     "# measy\n",
		"docs/guide.md": "measy guide\n",
	}, testutil.Read(t, out))
}

func TestConfigFile(t *testing.T) {
	dir := testutil.Tree{
		"templates/a.mustache": "{{greeting}}",
		"measy.yaml":           "template-extension: mustache\ntarget-extension: txt\ncontext: 'greeting: hello'\n",
	}.Write(t)

	code, _, stderr := execute(t,
		"--config", testutil.Path(dir, "measy.yaml"),
		testutil.Path(dir, "templates"),
	)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "hello", testutil.Read(t, dir)["templates/a.txt"])
}

func TestFormatGo(t *testing.T) {
	dir := testutil.Tree{
		"main.go.tmpl": "package {{ .pkg }}\nfunc main(){}\n",
	}.Write(t)

	code, _, stderr := execute(t,
		"--format-go",
		"--context", `{"pkg": "main"}`,
		testutil.Path(dir, "main.go.tmpl"),
	)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "package main\n\nfunc main() {}\n", testutil.Read(t, dir)["main.go"])
}

func TestErrors(t *testing.T) {
	dir := testutil.Tree{
		"a.hbs":   "A",
		"nested/": "",
	}.Write(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing template", []string{testutil.Path(dir, "missing.hbs")}, "Error: stat "},
		{"unknown flag", []string{"--nope", testutil.Path(dir, "a.hbs")}, "Error: unknown flag: --nope"},
		{"context not an object", []string{"--context", "[1, 2]", testutil.Path(dir, "a.hbs")}, "context must be an object"},
		{"unparsable context", []string{"--context", "{a: [", testutil.Path(dir, "a.hbs")}, "Cannot parse data as JSON5 or YAML"},
		{"directory without extension", []string{testutil.Path(dir, "nested")}, "Error: Template extension is required"},
		{"directory among templates", []string{testutil.Path(dir, "nested"), testutil.Path(dir, "a.hbs")}, "Directories are not supported"},
		{"unknown engine", []string{"--engine", "ejs", testutil.Path(dir, "a.hbs")}, "No engine provided or unknown engine: ejs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.want)
			assert.Equal(t, 1, strings.Count(stderr, "\n"), "error is reported on one line")
		})
	}
}

func TestDebugPanics(t *testing.T) {
	missing := testutil.Path(t.TempDir(), "missing.hbs")
	assert.Panics(t, func() {
		execute(t, "--debug", missing)
	})
}
