package meta

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpcf/measy/cache"
	"github.com/cpcf/measy/errs"
	"github.com/cpcf/measy/source"
	"github.com/cpcf/measy/testutil"
)

func TestProcessWithoutFrontMatter(t *testing.T) {
	fs := testutil.Tree{"t/plain.tmpl": "hello {{ .name }}"}.MemFs(t, "/w")
	p := New(WithFs(fs))

	md, err := p.Process("/w/t/plain.tmpl")
	require.NoError(t, err)
	assert.Equal(t, "hello {{ .name }}", md.Content)
	assert.Equal(t, md.Content, md.Body)
	assert.Empty(t, md.Context)
	assert.Empty(t, md.Functions)
	assert.Empty(t, md.PartialDirs)
	assert.Empty(t, md.TargetExtension)
}

func TestProcessResolvesFrontMatter(t *testing.T) {
	fs := testutil.Tree{
		"t/page.tmpl": `---
contextFiles: ../data/my-data.json
rootContextFiles:
  - ../data/root.yaml
functionFiles: helpers.yaml
rootFunctionFiles: [/w/shared/root-fn.yaml]
partialDirs: partials
targetExtension: md
---
body
`,
		"data/my-data.json":   `{"name": "nested"}`,
		"data/root.yaml":      "name: root\nmyData: overridden\n",
		"t/helpers.yaml":      "uc: ascii_upcase\n",
		"shared/root-fn.yaml": "lc: ascii_downcase\n",
	}.MemFs(t, "/w")

	md, err := New(WithFs(fs)).Process("/w/t/page.tmpl")
	require.NoError(t, err)

	assert.Equal(t, "body\n", md.Body)
	assert.Contains(t, md.Content, "targetExtension: md")
	assert.Equal(t, "md", md.TargetExtension)
	assert.Equal(t, []string{filepath.FromSlash("/w/t/partials")}, md.PartialDirs)

	assert.Equal(t, map[string]any{"name": "root", "myData": "overridden"}, md.Context,
		"root context files override namespaced ones")

	require.Contains(t, md.Functions, "helpersUc")
	require.Contains(t, md.Functions, "lc")
	out, err := md.Functions["helpersUc"].(source.JQFunc)("abc")
	require.NoError(t, err)
	assert.Equal(t, "ABC", out)
}

func TestProcessErrors(t *testing.T) {
	fs := testutil.Tree{
		"bad-yaml.tmpl":     "---\ncontextFiles: [unclosed\n---\nbody",
		"missing-ctx.tmpl":  "---\ncontextFiles: nope.json\n---\n",
		"unsupported.tmpl":  "---\nfunctionFiles: helpers.js\n---\n",
		"helpers.js":        "module.exports = {}",
		"bad-context.tmpl":  "---\ncontextFiles: broken\n---\n",
		"broken":            "a: [x\n  b: : c",
		"mapping-list.tmpl": "---\npartialDirs: {a: b}\n---\n",
	}.MemFs(t, "/w")
	p := New(WithFs(fs))

	_, err := p.Process("/w/bad-yaml.tmpl")
	var parseErr *errs.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "/w/bad-yaml.tmpl", parseErr.Path)

	_, err = p.Process("/w/missing-ctx.tmpl")
	var ioErr *errs.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.True(t, errs.IsNotExist(err))

	_, err = p.Process("/w/unsupported.tmpl")
	assert.ErrorContains(t, err, "files are not supported")

	_, err = p.Process("/w/bad-context.tmpl")
	assert.ErrorContains(t, err, "Cannot parse data as JSON5 or YAML")

	_, err = p.Process("/w/mapping-list.tmpl")
	assert.ErrorAs(t, err, &parseErr)

	_, err = p.Process("/w/absent.tmpl")
	assert.True(t, errs.IsNotExist(err))
}

func TestProcessDirectoryIsDetectable(t *testing.T) {
	dir := testutil.Tree{"sub/": ""}.Write(t)

	_, err := New().Process(filepath.Join(dir, "sub"))
	require.Error(t, err)
	assert.True(t, errs.IsDirectory(err))
}

func TestProcessIsMemoized(t *testing.T) {
	now := time.Unix(0, 0)
	c := cache.New[string, *Metadata](cache.WithClock(func() time.Time { return now }))
	fs := testutil.Tree{"a.tmpl": "one"}.MemFs(t, "/w")
	p := New(WithFs(fs), WithCache(c))

	first, err := p.Process("/w/a.tmpl")
	require.NoError(t, err)

	testutil.Tree{"a.tmpl": "two"}.WriteFs(t, fs, "/w")

	second, err := p.Process("/w/a.tmpl")
	require.NoError(t, err)
	assert.Same(t, first, second)

	now = now.Add(11 * time.Second)
	third, err := p.Process("/w/a.tmpl")
	require.NoError(t, err)
	assert.Equal(t, "two", third.Content)
}
