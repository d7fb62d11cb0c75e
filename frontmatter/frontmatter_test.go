package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpcf/measy/errs"
)

func TestSplitWithFrontMatter(t *testing.T) {
	content := `---
contextFiles: ../package.json
rootContextFiles:
  - data.yaml
  - other.json
partialDirs: partials
targetExtension: md
title: Extra
---
Hello {{name}}
`

	doc, err := Split(content)
	require.NoError(t, err)

	assert.True(t, doc.HasFrontMatter)
	assert.Equal(t, PathList{"../package.json"}, doc.Attributes.ContextFiles)
	assert.Equal(t, PathList{"data.yaml", "other.json"}, doc.Attributes.RootContextFiles)
	assert.Equal(t, PathList{"partials"}, doc.Attributes.PartialDirs)
	assert.Empty(t, doc.Attributes.FunctionFiles)
	assert.Equal(t, "md", doc.Attributes.TargetExtension)
	assert.Equal(t, "Extra", doc.Raw["title"])
	assert.Equal(t, "Hello {{name}}\n", doc.Body)
	assert.Equal(t, content[:len(content)-len(doc.Body)], doc.FrontMatter)
}

func TestSplitWithoutFrontMatter(t *testing.T) {
	content := "no meta here\n---\nnot front matter\n"

	doc, err := Split(content)
	require.NoError(t, err)

	assert.False(t, doc.HasFrontMatter)
	assert.Equal(t, content, doc.Body)
	assert.Empty(t, doc.Attributes.PartialDirs)
	assert.NotNil(t, doc.Raw)
}

func TestSplitEmptyBlockAndDotsTerminator(t *testing.T) {
	doc, err := Split("---\n---\nbody")
	require.NoError(t, err)
	assert.True(t, doc.HasFrontMatter)
	assert.Equal(t, "body", doc.Body)

	doc, err = Split("---\ntargetExtension: .txt\n...\nbody")
	require.NoError(t, err)
	assert.Equal(t, ".txt", doc.Attributes.TargetExtension)
	assert.Equal(t, "body", doc.Body)
}

func TestSplitUnterminatedBlockIsBody(t *testing.T) {
	content := "---\ntitle: x\nstill going"
	doc, err := Split(content)
	require.NoError(t, err)
	assert.False(t, doc.HasFrontMatter)
	assert.Equal(t, content, doc.Body)
}

func TestSplitMalformedYAML(t *testing.T) {
	_, err := Split("---\ncontextFiles: [a, b\n---\nbody")
	require.Error(t, err)

	var parseErr *errs.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestSplitRejectsMappingForPathList(t *testing.T) {
	_, err := Split("---\npartialDirs:\n  a: b\n---\n")
	require.Error(t, err)
}

func TestStrip(t *testing.T) {
	assert.Equal(t, "body\n", Strip("---\nanything: [unparsed\n---\nbody\n"))
	assert.Equal(t, "plain", Strip("plain"))
	assert.Equal(t, "x", Strip("\ufeff---\na: 1\n---\nx"))
}
