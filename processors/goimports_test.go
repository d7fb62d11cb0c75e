package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoImportsProcess(t *testing.T) {
	g := NewGoImports()

	out, err := g.Process("gen/main.go", []byte(`package main

import (
	"fmt"
	"context"
	"net/http"
)

func main() {
ctx := context.Background()
	_ = ctx
}
`))
	require.NoError(t, err)
	assert.Equal(t, `package main

import (
	"context"
)

func main() {
	ctx := context.Background()
	_ = ctx
}
`, string(out))

	out, err = g.Process("notes.txt", []byte("  untouched  "))
	require.NoError(t, err)
	assert.Equal(t, "  untouched  ", string(out))

	_, err = g.Process("broken.go", []byte("package main\nfunc {"))
	assert.ErrorContains(t, err, "broken.go")
}

func TestIsGoFile(t *testing.T) {
	tests := map[string]bool{
		"main.go":      true,
		"file.GO":      true,
		"file.txt":     false,
		"go.mod":       false,
		"gofile":       false,
		"dir.go/x.tpl": false,
	}
	for path, want := range tests {
		assert.Equal(t, want, isGoFile(path), path)
	}
}
