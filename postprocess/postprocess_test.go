package postprocess

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prefix(p string) Processor {
	return Func(func(_ string, content []byte) ([]byte, error) {
		return []byte(p + ":" + string(content)), nil
	})
}

func TestChainProcess(t *testing.T) {
	tests := []struct {
		name       string
		processors []Processor
		want       string
		wantErr    string
	}{
		{name: "empty chain", want: "hello"},
		{name: "single processor", processors: []Processor{prefix("A")}, want: "A:hello"},
		{name: "in order", processors: []Processor{prefix("A"), prefix("B")}, want: "B:A:hello"},
		{
			name: "stops at failure",
			processors: []Processor{
				prefix("A"),
				Func(func(string, []byte) ([]byte, error) { return nil, errors.New("boom") }),
				prefix("C"),
			},
			wantErr: "post-processor 1 failed for out.txt: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := NewChain(tt.processors...)
			got, err := chain.Process("out.txt", []byte("hello"))
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestChainAdd(t *testing.T) {
	chain := NewChain()
	assert.Equal(t, 0, chain.Len())

	chain.Add(prefix("A"))
	chain.AddFunc(func(_ string, content []byte) ([]byte, error) {
		return append(content, '!'), nil
	})
	assert.Equal(t, 2, chain.Len())

	got, err := chain.Process("x", []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, "A:hi!", string(got))
}

func TestNilChain(t *testing.T) {
	var chain *Chain
	got, err := chain.Process("x", []byte("same"))
	require.NoError(t, err)
	assert.Equal(t, "same", string(got))
	assert.Equal(t, 0, chain.Len())
}

func TestMatch(t *testing.T) {
	p := Match(prefix("go"), "*.go", "docs/**/*.md")

	tests := map[string]string{
		"main.go":             "go:x",
		"/abs/pkg/file.go":    "go:x",
		"file.txt":            "x",
		"docs/guide/intro.md": "go:x",
		"README.md":           "x",
	}
	for path, want := range tests {
		got, err := p.Process(path, []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, want, string(got), path)
	}
}
