// Package postprocess transforms rendered output before it is written.
//
// Processors receive the output path, so they can decide by file type whether
// they apply:
//
//	chain := postprocess.NewChain(
//		postprocess.Match(processors.NewGoImports(), "**/*.go"),
//	)
package postprocess

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Processor transforms the content about to be written to path. Processors
// must be safe for concurrent use and return content unchanged when they do
// not apply.
type Processor interface {
	Process(path string, content []byte) ([]byte, error)
}

// Func adapts a function to Processor.
type Func func(path string, content []byte) ([]byte, error)

func (f Func) Process(path string, content []byte) ([]byte, error) {
	return f(path, content)
}

// Chain applies processors in order. A Chain is built before rendering
// starts and only read afterwards.
type Chain struct {
	processors []Processor
}

func NewChain(processors ...Processor) *Chain {
	return &Chain{processors: processors}
}

// Add appends p to the chain.
func (c *Chain) Add(p Processor) {
	c.processors = append(c.processors, p)
}

// AddFunc appends fn to the chain.
func (c *Chain) AddFunc(fn func(path string, content []byte) ([]byte, error)) {
	c.Add(Func(fn))
}

// Process runs every processor on content, stopping at the first failure.
func (c *Chain) Process(path string, content []byte) ([]byte, error) {
	if c == nil {
		return content, nil
	}

	result := content
	for i, p := range c.processors {
		processed, err := p.Process(path, result)
		if err != nil {
			return nil, fmt.Errorf("post-processor %d failed for %s: %w", i, path, err)
		}
		result = processed
	}
	return result, nil
}

func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.processors)
}

// Match restricts p to paths matched by at least one of the doublestar
// patterns. Patterns without a slash are matched against the base name.
func Match(p Processor, patterns ...string) Processor {
	return Func(func(path string, content []byte) ([]byte, error) {
		slashed := filepath.ToSlash(path)
		for _, pattern := range patterns {
			target := slashed
			if !containsSlash(pattern) {
				target = filepath.Base(path)
			}
			if ok, _ := doublestar.Match(pattern, target); ok {
				return p.Process(path, content)
			}
		}
		return content, nil
	})
}

func containsSlash(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return true
		}
	}
	return false
}
