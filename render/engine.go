// Package render turns template text into output through pluggable template
// engines.
package render

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/cpcf/measy/errs"
)

// Request is one template to render.
type Request struct {
	// Path names the template in errors.
	Path   string
	Source string
	// Context is the data the template is executed with.
	Context map[string]any
	// Functions are callables from function files. How they are exposed
	// depends on the engine.
	Functions map[string]any
	// Partials maps partial names to their source text.
	Partials map[string]string
}

// Engine renders a Request. Implementations must be safe for concurrent use.
type Engine interface {
	Name() string
	Render(req *Request) (string, error)
}

// LoadPartials reads the partial files of index, which maps partial names to
// paths as produced by scan.Indexer.
func LoadPartials(fs afero.Fs, index map[string]string) (map[string]string, error) {
	partials := make(map[string]string, len(index))
	for name, path := range index {
		content, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, errs.NewIOError("read partial", path, err)
		}
		partials[name] = string(content)
	}
	return partials, nil
}

// renderError wraps err with the template path, keeping the engine name.
func renderError(engine, path string, err error) error {
	return fmt.Errorf("%s: render %s: %w", engine, path, err)
}
