package engine

import (
	"maps"

	"github.com/cpcf/measy/meta"
)

// Inputs are the caller-supplied data and sources shared by Render, Write and
// WriteDir. File lists are resolved against the working directory.
type Inputs struct {
	Context map[string]any
	// ContextFiles are nested under a key derived from each file name.
	ContextFiles []string
	// RootContextFiles are merged into the top level of the context.
	RootContextFiles []string
	// PartialDirs are added to the partial directories of the front-matter.
	PartialDirs       []string
	FunctionFiles     []string
	RootFunctionFiles []string
	// Engine names the template engine. Empty selects it from the template
	// extension.
	Engine string
	// IncludeMeta keeps the front-matter block in the output.
	IncludeMeta bool
}

// renderContext layers the template data, lowest precedence first: the
// partial index, front-matter context, the caller's context, context files,
// root context files. The merge is shallow.
func (e *Engine) renderContext(md *meta.Metadata, in Inputs, partials map[string]string) (map[string]any, error) {
	fromFiles, err := e.resolver.Context(in.ContextFiles, false)
	if err != nil {
		return nil, err
	}
	fromRootFiles, err := e.resolver.Context(in.RootContextFiles, true)
	if err != nil {
		return nil, err
	}

	data := map[string]any{"partials": partials}
	maps.Copy(data, md.Context)
	maps.Copy(data, in.Context)
	maps.Copy(data, fromFiles)
	maps.Copy(data, fromRootFiles)
	return data, nil
}

// renderFunctions layers front-matter functions, function files and root
// function files.
func (e *Engine) renderFunctions(md *meta.Metadata, in Inputs) (map[string]any, error) {
	fromFiles, err := e.resolver.Functions(in.FunctionFiles, false)
	if err != nil {
		return nil, err
	}
	fromRootFiles, err := e.resolver.Functions(in.RootFunctionFiles, true)
	if err != nil {
		return nil, err
	}

	funcs := make(map[string]any, len(md.Functions)+len(fromFiles)+len(fromRootFiles))
	maps.Copy(funcs, md.Functions)
	maps.Copy(funcs, fromFiles)
	maps.Copy(funcs, fromRootFiles)
	return funcs, nil
}
