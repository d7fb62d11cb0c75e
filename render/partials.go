package render

import (
	"fmt"
	"sort"
	"text/template"
)

// registerPartials parses every partial as a template named after the
// partial, associated with root, so templates can call
// {{ template "name" . }}. Partials are parsed in name order so failures are
// reported deterministically.
func registerPartials(root *template.Template, partials map[string]string) error {
	for _, name := range sortedKeys(partials) {
		if name == root.Name() {
			return fmt.Errorf("partial %q has the same name as the template", name)
		}
		if _, err := root.New(name).Parse(partials[name]); err != nil {
			return fmt.Errorf("failed to parse partial %s: %w", name, err)
		}
	}
	return nil
}

// templateNames lists the templates associated with root, root excluded.
func templateNames(root *template.Template) []string {
	var names []string
	for _, t := range root.Templates() {
		if t.Name() != root.Name() {
			names = append(names, t.Name())
		}
	}
	sort.Strings(names)
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
