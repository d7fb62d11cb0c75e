package render

import (
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cpcf/measy/errs"
)

// Built-in engine names.
const (
	GoTemplate = "gotemplate"
	Handlebars = "handlebars"
	Mustache   = "mustache"
	Jinja      = "jinja"
	Nunjucks   = "nunjucks"
)

var builtinExtensions = map[string]string{
	"tmpl":       GoTemplate,
	"tpl":        GoTemplate,
	"gotmpl":     GoTemplate,
	"hbs":        Handlebars,
	"handlebars": Handlebars,
	"mustache":   Mustache,
	"njk":        Nunjucks,
	"jinja":      Jinja,
	"j2":         Jinja,
}

// EngineOfExtension returns the built-in engine conventionally used for
// files with extension ext, with or without the leading dot, or "" when
// there is none.
func EngineOfExtension(ext string) string {
	return builtinExtensions[strings.TrimPrefix(ext, ".")]
}

// Registry maps engine names and aliases to engines.
type Registry struct {
	mu         sync.RWMutex
	engines    map[string]Engine
	extensions map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		engines:    make(map[string]Engine),
		extensions: make(map[string]string),
	}
}

// DefaultRegistry returns a registry holding every built-in engine.
func DefaultRegistry(logger zerolog.Logger) *Registry {
	r := NewRegistry()
	r.Register(NewGoTemplateEngine(logger), "tmpl", "tpl", "gotmpl")
	r.Register(NewHandlebarsEngine(), "hbs", "handlebars")
	r.Register(NewMustacheEngine(logger), "mustache")
	r.Register(NewJinjaEngine(), "jinja", "j2")
	r.Alias(Nunjucks, Jinja, "njk")
	return r
}

// Register adds e under its name, replacing any engine of the same name, and
// associates the given extensions with it.
func (r *Registry) Register(e Engine, extensions ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.engines[e.Name()] = e
	for _, ext := range extensions {
		r.extensions[strings.TrimPrefix(ext, ".")] = e.Name()
	}
}

// Alias makes alias resolve to the engine registered as name and associates
// the given extensions with the alias.
func (r *Registry) Alias(alias, name string, extensions ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.engines[name]
	if !ok {
		return
	}
	r.engines[alias] = e
	for _, ext := range extensions {
		r.extensions[strings.TrimPrefix(ext, ".")] = alias
	}
}

// Get returns the engine registered under name.
func (r *Registry) Get(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.engines[name]
	if !ok {
		return nil, &errs.EngineError{Name: name}
	}
	return e, nil
}

// Supported reports whether name is a registered engine or alias.
func (r *Registry) Supported(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.engines[name]
	return ok
}

// EngineOf returns the engine name registered for extension ext, or "".
func (r *Registry) EngineOf(ext string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.extensions[strings.TrimPrefix(ext, ".")]
}

// Names lists registered engine names and aliases, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
