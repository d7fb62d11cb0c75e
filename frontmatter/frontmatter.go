// Package frontmatter splits a template file into its YAML front-matter block
// and body.
//
// A front-matter block starts on the first line of the document with "---"
// and ends at the next line that is "---" or "...". The newline following the
// closing line belongs to the block, not the body.
package frontmatter

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cpcf/measy/errs"
)

// PathList is a front-matter value that may be written either as a single
// string or as a list of strings.
type PathList []string

func (p *PathList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*p = nil
			return nil
		}
		*p = PathList{value.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*p = list
		return nil
	default:
		return &yaml.TypeError{Errors: []string{"expected a path or a list of paths"}}
	}
}

// Attributes are the front-matter keys measy understands.
type Attributes struct {
	ContextFiles      PathList `yaml:"contextFiles"`
	RootContextFiles  PathList `yaml:"rootContextFiles"`
	FunctionFiles     PathList `yaml:"functionFiles"`
	RootFunctionFiles PathList `yaml:"rootFunctionFiles"`
	PartialDirs       PathList `yaml:"partialDirs"`
	TargetExtension   string   `yaml:"targetExtension"`
}

// Document is a split template file.
type Document struct {
	Attributes Attributes
	// Raw holds every front-matter key, including ones measy ignores.
	Raw            map[string]any
	FrontMatter    string
	Body           string
	HasFrontMatter bool
}

// Split separates content into attributes and body. Content without a
// front-matter block yields empty attributes and the whole content as body.
func Split(content string) (*Document, error) {
	block, yamlText, body, ok := cut(content)
	if !ok {
		return &Document{Raw: map[string]any{}, Body: content}, nil
	}

	doc := &Document{
		Raw:            map[string]any{},
		FrontMatter:    block,
		Body:           body,
		HasFrontMatter: true,
	}

	if strings.TrimSpace(yamlText) == "" {
		return doc, nil
	}

	if err := yaml.Unmarshal([]byte(yamlText), &doc.Raw); err != nil {
		return nil, &errs.ParseError{Message: "malformed front-matter", Errs: []error{err}}
	}
	if err := yaml.Unmarshal([]byte(yamlText), &doc.Attributes); err != nil {
		return nil, &errs.ParseError{Message: "malformed front-matter", Errs: []error{err}}
	}
	if doc.Raw == nil {
		doc.Raw = map[string]any{}
	}

	return doc, nil
}

// Strip removes a leading front-matter block without interpreting it.
func Strip(content string) string {
	if _, _, body, ok := cut(content); ok {
		return body
	}
	return content
}

func cut(content string) (block, yamlText, body string, ok bool) {
	text := strings.TrimPrefix(content, "\ufeff")

	first, rest, found := strings.Cut(text, "\n")
	if !found || !isFence(first, false) {
		return "", "", "", false
	}

	offset := len(first) + 1
	for {
		line, remaining, more := strings.Cut(rest, "\n")
		if isFence(line, true) {
			end := offset + len(line)
			if more {
				end++
			}
			yamlText = text[len(first)+1 : offset]
			return text[:end], yamlText, text[end:], true
		}
		if !more {
			return "", "", "", false
		}
		offset += len(line) + 1
		rest = remaining
	}
}

func isFence(line string, closing bool) bool {
	line = strings.TrimRight(line, " \t\r")
	if line == "---" {
		return true
	}
	return closing && line == "..."
}
