package render

import (
	"fmt"
	"strings"

	"github.com/cpcf/measy/casing"
)

var irregularPlurals = map[string]string{
	"person":    "people",
	"man":       "men",
	"woman":     "women",
	"child":     "children",
	"tooth":     "teeth",
	"foot":      "feet",
	"mouse":     "mice",
	"datum":     "data",
	"medium":    "media",
	"criterion": "criteria",
	"index":     "indices",
}

func pluralize(word string) string {
	if word == "" {
		return ""
	}

	lower := strings.ToLower(word)
	if plural, ok := irregularPlurals[lower]; ok {
		return plural
	}

	switch {
	case strings.HasSuffix(lower, "s"), strings.HasSuffix(lower, "x"), strings.HasSuffix(lower, "z"),
		strings.HasSuffix(lower, "ch"), strings.HasSuffix(lower, "sh"):
		return word + "es"
	case strings.HasSuffix(lower, "y") && len(lower) > 1 && !strings.ContainsRune("aeiou", rune(lower[len(lower)-2])):
		return word[:len(word)-1] + "ies"
	default:
		return word + "s"
	}
}

func humanize(s string) string {
	words := casing.Words(s)
	for i, w := range words {
		if i == 0 {
			words[i] = casing.UcFirst(strings.ToLower(w))
		} else {
			words[i] = strings.ToLower(w)
		}
	}
	return strings.Join(words, " ")
}

func indentLines(indent int, text string) string {
	if text == "" {
		return ""
	}

	prefix := strings.Repeat(" ", indent)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func quote(s any) string {
	return fmt.Sprintf("%q", toString(s))
}

func singleQuote(s any) string {
	return "'" + toString(s) + "'"
}

func comment(prefix, text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = prefix
		} else {
			lines[i] = prefix + " " + line
		}
	}
	return strings.Join(lines, "\n")
}

func goComment(text string) string {
	return comment("//", text)
}

// truncate shortens s to at most length runes, ending in "..." when cut.
func truncate(length int, s string) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	if length <= 3 {
		return string(runes[:length])
	}
	return string(runes[:length-3]) + "..."
}
