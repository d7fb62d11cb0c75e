// Package casing converts identifiers between naming conventions.
package casing

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Words splits s into words at separators (space, '_', '-', '.'), at
// lower-to-upper transitions, at the end of an upper-case run followed by a
// lower-case letter ("HTTPServer" -> "HTTP", "Server") and at letter/digit
// boundaries. Other punctuation is dropped.
func Words(s string) []string {
	if s == "" {
		return nil
	}

	runes := []rune(s)
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}

		if i > 0 && len(current) > 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			case unicode.IsDigit(r) && unicode.IsLetter(prev):
				flush()
			case unicode.IsLetter(r) && unicode.IsDigit(prev):
				flush()
			}
		}

		current = append(current, r)
	}
	flush()

	return words
}

// Camel returns s in camelCase: "my-data" -> "myData".
func Camel(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// Pascal returns s in PascalCase: "my-data" -> "MyData".
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// Snake returns s in snake_case.
func Snake(s string) string {
	return joinLower(Words(s), "_")
}

// Kebab returns s in kebab-case.
func Kebab(s string) string {
	return joinLower(Words(s), "-")
}

// UcFirst upper-cases the first rune of s and leaves the rest untouched.
func UcFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func capitalize(w string) string {
	return UcFirst(strings.ToLower(w))
}

func joinLower(words []string, sep string) string {
	lowered := make([]string, len(words))
	for i, w := range words {
		lowered[i] = strings.ToLower(w)
	}
	return strings.Join(lowered, sep)
}
