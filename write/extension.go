package write

import (
	"path/filepath"
	"strings"
)

// ReplaceExtension swaps the extension of path for ext, which may be given
// with or without the leading dot. An empty ext removes the extension.
//
//	ReplaceExtension("a/b.hbs", "md")   // "a/b.md"
//	ReplaceExtension("a/b.hbs", ".md")  // "a/b.md"
//	ReplaceExtension("a/b.md.hbs", "")  // "a/b.md"
func ReplaceExtension(path, ext string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return base
	}
	return base + "." + ext
}
