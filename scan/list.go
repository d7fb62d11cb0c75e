// Package scan finds template and partial files on disk.
package scan

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/cpcf/measy/errs"
)

type ListOptions struct {
	// Extensions filters files by extension, without the dot. Empty matches
	// every file that has an extension.
	Extensions []string
	// Ignore holds glob patterns relative to the listed directory. A pattern
	// excludes a path when it matches the path or any of its parent
	// directories. Absolute patterns are made relative to the directory.
	Ignore []string
	// Relative returns paths relative to the directory instead of joined to it.
	Relative bool
}

// List returns the files under dir matching opts, sorted. Paths with a
// segment starting with "." are skipped. A missing directory yields no files.
func List(fsys afero.Fs, dir string, opts ListOptions) ([]string, error) {
	ignore, err := ignorePatterns(dir, opts.Ignore)
	if err != nil {
		return nil, err
	}

	if _, err := fsys.Stat(dir); err != nil {
		if errs.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.NewIOError("stat", dir, err)
	}

	root := afero.NewIOFS(afero.NewBasePathFs(fsys, dir))

	var files []string
	err = doublestar.GlobWalk(root, filePattern(opts.Extensions), func(rel string, _ fs.DirEntry) error {
		if hidden(rel) || excluded(ignore, rel) {
			return nil
		}
		if opts.Relative {
			files = append(files, filepath.FromSlash(rel))
		} else {
			files = append(files, filepath.Join(dir, filepath.FromSlash(rel)))
		}
		return nil
	}, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errs.NewIOError("list", dir, err)
	}

	sort.Strings(files)
	return files, nil
}

func filePattern(extensions []string) string {
	var exts []string
	for _, ext := range extensions {
		ext = strings.TrimPrefix(ext, ".")
		if ext != "" {
			exts = append(exts, escape(ext))
		}
	}

	switch len(exts) {
	case 0:
		return "**/*.*"
	case 1:
		return "**/*." + exts[0]
	default:
		return "**/*.{" + strings.Join(exts, ",") + "}"
	}
}

func ignorePatterns(dir string, patterns []string) ([]string, error) {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if filepath.IsAbs(p) {
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return nil, errs.NewIOError("resolve", p, err)
			}
			p = rel
		}
		p = strings.TrimSuffix(path.Clean(filepath.ToSlash(p)), "/")
		if p == "." {
			// The directory itself: nothing survives.
			p = "**"
		}
		if !doublestar.ValidatePattern(p) {
			return nil, errs.NewConfigurationError("exclude-paths", "invalid exclude pattern: %s", p)
		}
		out = append(out, p)
	}
	return out, nil
}

// excluded reports whether any pattern matches rel or one of its parents.
func excluded(patterns []string, rel string) bool {
	if len(patterns) == 0 {
		return false
	}
	for candidate := rel; candidate != "." && candidate != ""; candidate = path.Dir(candidate) {
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, candidate); ok {
				return true
			}
		}
	}
	return false
}

func hidden(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '{', '}', ',', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
