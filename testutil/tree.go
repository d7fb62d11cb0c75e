// Package testutil builds and inspects file trees for tests.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
)

// Tree maps slash-separated relative paths to file contents. A path ending in
// "/" creates an empty directory.
type Tree map[string]string

// Write materializes the tree in a fresh temporary directory and returns its
// absolute path.
func (tr Tree) Write(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	// macOS temp dirs live behind a symlink; results are compared against
	// resolved paths.
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	tr.WriteFs(t, afero.NewOsFs(), dir)
	return dir
}

// WriteFs materializes the tree under root on fsys.
func (tr Tree) WriteFs(t testing.TB, fsys afero.Fs, root string) {
	t.Helper()
	for _, name := range tr.sortedPaths() {
		path := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			if err := fsys.MkdirAll(path, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", path, err)
			}
			continue
		}
		if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
		}
		if err := afero.WriteFile(fsys, path, []byte(tr[name]), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

// MemFs returns an in-memory filesystem holding the tree under root.
func (tr Tree) MemFs(t testing.TB, root string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	tr.WriteFs(t, fsys, root)
	return fsys
}

// Read snapshots every regular file under dir as a Tree.
func Read(t testing.TB, dir string) Tree {
	t.Helper()
	out := Tree{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("read tree %s: %v", dir, err)
	}
	return out
}

// Path joins slash-separated elements onto dir.
func Path(dir string, elems ...string) string {
	parts := append([]string{dir}, elems...)
	return filepath.FromSlash(filepath.Join(parts...))
}

func (tr Tree) sortedPaths() []string {
	paths := make([]string, 0, len(tr))
	for p := range tr {
		if p == "" {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
