package scan

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/cpcf/measy/cache"
	"github.com/cpcf/measy/errs"
)

// Indexer maps partial names to files. A partial's name is its path relative
// to its partial directory, slash-separated, without extension.
type Indexer struct {
	fs    afero.Fs
	cache *cache.Cache[string, map[string]string]
}

type IndexerOption func(*Indexer)

func WithIndexFs(fs afero.Fs) IndexerOption {
	return func(ix *Indexer) {
		ix.fs = fs
	}
}

func WithIndexCache(c *cache.Cache[string, map[string]string]) IndexerOption {
	return func(ix *Indexer) {
		ix.cache = c
	}
}

func NewIndexer(opts ...IndexerOption) *Indexer {
	ix := &Indexer{
		fs:    afero.NewOsFs(),
		cache: cache.New[string, map[string]string](),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Index lists the files with extension ext (any extension when empty) under
// each of dirs. When two directories hold a partial of the same name the later
// directory wins. Missing directories contribute nothing.
//
// The returned map is shared with later callers for the same arguments and
// must be copied before being modified.
func (ix *Indexer) Index(dirs []string, ext string) (map[string]string, error) {
	key := strings.Join(dirs, "\x00") + "\x00\x00" + ext
	return ix.cache.GetOrCompute(key, func() (map[string]string, error) {
		return ix.index(dirs, ext)
	})
}

func (ix *Indexer) index(dirs []string, ext string) (map[string]string, error) {
	var exts []string
	if ext != "" {
		exts = []string{ext}
	}

	out := map[string]string{}
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, errs.NewIOError("resolve", dir, err)
		}

		files, err := List(ix.fs, abs, ListOptions{Extensions: exts, Relative: true})
		if err != nil {
			return nil, err
		}

		for _, rel := range files {
			name := filepath.ToSlash(rel)
			name = strings.TrimSuffix(name, path.Ext(name))
			out[name] = filepath.Join(abs, rel)
		}
	}
	return out, nil
}
