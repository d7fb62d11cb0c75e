// Package write writes generated files.
package write

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/cpcf/measy/errs"
)

type Writer interface {
	// Write stores content at path and reports whether the file changed.
	Write(path string, content []byte, options Options) (bool, error)
	NeedsWrite(path string, content []byte) (bool, error)
}

type Options struct {
	CreateDirs bool
	Overwrite  bool
	// Atomic writes to a temporary file next to path and renames it.
	Atomic bool
	// SkipUnchanged leaves files whose content already matches untouched.
	SkipUnchanged bool
}

// DefaultOptions is how generated files are written: parents created,
// existing files replaced atomically, identical files left alone.
var DefaultOptions = Options{CreateDirs: true, Overwrite: true, Atomic: true, SkipUnchanged: true}

type BaseWriter struct {
	fs afero.Fs
}

func NewBaseWriter(fs afero.Fs) *BaseWriter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &BaseWriter{fs: fs}
}

func (bw *BaseWriter) Write(path string, content []byte, options Options) (bool, error) {
	if options.SkipUnchanged {
		needed, err := bw.NeedsWrite(path, content)
		if err != nil {
			return false, err
		}
		if !needed {
			return false, nil
		}
	}

	if options.CreateDirs {
		if err := bw.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return false, errs.NewIOError("create directories for", path, err)
		}
	}

	if !options.Overwrite {
		if _, err := bw.fs.Stat(path); err == nil {
			return false, fmt.Errorf("file already exists and overwrite is false: %s", path)
		}
	}

	var err error
	if options.Atomic {
		err = bw.atomicWrite(path, content)
	} else {
		err = afero.WriteFile(bw.fs, path, content, 0o644)
	}
	if err != nil {
		return false, errs.NewIOError("write", path, err)
	}
	return true, nil
}

// NeedsWrite reports whether path is missing or holds different content.
func (bw *BaseWriter) NeedsWrite(path string, content []byte) (bool, error) {
	existing, err := afero.ReadFile(bw.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, errs.NewIOError("read", path, err)
	}
	return !bytes.Equal(existing, content), nil
}

func (bw *BaseWriter) atomicWrite(path string, content []byte) error {
	file, err := afero.TempFile(bw.fs, filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tempPath := file.Name()

	if _, err := file.Write(content); err != nil {
		file.Close()
		bw.fs.Remove(tempPath)
		return err
	}

	if err := file.Close(); err != nil {
		bw.fs.Remove(tempPath)
		return err
	}

	if err := bw.fs.Chmod(tempPath, 0o644); err != nil {
		bw.fs.Remove(tempPath)
		return err
	}

	if err := bw.fs.Rename(tempPath, path); err != nil {
		bw.fs.Remove(tempPath)
		return err
	}
	return nil
}
