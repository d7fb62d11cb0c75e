// Package errs defines the error taxonomy shared by the measy packages.
//
// Every error carries enough context to produce the one-line message the CLI
// prints, and unwraps to the underlying cause so callers can use errors.Is and
// errors.As against both the taxonomy and the standard library errors.
package errs

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"
)

// ConfigurationError reports a missing or invalid option.
type ConfigurationError struct {
	Option  string
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// NewConfigurationError returns a ConfigurationError for option.
func NewConfigurationError(option, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Option: option, Message: fmt.Sprintf(format, args...)}
}

// ParseError reports structured data that could not be parsed. When several
// parsers were attempted all of their errors are kept.
type ParseError struct {
	Path    string
	Message string
	Errs    []error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	for _, err := range e.Errs {
		// Causes stay on one line; some parsers report multi-line errors.
		b.WriteString("; ")
		b.WriteString(strings.Join(strings.Fields(err.Error()), " "))
	}
	return b.String()
}

func (e *ParseError) Unwrap() []error {
	return e.Errs
}

// UnsupportedSourceError reports a context or function source whose extension
// has no loader.
type UnsupportedSourceError struct {
	Path      string
	Extension string
	Reason    string
}

func (e *UnsupportedSourceError) Error() string {
	msg := fmt.Sprintf("%s: %q files are not supported", e.Path, e.Extension)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// IOError reports a filesystem failure for Path.
type IOError struct {
	Op   string
	Path string
	Err  error
	// Message replaces the default "<op> <path>: <err>" text when set.
	Message string
}

func (e *IOError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, unwrapPathError(e.Err))
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError wraps err, returning nil when err is nil.
func NewIOError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// EngineError reports an unknown or unregistered template engine.
type EngineError struct {
	Name string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("No engine provided or unknown engine: %s", e.Name)
}

// IsDirectory reports whether err was caused by treating a directory as a file.
func IsDirectory(err error) bool {
	return errors.Is(err, syscall.EISDIR)
}

// IsNotExist reports whether err was caused by a missing file.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func unwrapPathError(err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return err
}
