// Package errs holds the error kinds shared by the traversal, hashing,
// snapshot and collect layers. Every error carries enough context (path,
// line) to identify what failed; none of them are retried by callers.
package errs

import (
	"fmt"

	"github.com/boostgo/errorx"
)

var (
	ErrOpenDirectory = errorx.New("pathit.tree.open_directory")
	ErrReadDirectory = errorx.New("pathit.tree.read_directory")
	ErrNotDescendant = errorx.New("pathit.path.not_descendant")

	ErrOpenFile = errorx.New("pathit.hash.open")
	ErrHashFile = errorx.New("pathit.hash.read")

	ErrReadListing   = errorx.New("pathit.listing.read")
	ErrParseListing  = errorx.New("pathit.listing.parse")
	ErrWriteListing  = errorx.New("pathit.listing.write")
	ErrModeMismatch  = errorx.New("pathit.diff.mode_mismatch")
	ErrReadIgnore    = errorx.New("pathit.tree.ignore_file")
	ErrUnknownDigest = errorx.New("pathit.hash.unknown_algorithm")

	ErrCollect    = errorx.New("pathit.collect")
	ErrLoadConfig = errorx.New("pathit.config.load")
)

type pathErrorContext struct {
	Path  string `json:"path"`
	Error error  `json:"error"`
}

type lineErrorContext struct {
	Line  int    `json:"line"`
	Text  string `json:"text"`
	Error string `json:"error"`
}

type relErrorContext struct {
	Root string `json:"root"`
	Path string `json:"path"`
}

type modeErrorContext struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

type collectErrorContext struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Error       error  `json:"error"`
}

// NewOpenDirectory wraps a failure to open a directory for listing.
func NewOpenDirectory(path string, err error) error {
	return fmt.Errorf("open directory %s: %w", path, ErrOpenDirectory.
		SetError(err).
		SetData(pathErrorContext{
			Path:  path,
			Error: err,
		}))
}

// NewReadDirectory wraps a failure while reading entries from an open
// directory.
func NewReadDirectory(path string, err error) error {
	return fmt.Errorf("read directory %s: %w", path, ErrReadDirectory.
		SetError(err).
		SetData(pathErrorContext{
			Path:  path,
			Error: err,
		}))
}

// NewNotDescendant reports a path that does not lie beneath root.
func NewNotDescendant(root, path string) error {
	return fmt.Errorf("%s is not beneath %s: %w", path, root, ErrNotDescendant.
		SetData(relErrorContext{
			Root: root,
			Path: path,
		}))
}

// NewOpenFile wraps a failure to open a file for hashing.
func NewOpenFile(path string, err error) error {
	return fmt.Errorf("open %s: %w", path, ErrOpenFile.
		SetError(err).
		SetData(pathErrorContext{
			Path:  path,
			Error: err,
		}))
}

// NewHashFile wraps a read failure part way through hashing a file.
func NewHashFile(path string, err error) error {
	return fmt.Errorf("hash %s: %w", path, ErrHashFile.
		SetError(err).
		SetData(pathErrorContext{
			Path:  path,
			Error: err,
		}))
}

// NewReadListing wraps an I/O failure on a listing file or stream.
func NewReadListing(path string, err error) error {
	return fmt.Errorf("read listing %s: %w", path, ErrReadListing.
		SetError(err).
		SetData(pathErrorContext{
			Path:  path,
			Error: err,
		}))
}

// NewParseListing reports a malformed listing line. reason is a short
// human description ("missing separator", "digest length 3, want 64").
func NewParseListing(line int, text, reason string) error {
	return fmt.Errorf("listing line %d: %s: %w", line, reason, ErrParseListing.
		SetData(lineErrorContext{
			Line:  line,
			Text:  text,
			Error: reason,
		}))
}

// NewWriteListing wraps a failure to serialize or persist a listing.
func NewWriteListing(err error) error {
	return fmt.Errorf("write listing: %w", ErrWriteListing.SetError(err))
}

// NewModeMismatch reports two snapshots that cannot be compared because only
// one of them carries digests.
func NewModeMismatch(left, right string) error {
	return fmt.Errorf("cannot compare %s snapshot with %s snapshot: %w", left, right, ErrModeMismatch.
		SetData(modeErrorContext{
			Left:  left,
			Right: right,
		}))
}

// NewReadIgnore wraps a failure to read an ignore-pattern file.
func NewReadIgnore(path string, err error) error {
	return fmt.Errorf("read ignore file %s: %w", path, ErrReadIgnore.
		SetError(err).
		SetData(pathErrorContext{
			Path:  path,
			Error: err,
		}))
}

// NewUnknownDigest reports an algorithm name no Hasher supports.
func NewUnknownDigest(name string) error {
	return fmt.Errorf("unknown digest algorithm %q: %w", name, ErrUnknownDigest.
		SetData(struct {
			Algorithm string `json:"algorithm"`
		}{
			Algorithm: name,
		}))
}

// NewCollect wraps a failure to copy src into the collect destination dst.
func NewCollect(src, dst string, err error) error {
	return fmt.Errorf("collect %s into %s: %w", src, dst, ErrCollect.
		SetError(err).
		SetData(collectErrorContext{
			Source:      src,
			Destination: dst,
			Error:       err,
		}))
}

// NewLoadConfig wraps a failure to read or decode settings from path.
func NewLoadConfig(path string, err error) error {
	return fmt.Errorf("load config %s: %w", path, ErrLoadConfig.
		SetError(err).
		SetData(pathErrorContext{
			Path:  path,
			Error: err,
		}))
}
