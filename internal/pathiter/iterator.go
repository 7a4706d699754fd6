// Package pathiter walks a directory tree depth-first with an explicit stack
// of open directory handles, so memory grows with tree depth rather than
// tree size, and converts the yielded paths into the normalized,
// root-relative form used in listings.
package pathiter

import (
	"errors"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"pathit/internal/errs"
)

// Entry is one yielded filesystem entry.
type Entry struct {
	Path  string // absolute path
	IsDir bool   // symlinks followed
}

// Iterator yields every entry below a root in pre-order: a directory comes
// first, then its whole subtree, then its next sibling. The root itself is
// never yielded.
//
// Iterators are single use. After Next returns an error the stack is cleared
// and every later call returns io.EOF.
type Iterator struct {
	root  string
	opts  *options
	stack []*cursor

	pending    string
	hasPending bool
	done       bool
}

// New returns an Iterator over root. Nothing is opened until the first call
// to Next.
func New(root string, opts ...Option) *Iterator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}
	return &Iterator{
		root:       abs,
		opts:       o,
		pending:    abs,
		hasPending: true,
	}
}

// Root returns the absolute root yielded paths are relative to.
func (it *Iterator) Root() string { return it.root }

// Next returns the next entry, or io.EOF once the tree is exhausted.
func (it *Iterator) Next() (Entry, error) {
	if it.done {
		return Entry{}, io.EOF
	}
	e, err := it.advance()
	if err != nil {
		it.Close()
		return Entry{}, err
	}
	return e, nil
}

// All adapts the iterator for range-over-func. Iteration stops after the
// first error; breaking out of the loop releases open handles.
func (it *Iterator) All() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		defer it.Close()
		for {
			e, err := it.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(e, err) || err != nil {
				return
			}
		}
	}
}

// Close releases every open directory handle. It is safe to call more than
// once.
func (it *Iterator) Close() error {
	for _, c := range it.stack {
		c.close()
	}
	it.stack = nil
	it.hasPending = false
	it.pending = ""
	it.done = true
	return nil
}

func (it *Iterator) advance() (Entry, error) {
	if it.hasPending {
		dir := it.pending
		it.pending, it.hasPending = "", false
		c, err := openCursor(dir, it.opts.sorted)
		if err != nil {
			return Entry{}, err
		}
		it.stack = append(it.stack, c)
	}

	for len(it.stack) > 0 {
		top := it.stack[len(it.stack)-1]
		d, err := top.next(it.opts.batch)
		if errors.Is(err, io.EOF) {
			top.close()
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		if err != nil {
			return Entry{}, errs.NewReadDirectory(top.dir, err)
		}

		path := filepath.Join(top.dir, d.Name())
		isDir, descend := it.classify(path, d)
		if it.skip(path, d.Name(), isDir) {
			continue
		}
		if descend {
			it.pending, it.hasPending = path, true
		}
		return Entry{Path: path, IsDir: isDir}, nil
	}

	it.done = true
	return Entry{}, io.EOF
}

// classify reports whether d is a directory (following symlinks) and whether
// the iterator should descend into it. A dangling symlink is a plain entry.
func (it *Iterator) classify(path string, d fs.DirEntry) (isDir, descend bool) {
	if d.Type()&fs.ModeSymlink == 0 {
		return d.IsDir(), d.IsDir()
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return info.IsDir(), info.IsDir() && it.opts.followSymlinks
}

func (it *Iterator) skip(path, name string, isDir bool) bool {
	if _, ok := it.opts.exclude[name]; ok {
		return true
	}
	if it.opts.ignore.empty() {
		return false
	}
	rel, err := Normalize(it.root, path, false)
	if err != nil {
		return false
	}
	return it.opts.ignore.Match(rel, isDir)
}

// cursor is one level of the stack: an open listing of a directory.
type cursor struct {
	dir string
	f   *os.File
	buf []fs.DirEntry
}

func openCursor(dir string, sorted bool) (*cursor, error) {
	if sorted {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, errs.NewOpenDirectory(dir, err)
		}
		return &cursor{dir: dir, buf: entries}, nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return nil, errs.NewOpenDirectory(dir, err)
	}
	return &cursor{dir: dir, f: f}, nil
}

func (c *cursor) next(batch int) (fs.DirEntry, error) {
	for len(c.buf) == 0 {
		if c.f == nil {
			return nil, io.EOF
		}
		entries, err := c.f.ReadDir(batch)
		c.buf = entries
		if len(entries) > 0 {
			break
		}
		if err == nil {
			continue
		}
		c.close()
		return nil, err
	}
	d := c.buf[0]
	c.buf = c.buf[1:]
	return d, nil
}

func (c *cursor) close() {
	if c.f != nil {
		_ = c.f.Close()
		c.f = nil
	}
	c.buf = nil
}
