package snapshot

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"

	"pathit/internal/digest"
	"pathit/internal/errs"
)

// Separator splits a digest from its path in a hashed listing. Only the
// first occurrence counts, so paths may contain it.
const Separator = ", "

// StdinName is the listing name that selects standard input.
const StdinName = "-"

const maxLineSize = 1 << 20

// Read parses a listing. Lines are trimmed and blank lines skipped. In hashed
// mode every line must be "<digest>, <path>" with a 64-character digest; the
// first bad line fails the whole read and no snapshot is returned.
func Read(r io.Reader, mode Mode) (*Snapshot, error) {
	return readNamed(StdinName, r, mode)
}

// ReadFile parses the listing at path, or standard input when path is "-".
func ReadFile(path string, mode Mode) (*Snapshot, error) {
	if path == StdinName {
		return readNamed(path, os.Stdin, mode)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewReadListing(path, err)
	}
	defer f.Close()
	return readNamed(path, f, mode)
}

func readNamed(name string, r io.Reader, mode Mode) (*Snapshot, error) {
	s := Empty(mode)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if mode == Unhashed {
			s.Add(line, digest.Digest{})
			continue
		}
		hex, path, ok := strings.Cut(line, Separator)
		if !ok {
			return nil, errs.NewParseListing(n, line, "missing \", \" separator")
		}
		d, ok := digest.Parse(hex)
		if !ok {
			return nil, errs.NewParseListing(n, line,
				fmt.Sprintf("digest has %d characters, want %d", len(hex), digest.HexLen))
		}
		s.Add(path, d)
	}
	if err := sc.Err(); err != nil {
		return nil, errs.NewReadListing(name, err)
	}
	return s, nil
}

// WriteTo serializes s in path order: "path\n" per entry when unhashed,
// "digest, path\n" when hashed.
func (s *Snapshot) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	for _, p := range s.Paths() {
		var n int
		var err error
		if s.mode == Hashed {
			n, err = fmt.Fprintf(bw, "%s%s%s\n", s.entries[p], Separator, p)
		} else {
			n, err = fmt.Fprintf(bw, "%s\n", p)
		}
		total += int64(n)
		if err != nil {
			return total, errs.NewWriteListing(err)
		}
	}
	if err := bw.Flush(); err != nil {
		return total, errs.NewWriteListing(err)
	}
	return total, nil
}

// Fingerprint is the xxh3-128 hash of the serialized listing, as 32 hex
// characters. Snapshots with equal content and mode share a fingerprint.
func (s *Snapshot) Fingerprint() string {
	var buf bytes.Buffer
	_, _ = s.WriteTo(&buf)
	return fmt.Sprintf("%x", xxh3.Hash128(buf.Bytes()).Bytes())
}

// Save writes the listing to path atomically: a temp file in the same
// directory is synced and then renamed over path.
func (s *Snapshot) Save(path string) error {
	dir := filepath.Dir(path)
	tmp, f, err := createTempFile(dir, filepath.Base(path))
	if err != nil {
		return errs.NewWriteListing(err)
	}
	if _, err := s.WriteTo(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return errs.NewWriteListing(err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return errs.NewWriteListing(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errs.NewWriteListing(err)
	}
	return nil
}

// createTempFile creates ".tmp-<base>-<rand>" in dir.
func createTempFile(dir, base string) (string, *os.File, error) {
	f, err := os.CreateTemp(dir, ".tmp-"+base+"-")
	if err != nil {
		return "", nil, err
	}
	return f.Name(), f, nil
}
