// Package ziputil writes reproducible ZIP entries: fixed timestamps, fixed
// modes and sanitized names, so the same input always yields the same bytes.
package ziputil

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// FixedZipTime ensures byte-for-byte reproducible archives (1980-01-01 UTC).
var FixedZipTime = time.Unix(315532800, 0).UTC()

// SanitizePath normalizes ZIP entry paths (forward slashes, no drive, no
// leading '/') and removes '.' and '..' segments without escaping the root.
// A trailing '/' is kept so directory entries stay directories.
func SanitizePath(p string) string {
	s := filepath.ToSlash(p)
	dir := strings.HasSuffix(s, "/")
	if len(s) > 1 && s[1] == ':' {
		s = s[2:]
	}
	s = strings.TrimLeft(s, "/")
	parts := strings.Split(s, "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
			continue
		}
		stack = append(stack, part)
	}
	s = strings.Join(stack, "/")
	if s == "" {
		return "entry"
	}
	if dir {
		s += "/"
	}
	return s
}

func header(name string, mode fs.FileMode) *zip.FileHeader {
	h := &zip.FileHeader{Name: SanitizePath(name), Method: zip.Deflate}
	h.SetMode(mode)
	h.Modified = FixedZipTime
	return h
}

// WriteDir adds a directory entry. name gets a trailing '/' if missing.
func WriteDir(zw *zip.Writer, name string) error {
	if !strings.HasSuffix(name, "/") {
		name += "/"
	}
	h := header(name, fs.ModeDir|0o755)
	h.Method = zip.Store
	if _, err := zw.CreateHeader(h); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	return nil
}

// WriteJSON writes an indented JSON entry.
func WriteJSON(zw *zip.Writer, name string, v any) error {
	w, err := zw.CreateHeader(header(name, 0o644))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// CopyFromReader streams r into a file entry without buffering it whole.
func CopyFromReader(zw *zip.Writer, name string, r io.Reader) error {
	w, err := zw.CreateHeader(header(name, 0o644))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
