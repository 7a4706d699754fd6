// Package collect copies the entries a diff classified as new or changed out
// of the scanned tree, either into a directory (relative paths preserved) or
// into a reproducible ZIP archive.
//
// ZIP layout:
//
//	index.json          # counts and the full change list
//	files/<relpath>     # new and changed entries, sorted by path
//	diffs/<relpath>.patch  # optional text patches, sorted by path
package collect

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pathit/internal/errs"
	"pathit/internal/snapshot"
	"pathit/internal/ziputil"
)

// IndexName is the JSON index written at the root of a ZIP collection.
const IndexName = "index.json"

// Index describes a ZIP collection.
type Index struct {
	Counts  snapshot.Counts  `json:"counts"`
	Changes snapshot.Changes `json:"changes"`
}

// Options tunes a collection.
type Options struct {
	// Patches maps changed paths to unified diffs. Only ZIP collections
	// store them.
	Patches map[string]string
}

// Result reports what was written.
type Result struct {
	Dest  string
	Files int
	Dirs  int
	Zip   bool
}

// IsZip reports whether dest selects the ZIP sink.
func IsZip(dest string) bool {
	return strings.EqualFold(filepath.Ext(dest), ".zip")
}

// Selected returns the changes that get collected: New and HashDifference.
// Absent entries have nothing on disk to copy.
func Selected(changes snapshot.Changes) snapshot.Changes {
	var out snapshot.Changes
	for _, c := range changes {
		if c.Kind == snapshot.New || c.Kind == snapshot.HashDifference {
			out = append(out, c)
		}
	}
	return out
}

// Run copies every selected change from root into dest. Paths ending in '/'
// become directories; everything else is copied as a file.
func Run(dest, root string, changes snapshot.Changes, opt Options) (Result, error) {
	if IsZip(dest) {
		return runZip(dest, root, changes, opt)
	}
	return runDir(dest, root, changes)
}

func runDir(dest, root string, changes snapshot.Changes) (Result, error) {
	res := Result{Dest: dest}
	for _, c := range Selected(changes) {
		src := filepath.Join(root, filepath.FromSlash(c.Path))
		dst := filepath.Join(dest, filepath.FromSlash(c.Path))
		if strings.HasSuffix(c.Path, "/") {
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return res, errs.NewCollect(src, dst, err)
			}
			res.Dirs++
			continue
		}
		if err := copyFile(src, dst); err != nil {
			return res, err
		}
		res.Files++
	}
	return res, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errs.NewCollect(src, dst, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errs.NewCollect(src, dst, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errs.NewCollect(src, dst, err)
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errs.NewCollect(src, dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errs.NewCollect(src, dst, err)
	}
	if err := out.Close(); err != nil {
		return errs.NewCollect(src, dst, err)
	}
	return nil
}

func runZip(dest, root string, changes snapshot.Changes, opt Options) (res Result, err error) {
	res = Result{Dest: dest, Zip: true}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return res, errs.NewCollect(root, dest, err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return res, errs.NewCollect(root, dest, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errs.NewCollect(root, dest, cerr)
		}
	}()

	zw := zip.NewWriter(f)
	defer func() {
		if cerr := zw.Close(); err == nil && cerr != nil {
			err = errs.NewCollect(root, dest, cerr)
		}
	}()

	idx := Index{Counts: changes.Counts(), Changes: changes}
	if idx.Changes == nil {
		idx.Changes = snapshot.Changes{}
	}
	if err := ziputil.WriteJSON(zw, IndexName, idx); err != nil {
		return res, errs.NewCollect(root, dest, err)
	}

	for _, c := range Selected(changes) {
		name := "files/" + c.Path
		if strings.HasSuffix(c.Path, "/") {
			if err := ziputil.WriteDir(zw, name); err != nil {
				return res, errs.NewCollect(root, dest, err)
			}
			res.Dirs++
			continue
		}
		src := filepath.Join(root, filepath.FromSlash(c.Path))
		if err := addFile(zw, name, src); err != nil {
			return res, errs.NewCollect(src, dest, err)
		}
		res.Files++
	}

	if len(opt.Patches) > 0 {
		names := make([]string, 0, len(opt.Patches))
		for n := range opt.Patches {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			body := strings.NewReader(opt.Patches[n])
			if err := ziputil.CopyFromReader(zw, "diffs/"+n+".patch", body); err != nil {
				return res, errs.NewCollect(root, dest, err)
			}
		}
	}
	return res, nil
}

func addFile(zw *zip.Writer, name, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return ziputil.CopyFromReader(zw, name, in)
}
