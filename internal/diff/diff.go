// Package diff renders unified patches between the two sides of a changed
// path, using github.com/pmezard/go-difflib/difflib for the hunks.
package diff

import (
	"fmt"
	"os"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"pathit/internal/errs"
	"pathit/internal/textutil"
)

// DevNull names the missing side of an added or removed file.
const DevNull = "/dev/null"

// Options controls patch generation.
type Options struct {
	// MaxBytes caps old+new input size. Larger inputs get a placeholder
	// patch. 0 means no limit.
	MaxBytes int

	// Context is the number of context lines per hunk; 0 means 3.
	Context int
}

func (o Options) context() int {
	if o.Context <= 0 {
		return 3
	}
	return o.Context
}

// Unified produces a unified patch for a↦b. oversize is true when the
// MaxBytes guard replaced the body with a placeholder.
func Unified(aName, bName string, a, b []byte, opt Options) (body string, oversize bool) {
	if opt.MaxBytes > 0 && len(a)+len(b) > opt.MaxBytes {
		return omitted(aName, bName, "oversize"), true
	}
	if textutil.IsBinary(a) || textutil.IsBinary(b) {
		return fmt.Sprintf("Binary files %s and %s differ\n", aName, bName), false
	}

	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(textutil.NormalizeUTF8LF(a))),
		B:        splitLinesKeepNL(string(textutil.NormalizeUTF8LF(b))),
		FromFile: aName,
		ToFile:   bName,
		Context:  opt.context(),
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return omitted(aName, bName, err.Error()), false
	}
	return s, false
}

// Added is Unified against an empty old side.
func Added(name string, b []byte, opt Options) (string, bool) {
	return Unified(DevNull, name, nil, b, opt)
}

// Removed is Unified against an empty new side.
func Removed(name string, a []byte, opt Options) (string, bool) {
	return Unified(name, DevNull, a, nil, opt)
}

// Files reads both sides from disk and patches oldPath↦newPath. An empty
// path stands for a missing side. Names in the headers get "a/" and "b/"
// prefixes.
func Files(name, oldPath, newPath string, opt Options) (string, error) {
	var a, b []byte
	var err error
	if oldPath != "" {
		if a, err = os.ReadFile(oldPath); err != nil {
			return "", errs.NewOpenFile(oldPath, err)
		}
	}
	if newPath != "" {
		if b, err = os.ReadFile(newPath); err != nil {
			return "", errs.NewOpenFile(newPath, err)
		}
	}
	switch {
	case oldPath == "":
		s, _ := Added("b/"+name, b, opt)
		return s, nil
	case newPath == "":
		s, _ := Removed("a/"+name, a, opt)
		return s, nil
	}
	s, _ := Unified("a/"+name, "b/"+name, a, b, opt)
	return s, nil
}

// splitLinesKeepNL keeps the "\n" on each line, which difflib expects. A
// final line without a newline gets one so hunks stay line-aligned.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] = string(textutil.EnsureTrailingLF([]byte(lines[len(lines)-1])))
	}
	return lines
}

func omitted(aName, bName, reason string) string {
	return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff omitted (%s)\n", aName, bName, reason)
}
