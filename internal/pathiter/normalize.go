package pathiter

import (
	"path/filepath"
	"strings"

	"pathit/internal/errs"
)

// Normalize returns path relative to root with '/' separators, plus a
// trailing '/' when isDir is set. It fails when path is root itself or lies
// outside it. Both arguments must be absolute, or both relative to the same
// directory.
func Normalize(root, path string, isDir bool) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." ||
		strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errs.NewNotDescendant(root, path)
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += "/"
	}
	return rel, nil
}
