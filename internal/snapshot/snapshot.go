// Package snapshot holds the set of normalized paths captured from one tree
// or one listing, optionally paired with content digests, and computes the
// difference between two of them.
package snapshot

import (
	"sort"

	"pathit/internal/digest"
	"pathit/internal/errs"
)

// Mode says whether a snapshot carries digests.
type Mode int

const (
	Unhashed Mode = iota
	Hashed
)

func (m Mode) String() string {
	if m == Hashed {
		return "hashed"
	}
	return "unhashed"
}

// Snapshot maps normalized paths to digests. Unhashed snapshots store the
// zero Digest for every path.
type Snapshot struct {
	mode    Mode
	entries map[string]digest.Digest
}

// Empty returns a snapshot with no entries.
func Empty(mode Mode) *Snapshot {
	return &Snapshot{mode: mode, entries: map[string]digest.Digest{}}
}

func (s *Snapshot) Mode() Mode { return s.mode }

func (s *Snapshot) Len() int { return len(s.entries) }

// Add inserts or replaces path. In unhashed mode d is dropped.
func (s *Snapshot) Add(path string, d digest.Digest) {
	if s.mode == Unhashed {
		d = digest.Digest{}
	}
	s.entries[path] = d
}

// Lookup returns the digest stored for path.
func (s *Snapshot) Lookup(path string) (digest.Digest, bool) {
	d, ok := s.entries[path]
	return d, ok
}

// Paths returns every path in lexicographic order.
func (s *Snapshot) Paths() []string {
	out := make([]string, 0, len(s.entries))
	for p := range s.entries {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Merge copies other into s; on duplicate paths other wins.
func (s *Snapshot) Merge(other *Snapshot) error {
	if other.mode != s.mode {
		return errs.NewModeMismatch(s.mode.String(), other.mode.String())
	}
	for p, d := range other.entries {
		s.entries[p] = d
	}
	return nil
}
