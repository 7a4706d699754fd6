package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"

	"pathit/internal/errs"
	"pathit/internal/sortutil"
)

// Difference classifies one path in a diff.
type Difference int

const (
	// New: only in the left snapshot.
	New Difference = iota + 1
	// Absence: only in the right snapshot.
	Absence
	// HashDifference: in both, with different digests. Hashed mode only.
	HashDifference
)

// Symbol is the one-character prefix used when rendering lines.
func (d Difference) Symbol() string {
	switch d {
	case New:
		return "+"
	case Absence:
		return "-"
	case HashDifference:
		return "x"
	}
	return "?"
}

func (d Difference) String() string {
	switch d {
	case New:
		return "new"
	case Absence:
		return "absent"
	case HashDifference:
		return "changed"
	}
	return fmt.Sprintf("Difference(%d)", int(d))
}

func (d Difference) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Change is one classified path.
type Change struct {
	Path string     `json:"path"`
	Kind Difference `json:"kind"`
}

// Changes is a diff result sorted by path, one entry per affected path.
type Changes []Change

// Lookup returns the classification of path. ok is false when the path is
// identical on both sides or unknown to either.
func (c Changes) Lookup(path string) (Difference, bool) {
	i := sort.Search(len(c), func(i int) bool { return c[i].Path >= path })
	if i < len(c) && c[i].Path == path {
		return c[i].Kind, true
	}
	return 0, false
}

// Counts tallies changes per kind.
type Counts struct {
	New     int `json:"new"`
	Absent  int `json:"absent"`
	Changed int `json:"changed"`
}

func (n Counts) Total() int { return n.New + n.Absent + n.Changed }

func (c Changes) Counts() Counts {
	var n Counts
	for _, ch := range c {
		switch ch.Kind {
		case New:
			n.New++
		case Absence:
			n.Absent++
		case HashDifference:
			n.Changed++
		}
	}
	return n
}

// Diff classifies every path that differs between left and right. Both
// snapshots must share a mode. Diff consumes its inputs: each left path is
// removed from right as it is matched, the remainder of right becomes
// Absence, and both snapshots are empty on return.
func Diff(left, right *Snapshot) (Changes, error) {
	if left.mode != right.mode {
		return nil, errs.NewModeMismatch(left.mode.String(), right.mode.String())
	}

	var out Changes
	for p, ld := range left.entries {
		delete(left.entries, p)
		rd, ok := right.entries[p]
		if !ok {
			out = append(out, Change{Path: p, Kind: New})
			continue
		}
		delete(right.entries, p)
		if left.mode == Hashed && ld != rd {
			out = append(out, Change{Path: p, Kind: HashDifference})
		}
	}
	for p := range right.entries {
		delete(right.entries, p)
		out = append(out, Change{Path: p, Kind: Absence})
	}

	sortutil.ByPath(out, func(c Change) string { return c.Path })
	return out, nil
}
