package snapshot

import (
	"pathit/internal/digest"
	"pathit/internal/pathiter"
)

// Collector builds a snapshot by walking a tree.
type Collector struct {
	// Hasher digests every file; nil builds an unhashed snapshot.
	Hasher *digest.Hasher
	// Walk configures the tree iterator.
	Walk []pathiter.Option
	// Skip, when set, drops entries by absolute path. A skipped directory is
	// still descended.
	Skip func(abs string) bool
	// OnEntry is called after each path is added.
	OnEntry func(path string, d digest.Digest)
}

// Collect drains the iterator over root, normalizing and optionally hashing
// each entry. Files are hashed one at a time, between pulls. Any error aborts
// the walk and no snapshot is returned.
func (c Collector) Collect(root string) (*Snapshot, error) {
	mode := Unhashed
	if c.Hasher != nil {
		mode = Hashed
	}
	s := Empty(mode)

	it := pathiter.New(root, c.Walk...)
	defer it.Close()

	for e, err := range it.All() {
		if err != nil {
			return nil, err
		}
		if c.Skip != nil && c.Skip(e.Path) {
			continue
		}
		rel, err := pathiter.Normalize(it.Root(), e.Path, e.IsDir)
		if err != nil {
			return nil, err
		}
		var d digest.Digest
		switch {
		case c.Hasher == nil:
		case e.IsDir:
			d = digest.Directory
		default:
			if d, err = c.Hasher.File(e.Path); err != nil {
				return nil, err
			}
		}
		s.Add(rel, d)
		if c.OnEntry != nil {
			c.OnEntry(rel, d)
		}
	}
	return s, nil
}

// Collect walks root with the given iterator options. See Collector.
func Collect(root string, hasher *digest.Hasher, opts ...pathiter.Option) (*Snapshot, error) {
	return Collector{Hasher: hasher, Walk: opts}.Collect(root)
}
