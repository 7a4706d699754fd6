// Package digest computes fixed-width content digests for files and models
// the directory placeholder as a tagged value instead of a magic string.
package digest

import (
	"encoding/hex"
	"strings"
)

// HexLen is the width of every serialized digest: 32 bytes, hex encoded.
const HexLen = 64

// Placeholder is the serialized form of a directory digest. '-' is not a hex
// digit, so it never collides with a file digest.
const Placeholder = "----------------------------------------------------------------"

// Digest identifies file content, or marks a directory.
// The zero Digest is "no digest" and is what unhashed snapshots store.
type Digest struct {
	hex string
	dir bool
}

// Directory is the digest every directory entry carries.
var Directory = Digest{dir: true}

// FromSum wraps a raw hash sum.
func FromSum(sum []byte) Digest {
	return Digest{hex: hex.EncodeToString(sum)}
}

// Parse reads the serialized form written by String. Only the width is
// checked, the same rule a listing reader applies; ok is false when the width
// is wrong.
func Parse(s string) (d Digest, ok bool) {
	if len(s) != HexLen {
		return Digest{}, false
	}
	if s == Placeholder {
		return Directory, true
	}
	return Digest{hex: strings.ToLower(s)}, true
}

// IsDir reports whether d is the directory digest.
func (d Digest) IsDir() bool { return d.dir }

// IsZero reports whether d carries no digest at all.
func (d Digest) IsZero() bool { return !d.dir && d.hex == "" }

// String returns the listing form: lowercase hex, or Placeholder.
func (d Digest) String() string {
	if d.dir {
		return Placeholder
	}
	return d.hex
}
