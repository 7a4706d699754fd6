package digest

import (
	"crypto/sha256"
	"hash"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/sha3"

	"pathit/internal/errs"
)

// Algorithm names a 256-bit hash function.
type Algorithm string

const (
	SHA256   Algorithm = "sha256"
	SHA3_256 Algorithm = "sha3-256"
)

// Algorithms lists the supported algorithms, default first.
var Algorithms = []Algorithm{SHA256, SHA3_256}

// ParseAlgorithm accepts the canonical names plus a few common spellings
// ("SHA-256", "sha3_256").
func ParseAlgorithm(name string) (Algorithm, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", "-")
	switch n {
	case "", "sha256", "sha-256":
		return SHA256, nil
	case "sha3-256", "sha-3-256", "sha3":
		return SHA3_256, nil
	}
	return "", errs.NewUnknownDigest(name)
}

func (a Algorithm) new() hash.Hash {
	if a == SHA3_256 {
		return sha3.New256()
	}
	return sha256.New()
}

const defaultBufferSize = 32 * 1024

// HasherOption configures a Hasher.
type HasherOption func(*Hasher)

// WithBufferSize sets the read buffer used while streaming file content.
// Values below 512 bytes are raised to 512.
func WithBufferSize(size int) HasherOption {
	return func(h *Hasher) {
		if size < 512 {
			size = 512
		}
		h.bufSize = size
	}
}

// Hasher streams files through one algorithm. It reuses a single bounded
// buffer, so it is not safe for concurrent use.
type Hasher struct {
	alg     Algorithm
	bufSize int
	buf     []byte
}

// NewHasher returns a Hasher for alg; an empty alg means SHA256.
func NewHasher(alg Algorithm, opts ...HasherOption) *Hasher {
	if alg == "" {
		alg = SHA256
	}
	h := &Hasher{alg: alg, bufSize: defaultBufferSize}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Algorithm reports the algorithm in use.
func (h *Hasher) Algorithm() Algorithm { return h.alg }

// File returns the digest of the file at path, or Directory when path is a
// directory (symlinks followed). The file handle is closed before File
// returns.
func (h *Hasher) File(path string) (Digest, error) {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return Directory, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Digest{}, errs.NewOpenFile(path, err)
	}
	defer f.Close()

	return h.read(path, f)
}

// Reader digests everything r yields. name is only used in errors.
func (h *Hasher) Reader(name string, r io.Reader) (Digest, error) {
	return h.read(name, r)
}

func (h *Hasher) read(name string, r io.Reader) (Digest, error) {
	if len(h.buf) != h.bufSize {
		h.buf = make([]byte, h.bufSize)
	}
	sum := h.alg.new()
	if _, err := io.CopyBuffer(sum, r, h.buf); err != nil {
		return Digest{}, errs.NewHashFile(name, err)
	}
	return FromSum(sum.Sum(nil)), nil
}
