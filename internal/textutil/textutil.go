package textutil

import "bytes"

// sniffLen is how much of a file is inspected by IsBinary.
const sniffLen = 8000

// NormalizeUTF8LF converts CRLF and lone CR to LF and replaces invalid UTF-8
// with U+FFFD.
func NormalizeUTF8LF(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	b = bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
	return bytes.ToValidUTF8(b, []byte("\uFFFD"))
}

// EnsureTrailingLF appends a single \n if not already present.
func EnsureTrailingLF(b []byte) []byte {
	if len(b) == 0 || b[len(b)-1] == '\n' {
		return b
	}
	return append(b, '\n')
}

// IsBinary reports whether b looks like binary content: a NUL byte in the
// first 8000 bytes, the same heuristic git uses.
func IsBinary(b []byte) bool {
	if len(b) > sniffLen {
		b = b[:sniffLen]
	}
	return bytes.IndexByte(b, 0) >= 0
}
