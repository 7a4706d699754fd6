package snapshot

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"pathit/internal/digest"
	"pathit/internal/pathiter"
	"pathit/internal/sortutil"
)

const (
	sha256One = "6b86b273ff34fce19d6b804eff5a3f5747ada4eaa22f1d49c01e52ddb7875b4b"
	sha256Two = "d4735e3a265e16eee03f59718b9b5d03019c07d8b6c51f90da3a666eec13ab35"
)

func mustDigest(t *testing.T, s string) digest.Digest {
	t.Helper()
	d, ok := digest.Parse(s)
	if !ok {
		t.Fatalf("bad digest %q", s)
	}
	return d
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestCollectHashed(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "1", "b/c.txt": "2"})
	s, err := Collect(root, digest.NewHasher(digest.SHA256))
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if s.Mode() != Hashed || s.Len() != 3 {
		t.Fatalf("mode %v len %d", s.Mode(), s.Len())
	}
	want := map[string]string{
		"a.txt":   sha256One,
		"b/":      digest.Placeholder,
		"b/c.txt": sha256Two,
	}
	for p, w := range want {
		d, ok := s.Lookup(p)
		if !ok || d.String() != w {
			t.Errorf("%s: got %v %s want %s", p, ok, d, w)
		}
	}
	for _, p := range s.Paths() {
		d, _ := s.Lookup(p)
		if strings.HasSuffix(p, "/") != d.IsDir() {
			t.Errorf("%s: trailing slash and directory digest disagree", p)
		}
	}
}

func TestCollectUnhashed(t *testing.T) {
	root := writeTree(t, map[string]string{"x": "", "d/e/f": ""})
	s, err := Collect(root, nil, pathiter.WithSortedEntries())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"d/", "d/e/", "d/e/f", "x"}
	if got := s.Paths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("paths %v want %v", got, want)
	}
	if d, _ := s.Lookup("d/"); !d.IsZero() {
		t.Fatalf("unhashed snapshot stored a digest")
	}
}

func TestCollectorSkipAndOnEntry(t *testing.T) {
	root := writeTree(t, map[string]string{"keep": "k", "out.txt": "o"})
	var seen []string
	c := Collector{
		Hasher:  digest.NewHasher(digest.SHA256),
		Skip:    func(abs string) bool { return filepath.Base(abs) == "out.txt" },
		OnEntry: func(p string, _ digest.Digest) { seen = append(seen, p) },
	}
	s, err := c.Collect(root)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 || !reflect.DeepEqual(seen, []string{"keep"}) {
		t.Fatalf("skip failed: %v %v", s.Paths(), seen)
	}
}

func TestCollectMissingRoot(t *testing.T) {
	if s, err := Collect(filepath.Join(t.TempDir(), "nope"), nil); err == nil || s != nil {
		t.Fatalf("want error and no snapshot, got %v %v", s, err)
	}
}

func TestRoundTrip(t *testing.T) {
	s := Empty(Hashed)
	s.Add("a.txt", mustDigest(t, sha256One))
	s.Add("b/", digest.Directory)
	s.Add("b/c, d.txt", mustDigest(t, sha256Two))

	var buf bytes.Buffer
	n, err := s.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(buf.Len()) {
		t.Fatalf("WriteTo count %d, buffer %d", n, buf.Len())
	}
	wantText := sha256One + ", a.txt\n" +
		digest.Placeholder + ", b/\n" +
		sha256Two + ", b/c, d.txt\n"
	if buf.String() != wantText {
		t.Fatalf("serialized:\n%s\nwant:\n%s", buf.String(), wantText)
	}

	back, err := Read(strings.NewReader(buf.String()), Hashed)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !reflect.DeepEqual(back.entries, s.entries) {
		t.Fatalf("round trip mismatch: %v vs %v", back.entries, s.entries)
	}
	if back.Fingerprint() != s.Fingerprint() {
		t.Fatalf("fingerprints differ after round trip")
	}
	if len(s.Fingerprint()) != 32 {
		t.Fatalf("fingerprint width %d", len(s.Fingerprint()))
	}
}

func TestReadUnhashed(t *testing.T) {
	s, err := Read(strings.NewReader("a.txt\n\n  b/  \r\nb/c.txt"), Unhashed)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.txt", "b/", "b/c.txt"}
	if got := s.Paths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("paths %v want %v", got, want)
	}
}

func TestReadMalformed(t *testing.T) {
	cases := map[string]string{
		"ShortDigest":  "abc, file.txt\n",
		"NoSeparator":  sha256One + " file.txt\n",
		"CommaNoSpace": sha256One + ",file.txt\n",
		"LaterLineBad": sha256One + ", ok.txt\n\nabc, file.txt\n",
		"LongDigest":   sha256One + "0, file.txt\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := Read(strings.NewReader(in), Hashed)
			if err == nil {
				t.Fatalf("want parse error")
			}
			if s != nil {
				t.Fatalf("partial snapshot returned")
			}
		})
	}
}

func TestReadFileAndSave(t *testing.T) {
	s := Empty(Hashed)
	s.Add("x", mustDigest(t, sha256One))
	path := filepath.Join(t.TempDir(), "listing.txt")
	if err := s.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := ReadFile(path, Hashed)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if d, ok := back.Lookup("x"); !ok || d.String() != sha256One {
		t.Fatalf("saved listing lost entry")
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %d entries", len(entries))
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing"), Hashed); err == nil {
		t.Fatalf("missing listing must fail")
	}
}

func TestMerge(t *testing.T) {
	a := Empty(Hashed)
	a.Add("p", mustDigest(t, sha256One))
	b := Empty(Hashed)
	b.Add("p", mustDigest(t, sha256Two))
	b.Add("q", digest.Directory)
	if err := a.Merge(b); err != nil {
		t.Fatal(err)
	}
	if d, _ := a.Lookup("p"); d.String() != sha256Two || a.Len() != 2 {
		t.Fatalf("last write must win: %s", d)
	}
	if err := a.Merge(Empty(Unhashed)); err == nil {
		t.Fatalf("merging across modes must fail")
	}
}

func TestDiffScenario(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "1", "b/c.txt": "2"})
	left, err := Collect(root, digest.NewHasher(digest.SHA256))
	if err != nil {
		t.Fatal(err)
	}
	right, err := Read(strings.NewReader(sha256Two+", a.txt\n"), Hashed)
	if err != nil {
		t.Fatal(err)
	}
	changes, err := Diff(left, right)
	if err != nil {
		t.Fatal(err)
	}
	want := Changes{
		{Path: "a.txt", Kind: HashDifference},
		{Path: "b/", Kind: New},
		{Path: "b/c.txt", Kind: New},
	}
	if !reflect.DeepEqual(changes, want) {
		t.Fatalf("got %v want %v", changes, want)
	}
	if left.Len() != 0 || right.Len() != 0 {
		t.Fatalf("diff must consume inputs: %d %d", left.Len(), right.Len())
	}
	if c := changes.Counts(); c.New != 2 || c.Changed != 1 || c.Absent != 0 || c.Total() != 3 {
		t.Fatalf("counts %+v", c)
	}
}

func TestDiffAntisymmetric(t *testing.T) {
	build := func(paths ...string) *Snapshot {
		s := Empty(Unhashed)
		for _, p := range paths {
			s.Add(p, digest.Digest{})
		}
		return s
	}
	ab, err := Diff(build("both", "onlyA", "dir/"), build("both", "onlyB", "dir"))
	if err != nil {
		t.Fatal(err)
	}
	ba, err := Diff(build("both", "onlyB", "dir"), build("both", "onlyA", "dir/"))
	if err != nil {
		t.Fatal(err)
	}
	if len(ab) != 4 || len(ba) != 4 {
		t.Fatalf("lengths %d %d", len(ab), len(ba))
	}
	for i := range ab {
		if ab[i].Path != ba[i].Path {
			t.Fatalf("path order differs at %d", i)
		}
		flipped := map[Difference]Difference{New: Absence, Absence: New}[ab[i].Kind]
		if ba[i].Kind != flipped {
			t.Fatalf("%s: %v vs %v", ab[i].Path, ab[i].Kind, ba[i].Kind)
		}
	}
	if k, ok := ab.Lookup("dir/"); !ok || k != New {
		t.Fatalf("dir/ lookup %v %v", k, ok)
	}
	if k, ok := ab.Lookup("dir"); !ok || k != Absence {
		t.Fatalf("dir lookup %v %v", k, ok)
	}
	if _, ok := ab.Lookup("both"); ok {
		t.Fatalf("identical path reported")
	}
	if !sortutil.IsSorted(ab, func(c Change) string { return c.Path }) {
		t.Fatalf("changes not sorted: %v", ab)
	}
}

func TestDiffIdentical(t *testing.T) {
	root := writeTree(t, map[string]string{"a": "1", "s/b": "2", "s/t/c": "3"})
	h := digest.NewHasher(digest.SHA256)
	a, err := Collect(root, h)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Collect(root, h, pathiter.WithSortedEntries())
	if err != nil {
		t.Fatal(err)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("same tree, different fingerprints")
	}
	changes, err := Diff(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 0 {
		t.Fatalf("Diff(A, A) = %v", changes)
	}
}

func TestDiffSingleContentChange(t *testing.T) {
	root := writeTree(t, map[string]string{"a": "1", "s/b": "2"})
	h := digest.NewHasher(digest.SHA256)
	before, err := Collect(root, h)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "s", "b"), []byte("changed"), 0o644); err != nil {
		t.Fatal(err)
	}
	after, err := Collect(root, h)
	if err != nil {
		t.Fatal(err)
	}
	changes, err := Diff(after, before)
	if err != nil {
		t.Fatal(err)
	}
	want := Changes{{Path: "s/b", Kind: HashDifference}}
	if !reflect.DeepEqual(changes, want) {
		t.Fatalf("got %v want %v", changes, want)
	}
}

func TestDiffModeMismatch(t *testing.T) {
	if _, err := Diff(Empty(Hashed), Empty(Unhashed)); err == nil {
		t.Fatalf("mode mismatch must fail")
	}
}
