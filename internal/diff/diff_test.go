package diff

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUnified(t *testing.T) {
	got, oversize := Unified("a/x", "b/x", []byte("one\ntwo\n"), []byte("one\nthree\n"), Options{})
	if oversize {
		t.Fatalf("unexpected oversize")
	}
	want := "--- a/x\n+++ b/x\n@@ -1,2 +1,2 @@\n one\n-two\n+three\n"
	if got != want {
		t.Fatalf("patch:\n%s\nwant:\n%s", got, want)
	}
}

func TestUnifiedCRLFAndMissingNewline(t *testing.T) {
	got, _ := Unified("a", "b", []byte("x\r\ny"), []byte("x\ny\n"), Options{})
	if got != "" {
		t.Fatalf("line-ending-only change should produce no hunks, got:\n%s", got)
	}
}

func TestUnifiedGuards(t *testing.T) {
	body, oversize := Unified("a", "b", []byte("12345"), []byte("678"), Options{MaxBytes: 4})
	if !oversize || !strings.Contains(body, "omitted (oversize)") {
		t.Fatalf("size guard: %v %q", oversize, body)
	}
	body, _ = Unified("a", "b", []byte{0, 1}, []byte{0, 2}, Options{})
	if body != "Binary files a and b differ\n" {
		t.Fatalf("binary: %q", body)
	}
}

func TestAddedRemoved(t *testing.T) {
	add, _ := Added("b/new.txt", []byte("hello\n"), Options{})
	if !strings.HasPrefix(add, "--- /dev/null\n+++ b/new.txt\n") || !strings.Contains(add, "+hello\n") {
		t.Fatalf("added:\n%s", add)
	}
	rm, _ := Removed("a/old.txt", []byte("bye\n"), Options{})
	if !strings.HasPrefix(rm, "--- a/old.txt\n+++ /dev/null\n") || !strings.Contains(rm, "-bye\n") {
		t.Fatalf("removed:\n%s", rm)
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old")
	newPath := filepath.Join(dir, "new")
	if err := os.WriteFile(oldPath, []byte("1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(newPath, []byte("2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Files("f.txt", oldPath, newPath, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "--- a/f.txt\n+++ b/f.txt\n") || !strings.Contains(got, "-1\n+2\n") {
		t.Fatalf("files patch:\n%s", got)
	}

	got, err = Files("f.txt", "", newPath, Options{})
	if err != nil || !strings.HasPrefix(got, "--- /dev/null\n+++ b/f.txt\n") {
		t.Fatalf("added side: %v\n%s", err, got)
	}

	if _, err := Files("f.txt", filepath.Join(dir, "missing"), newPath, Options{}); err == nil {
		t.Fatalf("missing old side must fail")
	}
}
