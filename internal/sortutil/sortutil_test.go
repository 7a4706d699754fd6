package sortutil

import (
	"reflect"
	"testing"
)

type rec struct {
	path string
	n    int
}

func TestByPath(t *testing.T) {
	items := []rec{{"b/", 1}, {"a.txt", 2}, {"b", 3}, {"a.txt", 4}, {"b/c", 5}}
	key := func(r rec) string { return r.path }
	ByPath(items, key)
	want := []rec{{"a.txt", 2}, {"a.txt", 4}, {"b", 3}, {"b/", 1}, {"b/c", 5}}
	if !reflect.DeepEqual(items, want) {
		t.Fatalf("got %v want %v", items, want)
	}
	if !IsSorted(items, key) {
		t.Fatalf("sorted slice reported unsorted")
	}
	if IsSorted([]rec{{"z", 0}, {"a", 0}}, key) {
		t.Fatalf("unsorted slice reported sorted")
	}
}
