// Package sortutil orders path-keyed records.
package sortutil

import "sort"

// ByPath sorts items in place by the path key returns. Equal keys keep their
// relative order.
func ByPath[T any](items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return key(items[i]) < key(items[j])
	})
}

// IsSorted reports whether items are in ascending path order.
func IsSorted[T any](items []T, key func(T) string) bool {
	for i := 1; i < len(items); i++ {
		if key(items[i-1]) > key(items[i]) {
			return false
		}
	}
	return true
}
