package util

import "sort"

func MapKeys[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func SortedIntKeys[V any](m map[int]V) []int {
	keys := MapKeys(m)
	sort.Ints(keys)
	return keys
}

func SortedStringKeys[V any](m map[string]V) []string {
	keys := MapKeys(m)
	sort.Strings(keys)
	return keys
}
