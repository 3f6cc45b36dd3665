// Package indexmap converts ordered sequences to and from index-keyed maps,
// the form used for sequences nested inside stored documents.
package indexmap

import (
	"sort"
	"strconv"
)

// ToIndexedMap keys every element by its stringified position ("0", "1", ...).
func ToIndexedMap[T any](seq []T) map[string]T {
	m := make(map[string]T, len(seq))
	for i, v := range seq {
		m[strconv.Itoa(i)] = v
	}
	return m
}

// FromIndexedMap rebuilds the sequence by ascending numeric key value, so "10"
// follows "2". Keys that do not parse as integers come after all numeric keys
// in lexical order. Gaps in the numbering are closed, not padded.
func FromIndexedMap[T any](m map[string]T) []T {
	keys := SortedKeys(m)
	seq := make([]T, 0, len(keys))
	for _, k := range keys {
		seq = append(seq, m[k])
	}
	return seq
}

// SortedKeys returns the keys of m in decode order.
func SortedKeys[T any](m map[string]T) []string {
	type key struct {
		raw     string
		n       int64
		numeric bool
	}
	keys := make([]key, 0, len(m))
	for k := range m {
		n, err := strconv.ParseInt(k, 10, 64)
		keys = append(keys, key{raw: k, n: n, numeric: err == nil})
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.numeric != b.numeric {
			return a.numeric
		}
		if a.numeric && a.n != b.n {
			return a.n < b.n
		}
		return a.raw < b.raw
	})

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.raw
	}
	return out
}
