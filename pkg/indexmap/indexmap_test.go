package indexmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToIndexedMap(t *testing.T) {
	m := ToIndexedMap([]string{"a", "b", "c"})
	assert.Equal(t, map[string]string{"0": "a", "1": "b", "2": "c"}, m)

	assert.Empty(t, ToIndexedMap([]string{}))
	assert.Empty(t, ToIndexedMap[int](nil))
}

func TestRoundTrip(t *testing.T) {
	seq := make([]string, 25)
	for i := range seq {
		seq[i] = string(rune('a' + i))
	}
	assert.Equal(t, seq, FromIndexedMap(ToIndexedMap(seq)))

	m := map[string]int{"0": 7, "1": 8, "2": 9}
	assert.Equal(t, m, ToIndexedMap(FromIndexedMap(m)))
}

func TestFromIndexedMapNumericOrder(t *testing.T) {
	m := map[string]string{"0": "zero", "1": "one", "10": "ten", "2": "two"}
	assert.Equal(t, []string{"zero", "one", "two", "ten"}, FromIndexedMap(m))
}

func TestFromIndexedMapIrregularKeys(t *testing.T) {
	m := map[string]string{
		"b":  "letter-b",
		"3":  "three",
		"a":  "letter-a",
		"-1": "minus-one",
		"03": "zero-three",
		"0":  "zero",
	}
	assert.Equal(t,
		[]string{"minus-one", "zero", "zero-three", "three", "letter-a", "letter-b"},
		FromIndexedMap(m))
}

func TestFromIndexedMapEmpty(t *testing.T) {
	got := FromIndexedMap(map[string]string{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
