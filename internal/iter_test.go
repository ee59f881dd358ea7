package internal

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterSeq2Concat(t *testing.T) {
	assert := assert.New(t)

	a := map[string]int{"a": 1}
	b := map[string]int{"b": 2, "c": 3}

	got := map[string]int{}
	for key, value := range IterSeq2Concat(maps.All(a), maps.All(b)) {
		got[key] = value
	}
	assert.Equal(map[string]int{"a": 1, "b": 2, "c": 3}, got)

	count := 0
	for range IterSeq2Concat(maps.All(a), maps.All(b)) {
		count++
		break
	}
	assert.Equal(1, count)
}

func TestIterSorted(t *testing.T) {
	assert := assert.New(t)

	m := map[string]uint64{"loop": 0x10, "end": 0x20, "stack": 0x08}

	var keys []string
	for key := range IterSorted(m) {
		keys = append(keys, key)
	}
	assert.Equal([]string{"end", "loop", "stack"}, keys)

	keys = nil
	for key := range IterSortedByValue(m) {
		keys = append(keys, key)
	}
	assert.Equal([]string{"stack", "loop", "end"}, keys)
}
