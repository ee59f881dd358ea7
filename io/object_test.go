package io

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImage_Unmarshal(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		capacity int
		data     []byte
		err      error
	}{
		{0, []byte{}, nil},
		{0, bytes.Repeat([]byte{0xaa}, 8192), nil},
		{4, []byte{1, 2, 3, 4}, nil},
		{4, []byte{1, 2, 3, 4, 5}, ErrImageFull},
	}

	for _, entry := range table {
		img := &Image{Capacity: entry.capacity, Data: []byte{9}}
		err := img.Unmarshal(bytes.NewReader(entry.data))
		if entry.err != nil {
			assert.ErrorIs(err, entry.err)
			assert.Equal([]byte{9}, img.Data)
			continue
		}
		assert.NoError(err)
		assert.Equal(entry.data, img.Data)
	}
}

func TestImage_Marshal(t *testing.T) {
	assert := assert.New(t)

	img := &Image{Capacity: 4, Data: []byte{0x30, 0xf0, 0x05}}

	output := &bytes.Buffer{}
	assert.NoError(img.Marshal(output))
	assert.Equal([]byte{0x30, 0xf0, 0x05}, output.Bytes())

	loaded := &Image{Capacity: 4}
	assert.NoError(loaded.Unmarshal(output))
	assert.Equal(img.Data, loaded.Data)

	img.Data = []byte{1, 2, 3, 4, 5}
	output.Reset()
	assert.ErrorIs(img.Marshal(output), ErrImageFull)
	assert.Zero(output.Len())
}
