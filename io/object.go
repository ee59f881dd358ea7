package io

import (
	"io"
)

// Image is an object image: the contiguous bytes of a program starting
// at address zero.
type Image struct {
	Capacity int // Maximum image size in bytes. Zero is unlimited.
	Data     []byte
}

// Unmarshal loads an image from a reader, replacing any existing data.
func (img *Image) Unmarshal(file io.Reader) (err error) {
	var reader io.Reader = file
	if img.Capacity > 0 {
		reader = io.LimitReader(file, int64(img.Capacity)+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return
	}

	if img.Capacity > 0 && len(data) > img.Capacity {
		err = ErrImageFull
		return
	}

	img.Data = data

	return
}

// Marshal writes the image to a writer.
func (img *Image) Marshal(file io.Writer) (err error) {
	if img.Capacity > 0 && len(img.Data) > img.Capacity {
		err = ErrImageFull
		return
	}

	_, err = file.Write(img.Data)

	return
}
