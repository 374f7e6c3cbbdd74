package main

import (
	"path/filepath"
	"strings"

	"github.com/deepnoodle-ai/lox/asm"
	"github.com/deepnoodle-ai/lox/bytecode"
)

// ImageExt is the file extension of assembled chunk images.
const ImageExt = ".loxc"

// loadChunk reads a chunk from either an assembled image or assembly text.
// Images are recognized by extension or by a leading CBOR map header.
func loadChunk(in input) (*bytecode.Chunk, *bytecode.Image, error) {
	if strings.HasSuffix(in.name, ImageExt) || looksLikeImage([]byte(in.text)) {
		img, err := bytecode.UnmarshalImage([]byte(in.text))
		if err != nil {
			return nil, nil, err
		}
		chunk, err := img.Chunk()
		if err != nil {
			return nil, nil, err
		}
		return chunk, img, nil
	}
	chunk, err := asm.AssembleString(in.text)
	if err != nil {
		return nil, nil, err
	}
	return chunk, nil, nil
}

// looksLikeImage reports whether data starts with a CBOR map header, which
// no assembly text does.
func looksLikeImage(data []byte) bool {
	return len(data) > 0 && data[0]&0xe0 == 0xa0
}

func chunkName(in input) string {
	return strings.TrimSuffix(in.name, filepath.Ext(in.name))
}
