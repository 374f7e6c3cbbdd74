package bytecode

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/gofrs/uuid"
)

// ImageVersion is the current chunk image format version. Increment when
// making incompatible changes to the instruction encoding.
const ImageVersion uint16 = 1

// Image is a serialized chunk together with identifying metadata. It is the
// content of a .loxc file.
type Image struct {
	Version   uint16    `cbor:"1,keyasint"`
	ID        string    `cbor:"2,keyasint"`
	Name      string    `cbor:"3,keyasint"`
	Code      []byte    `cbor:"4,keyasint"`
	Lines     []int     `cbor:"5,keyasint"`
	Constants []float64 `cbor:"6,keyasint"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// NewImage wraps a chunk in an image with a fresh random ID.
func NewImage(name string, chunk *Chunk) (*Image, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("bytecode: generate image id: %w", err)
	}
	img := &Image{
		Version:   ImageVersion,
		ID:        id.String(),
		Name:      name,
		Code:      chunk.Code(),
		Lines:     chunk.Lines(),
		Constants: make([]float64, chunk.ConstantCount()),
	}
	for i := 0; i < chunk.ConstantCount(); i++ {
		img.Constants[i] = float64(chunk.ConstantAt(i))
	}
	return img, nil
}

// Chunk rebuilds and validates the chunk stored in the image.
func (img *Image) Chunk() (*Chunk, error) {
	if img.Version != ImageVersion {
		return nil, fmt.Errorf("bytecode: unsupported image version %d (want %d)", img.Version, ImageVersion)
	}
	constants := make([]Value, len(img.Constants))
	for i, f := range img.Constants {
		constants[i] = Value(f)
	}
	chunk := newChunk(img.Code, img.Lines, constants)
	if err := chunk.Validate(); err != nil {
		return nil, err
	}
	return chunk, nil
}

// MarshalImage serializes an image to canonical CBOR bytes.
func MarshalImage(img *Image) ([]byte, error) {
	return cborEncMode.Marshal(img)
}

// UnmarshalImage deserializes an image from CBOR bytes.
func UnmarshalImage(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal image: %w", err)
	}
	return &img, nil
}
