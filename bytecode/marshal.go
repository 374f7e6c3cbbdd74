package bytecode

import (
	"encoding/json"
	"fmt"
)

// Marshal converts a Chunk into a JSON representation.
func Marshal(chunk *Chunk) ([]byte, error) {
	return json.Marshal(stateFromChunk(chunk))
}

// Unmarshal converts a JSON representation into a Chunk.
func Unmarshal(data []byte) (*Chunk, error) {
	var state chunkState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return chunkFromState(&state)
}

// Serialization types

// chunkState is the portable form of a chunk. Code bytes are stored as
// numbers rather than base64 so the JSON stays readable, and constants are
// stored as exact decimal strings because JSON numbers cannot carry
// infinities or NaN.
type chunkState struct {
	Code      []int    `json:"code"`
	Lines     []int    `json:"lines"`
	Constants []string `json:"constants"`
}

func stateFromChunk(chunk *Chunk) *chunkState {
	state := &chunkState{
		Code:      make([]int, chunk.Len()),
		Lines:     chunk.Lines(),
		Constants: make([]string, chunk.ConstantCount()),
	}
	for i := 0; i < chunk.Len(); i++ {
		state.Code[i] = int(chunk.ByteAt(i))
	}
	for i := 0; i < chunk.ConstantCount(); i++ {
		state.Constants[i] = formatExact(chunk.ConstantAt(i))
	}
	return state
}

func chunkFromState(state *chunkState) (*Chunk, error) {
	code := make([]byte, len(state.Code))
	for i, b := range state.Code {
		if b < 0 || b > 255 {
			return nil, fmt.Errorf("code byte %d out of range: %d", i, b)
		}
		code[i] = byte(b)
	}
	constants := make([]Value, len(state.Constants))
	for i, s := range state.Constants {
		v, err := ParseValue(s)
		if err != nil {
			return nil, fmt.Errorf("constant %d: %w", i, err)
		}
		constants[i] = v
	}
	chunk := newChunk(code, state.Lines, constants)
	if err := chunk.Validate(); err != nil {
		return nil, err
	}
	return chunk, nil
}
