package bytecode

// Stats contains statistics about a chunk.
type Stats struct {
	// ByteCount is the size of the code section in bytes.
	ByteCount int `json:"byte_count"`

	// InstructionCount is the number of decodable instructions, counted up
	// to the first invalid opcode.
	InstructionCount int `json:"instruction_count"`

	// ConstantCount is the number of constants in the constant pool.
	ConstantCount int `json:"constant_count"`

	// LineCount is the number of distinct source lines referenced.
	LineCount int `json:"line_count"`
}
