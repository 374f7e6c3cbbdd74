// Package bytecode provides the chunk: the unit of compiled lox code.
//
// A [Chunk] holds three parallel pieces of state:
//
//   - the code: opcode bytes interleaved with operand bytes
//   - the lines: one source line per code byte, so len(code) == len(lines)
//   - the constant pool: append-only [Value] literals referenced by index
//
// Chunks are built incrementally by a writer (a compiler, the assembler in
// package asm, or a test) and are then handed to the disassembler and the
// virtual machine. Writers must not mutate a chunk once a VM has started
// executing it; a chunk may be shared by any number of VMs after that point.
//
// # Limits
//
// Constant operands are a single byte, so a chunk holds at most
// [MaxConstants] constants. AddConstant reports [errz.ErrTooManyConstants]
// when the pool is full instead of wrapping the index. Widening the operand
// is a versioned encoding change, tracked by [ImageVersion].
//
// # Serialization
//
// [Marshal] and [Unmarshal] convert a chunk to and from JSON for inspection.
// [MarshalImage] and [UnmarshalImage] use canonical CBOR for .loxc files.
//
// Example:
//
//	chunk := bytecode.NewChunk()
//	if err := chunk.WriteConstant(1.2, 123); err != nil {
//	    return err
//	}
//	chunk.WriteOp(op.Negate, 123)
//	chunk.WriteOp(op.Return, 123)
package bytecode
