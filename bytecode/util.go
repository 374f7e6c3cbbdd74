package bytecode

// copyBytes returns a copy of the given byte slice.
func copyBytes(src []byte) []byte {
	if src == nil {
		return nil
	}
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}

// copyInts returns a copy of the given int slice.
func copyInts(src []int) []int {
	if src == nil {
		return nil
	}
	dst := make([]int, len(src))
	copy(dst, src)
	return dst
}

// copyValues returns a copy of the given value slice.
func copyValues(src []Value) []Value {
	if src == nil {
		return nil
	}
	dst := make([]Value, len(src))
	copy(dst, src)
	return dst
}
