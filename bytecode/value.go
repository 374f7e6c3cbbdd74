package bytecode

import (
	"math"
	"strconv"
)

// Value is the only runtime type at this stage: a double-precision float.
type Value float64

// String formats the value with six digits after the decimal point, the
// representation used by the disassembler and by OP_RETURN. Infinities are
// rendered as "inf" and "-inf", not-a-number as "NaN".
func (v Value) String() string {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', 6, 64)
}

// ParseValue parses the textual form of a value. It accepts everything
// strconv.ParseFloat accepts, including "inf" and "NaN".
func ParseValue(s string) (Value, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return Value(f), nil
}

// formatExact returns the shortest representation that parses back to
// exactly the same bits (for finite values and infinities).
func formatExact(v Value) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 64)
}
