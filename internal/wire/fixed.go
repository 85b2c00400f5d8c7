package wire

// Fixed is the wire's Q24.8 signed fixed-point representation (§6), used for
// pointer coordinates and other sub-pixel quantities.
type Fixed int32

// Float64 converts a wire Fixed to a float64.
func (f Fixed) Float64() float64 {
	return float64(f) / 256.0
}

// Int converts a wire Fixed to its truncated integer part.
func (f Fixed) Int() int {
	return int(f) / 256
}

// FixedFromFloat64 builds a wire Fixed from a float64.
func FixedFromFloat64(v float64) Fixed {
	return Fixed(v * 256.0)
}

// FixedFromInt builds a wire Fixed from a whole number.
func FixedFromInt(v int) Fixed {
	return Fixed(v * 256)
}
