// Package codec implements the fixed-width quantizing codecs that turn field
// values into bits and back.
//
// Every codec has a static bit width fixed at construction. Encode never
// fails: out-of-domain inputs are clamped into the codec range, NaN inputs
// collapse to the range minimum, and the result always fits the width.
// Decode reads whatever the scratch holds, so corrupt bits decode to some
// in-range value rather than an error.
//
// Supported kinds:
//   - Uint, Int, Float, Double: affine fixed-point over [min, max]
//   - Bool: one bit
//   - Vector: per-component or magnitude plus direction
//   - Quaternion: largest-component-dropped unit quaternion
//   - GPSTime: week number, time-of-week and a validity bit
package codec

import "github.com/arloliu/telem/format"

// Codec converts between a Value and its fixed-width encoded Bits.
type Codec interface {
	// Kind returns the value kind the codec produces on Decode.
	Kind() format.ValueKind
	// BitWidth returns the encoded width in bits.
	BitWidth() int
	// Encode quantizes v into the codec scratch.
	Encode(v Value)
	// Decode dequantizes the codec scratch.
	Decode() Value
	// Bits returns the codec scratch.
	Bits() *Bits
}

// Bounded is implemented by codecs with a scalar domain.
type Bounded interface {
	Min() float64
	Max() float64
	Step() float64
}
