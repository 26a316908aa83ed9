package codec

import (
	"fmt"

	"github.com/arloliu/telem/format"
)

// Number is the set of Go types a Scalar codec can be declared over.
type Number interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Scalar is a fixed-point codec over the closed range [min, max].
type Scalar[T Number] struct {
	fp   fixedPoint
	kind format.ValueKind
	bits Bits

	// exact integer bounds; float64 loses precision past 2^53
	ulo, uhi uint64
	ilo, ihi int64
}

var (
	_ Codec   = (*Scalar[uint64])(nil)
	_ Bounded = (*Scalar[float64])(nil)
)

func newScalar[T Number](kind format.ValueKind, lo, hi T, width int) (*Scalar[T], error) {
	fp, err := newFixedPoint(float64(lo), float64(hi), width)
	if err != nil {
		return nil, fmt.Errorf("%s codec: %w", kind, err)
	}

	return &Scalar[T]{fp: fp, kind: kind, bits: newBits(width)}, nil
}

// NewUint creates an unsigned integer codec.
//
// Decoded values are rounded to the nearest integer, so the round trip is
// exact whenever (max-min) <= 2^width-1.
func NewUint(lo, hi uint64, width int) (*Scalar[uint64], error) {
	s, err := newScalar(format.KindUint, lo, hi, width)
	if err != nil {
		return nil, err
	}
	s.ulo, s.uhi = lo, hi

	return s, nil
}

// NewInt creates a signed integer codec.
func NewInt(lo, hi int64, width int) (*Scalar[int64], error) {
	s, err := newScalar(format.KindInt, lo, hi, width)
	if err != nil {
		return nil, err
	}
	s.ilo, s.ihi = lo, hi

	return s, nil
}

// NewFloat creates a single precision codec.
func NewFloat(lo, hi float32, width int) (*Scalar[float32], error) {
	return newScalar(format.KindFloat, lo, hi, width)
}

// NewDouble creates a double precision codec.
func NewDouble(lo, hi float64, width int) (*Scalar[float64], error) {
	return newScalar(format.KindDouble, lo, hi, width)
}

func (s *Scalar[T]) Kind() format.ValueKind { return s.kind }
func (s *Scalar[T]) BitWidth() int          { return s.fp.width }
func (s *Scalar[T]) Bits() *Bits            { return &s.bits }
func (s *Scalar[T]) Min() float64           { return s.fp.min }
func (s *Scalar[T]) Max() float64           { return s.fp.max }
func (s *Scalar[T]) Step() float64          { return s.fp.step }

// Encode quantizes v. Integer kinds are compared exactly before the float
// conversion so that bounds near 2^53 still clamp correctly.
func (s *Scalar[T]) Encode(v Value) {
	var code uint64
	switch s.kind {
	case format.KindUint:
		code = s.quantizeUint(v.Uint())
	case format.KindInt:
		code = s.quantizeInt(v.Int())
	case format.KindFloat, format.KindDouble:
		code = s.fp.quantize(v.Float())
	case format.KindBool, format.KindVector, format.KindQuaternion, format.KindGPSTime:
		code = 0
	}

	w := s.bits.writer()
	w.WriteWide(s.fp.width, code)
}

// Decode dequantizes the scratch.
func (s *Scalar[T]) Decode() Value {
	r := s.bits.reader()
	code, _ := r.ReadWide(s.fp.width)
	f := s.fp.dequantize(code)

	switch s.kind {
	case format.KindUint:
		if s.fp.step == 1 {
			return Uint(s.ulo + code)
		}

		return Uint(clampUint(floatToUint(f), s.ulo, s.uhi))
	case format.KindInt:
		if s.fp.step == 1 {
			return Int(s.ilo + int64(code)) //nolint: gosec
		}

		return Int(clampInt(floatToInt(f), s.ilo, s.ihi))
	case format.KindFloat:
		return Float(float32(f))
	case format.KindDouble:
		return Double(f)
	case format.KindBool, format.KindVector, format.KindQuaternion, format.KindGPSTime:
		return Zero(s.kind)
	default:
		return Value{}
	}
}

func (s *Scalar[T]) quantizeUint(u uint64) uint64 {
	lo, hi := s.ulo, s.uhi
	switch {
	case u <= lo:
		return 0
	case u >= hi:
		return s.fp.maxCode
	}

	// exact offset keeps large counters precise when step is 1
	if s.fp.step == 1 {
		return u - lo
	}

	return s.fp.quantize(float64(u))
}

func (s *Scalar[T]) quantizeInt(i int64) uint64 {
	lo, hi := s.ilo, s.ihi
	switch {
	case i <= lo:
		return 0
	case i >= hi:
		return s.fp.maxCode
	}

	if s.fp.step == 1 {
		return uint64(i - lo) //nolint: gosec
	}

	return s.fp.quantize(float64(i))
}

func clampUint(v, lo, hi uint64) uint64 {
	return min(max(v, lo), hi)
}

func clampInt(v, lo, hi int64) int64 {
	return min(max(v, lo), hi)
}

// BoolCodec is a one-bit codec.
type BoolCodec struct {
	bits Bits
}

var _ Codec = (*BoolCodec)(nil)

// NewBool creates a boolean codec.
func NewBool() *BoolCodec {
	return &BoolCodec{bits: newBits(1)}
}

func (b *BoolCodec) Kind() format.ValueKind { return format.KindBool }
func (b *BoolCodec) BitWidth() int          { return 1 }
func (b *BoolCodec) Bits() *Bits            { return &b.bits }

func (b *BoolCodec) Encode(v Value) {
	w := b.bits.writer()
	w.Write(1, uint32(boolToUint(v.Bool())))
}

func (b *BoolCodec) Decode() Value {
	r := b.bits.reader()
	bit, _ := r.Read(1)

	return Bool(bit == 1)
}
