package codec

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/arloliu/telem/format"
	"github.com/arloliu/telem/internal/options"
)

// QuaternionCodec encodes a unit attitude quaternion as a 2-bit selector of
// its largest component followed by the other three components quantized
// over [-1/sqrt2, 1/sqrt2].
//
// Since q and -q describe the same rotation, the input is first flipped so
// the dropped component is non-negative; Decode rebuilds it as
// sqrt(1 - sum of squares) and renormalizes. A zero or non-finite input
// encodes the identity.
//
// The non-largest components of a unit quaternion never exceed 1/sqrt2, so
// the full code range spans that interval. This wire format is not
// interchangeable with an encoder that quantizes over [-sqrt2, sqrt2].
type QuaternionCodec struct {
	unit fixedPoint
	bits Bits
}

var _ Codec = (*QuaternionCodec)(nil)

// NewQuaternion creates a quaternion codec of 2 + 3*componentBits bits.
func NewQuaternion(opts ...Option) (*QuaternionCodec, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	unit, err := newFixedPoint(-unitBound, unitBound, cfg.componentBits)
	if err != nil {
		return nil, fmt.Errorf("quaternion codec: %w", err)
	}

	return &QuaternionCodec{unit: unit, bits: newBits(2 + 3*cfg.componentBits)}, nil
}

func (c *QuaternionCodec) Kind() format.ValueKind { return format.KindQuaternion }
func (c *QuaternionCodec) BitWidth() int          { return 2 + 3*c.unit.width }
func (c *QuaternionCodec) Bits() *Bits            { return &c.bits }

func (c *QuaternionCodec) Encode(val Value) {
	q := normalize(toNumber(val.Quaternion()))
	comps := fromNumber(q)

	k := largest(comps[:])
	if comps[k] < 0 {
		for i := range comps {
			comps[i] = -comps[i]
		}
	}

	w := c.bits.writer()
	w.Write(2, uint32(k)) //nolint: gosec
	for i, comp := range comps {
		if i != k {
			w.Write(c.unit.width, uint32(c.unit.quantize(comp))) //nolint: gosec
		}
	}
}

func (c *QuaternionCodec) Decode() Value {
	r := c.bits.reader()
	sel, _ := r.Read(2)
	k := int(sel)

	var comps Quat
	sum := 0.0
	for i := range comps {
		if i == k {
			continue
		}
		code, _ := r.Read(c.unit.width)
		comps[i] = c.unit.dequantize(uint64(code))
		sum += comps[i] * comps[i]
	}
	comps[k] = math.Sqrt(max(0, 1-sum))

	return Quaternion(fromNumber(normalize(toNumber(comps))))
}

// toNumber maps (x, y, z, w) onto gonum's scalar-first representation.
func toNumber(q Quat) quat.Number {
	return quat.Number{Real: q[3], Imag: q[0], Jmag: q[1], Kmag: q[2]}
}

func fromNumber(n quat.Number) Quat {
	return Quat{n.Imag, n.Jmag, n.Kmag, n.Real}
}

func normalize(n quat.Number) quat.Number {
	norm := quat.Abs(n)
	if !isFinite(norm) || norm == 0 {
		return toNumber(IdentityQuat)
	}

	return quat.Scale(1/norm, n)
}
