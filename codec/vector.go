package codec

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/format"
	"github.com/arloliu/telem/internal/options"
)

// unitBound is the largest magnitude a component can have when it is not
// the largest component of a unit vector or unit quaternion.
var unitBound = math.Sqrt2 / 2

// VectorCodec encodes a 3-vector in one of two layouts.
//
// Component layout (format.VectorComponent): x, y and z each quantized over
// [min, max] with width/3 bits.
//
// Polar layout (format.VectorPolar):
//
//	+-----------+----------+------+-----------+-----------+
//	| magnitude | selector | sign | comp a    | comp b    |
//	| m bits    | 2 bits   | 1    | cw bits   | cw bits   |
//	+-----------+----------+------+-----------+-----------+
//
// The magnitude is quantized over [min, max] with m = width-3-2*cw bits.
// The selector names the largest component of the unit direction, the sign
// bit its sign, and the two remaining components are quantized over
// [-1/sqrt2, 1/sqrt2]. Decoding rebuilds the largest component from the
// unit-norm constraint.
type VectorCodec struct {
	mode  format.VectorMode
	width int
	mag   fixedPoint // polar magnitude or per-component range
	unit  fixedPoint // polar direction components
	bits  Bits
}

var (
	_ Codec   = (*VectorCodec)(nil)
	_ Bounded = (*VectorCodec)(nil)
)

// NewVector creates a vector codec with the given total width.
//
// Polar codecs require min >= 0 and enough width for the selector, sign and
// direction components. Component codecs require width divisible by 3.
func NewVector(lo, hi float64, width int, opts ...Option) (*VectorCodec, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	v := &VectorCodec{mode: cfg.mode, width: width}

	var err error
	switch cfg.mode {
	case format.VectorComponent:
		if width <= 0 || width%3 != 0 || width/3 > 64 {
			return nil, fmt.Errorf("%w: component vector width %d", errs.ErrInvalidBitWidth, width)
		}
		v.mag, err = newFixedPoint(lo, hi, width/3)
	case format.VectorPolar:
		if lo < 0 {
			return nil, fmt.Errorf("%w: polar magnitude minimum %v < 0", errs.ErrInvalidCodecBounds, lo)
		}
		magBits := width - 3 - 2*cfg.componentBits
		if magBits < 0 || magBits > 64 {
			return nil, fmt.Errorf("%w: polar vector width %d with %d-bit components",
				errs.ErrInvalidBitWidth, width, cfg.componentBits)
		}
		if v.mag, err = newFixedPoint(lo, hi, magBits); err != nil {
			break
		}
		v.unit, err = newFixedPoint(-unitBound, unitBound, cfg.componentBits)
	}
	if err != nil {
		return nil, fmt.Errorf("vector codec: %w", err)
	}

	v.bits = newBits(width)

	return v, nil
}

func (c *VectorCodec) Kind() format.ValueKind  { return format.KindVector }
func (c *VectorCodec) BitWidth() int           { return c.width }
func (c *VectorCodec) Bits() *Bits             { return &c.bits }
func (c *VectorCodec) Mode() format.VectorMode { return c.mode }

// Min, Max and Step describe the magnitude range in polar mode and the
// per-component range in component mode.
func (c *VectorCodec) Min() float64  { return c.mag.min }
func (c *VectorCodec) Max() float64  { return c.mag.max }
func (c *VectorCodec) Step() float64 { return c.mag.step }

func (c *VectorCodec) Encode(val Value) {
	v := val.Vector()
	w := c.bits.writer()

	if c.mode == format.VectorComponent {
		for _, comp := range v {
			w.WriteWide(c.mag.width, c.mag.quantize(comp))
		}

		return
	}

	vec := r3.Vec{X: v[0], Y: v[1], Z: v[2]}
	norm := r3.Norm(vec)
	if !isFinite(norm) || norm == 0 {
		// zero or corrupt input: minimum magnitude along +x
		w.WriteWide(c.mag.width, 0)
		w.Write(3, 0)
		mid := uint32(c.unit.quantize(0)) //nolint: gosec
		w.Write(c.unit.width, mid)
		w.Write(c.unit.width, mid)

		return
	}

	u := r3.Unit(vec)
	dir := [3]float64{u.X, u.Y, u.Z}
	k := largest(dir[:])

	w.WriteWide(c.mag.width, c.mag.quantize(norm))
	w.Write(2, uint32(k)) //nolint: gosec
	w.Write(1, uint32(boolToUint(dir[k] < 0)))
	for i, comp := range dir {
		if i != k {
			w.Write(c.unit.width, uint32(c.unit.quantize(comp))) //nolint: gosec
		}
	}
}

func (c *VectorCodec) Decode() Value {
	r := c.bits.reader()

	if c.mode == format.VectorComponent {
		var v Vec3
		for i := range v {
			code, _ := r.ReadWide(c.mag.width)
			v[i] = c.mag.dequantize(code)
		}

		return Vector(v)
	}

	magCode, _ := r.ReadWide(c.mag.width)
	norm := c.mag.dequantize(magCode)
	sel, _ := r.Read(2)
	neg, _ := r.Read(1)

	k := int(min(sel, 2))
	var dir [3]float64
	sum := 0.0
	for i := range dir {
		if i == k {
			continue
		}
		code, _ := r.Read(c.unit.width)
		dir[i] = c.unit.dequantize(uint64(code))
		sum += dir[i] * dir[i]
	}

	dir[k] = math.Sqrt(max(0, 1-sum))
	if neg == 1 {
		dir[k] = -dir[k]
	}

	out := r3.Scale(norm, r3.Unit(r3.Vec{X: dir[0], Y: dir[1], Z: dir[2]}))

	return Vector(Vec3{out.X, out.Y, out.Z})
}

// largest returns the index of the component with the largest magnitude,
// preferring the lowest index on ties.
func largest(comps []float64) int {
	k := 0
	for i := 1; i < len(comps); i++ {
		if math.Abs(comps[i]) > math.Abs(comps[k]) {
			k = i
		}
	}

	return k
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
