package codec

import (
	"math"

	"github.com/arloliu/telem/format"
)

// Vec3 is a 3-vector in body or inertial coordinates.
type Vec3 [3]float64

// Quat is an attitude quaternion stored as (x, y, z, w) with the scalar last.
type Quat [4]float64

// IdentityQuat is the zero-rotation quaternion.
var IdentityQuat = Quat{0, 0, 0, 1}

// GPSTime is a GPS week number plus time-of-week in milliseconds.
// Set is false for a receiver that has not produced a fix yet.
type GPSTime struct {
	Week uint16
	TOW  uint32
	Set  bool
}

// Value is a tagged variant over every value kind a field can hold.
//
// Value is comparable with == and never allocates. Accessors coerce between
// numeric kinds so that a codec can always encode whatever it is handed:
// a Float accessor on an Int value returns the integer as float64, a Uint
// accessor on a negative Int returns 0, and so on.
type Value struct {
	kind format.ValueKind
	u    uint64
	i    int64
	f    float64
	b    bool
	q    Quat // vector (first three components) or quaternion
	t    GPSTime
}

// Uint returns a KindUint value.
func Uint(v uint64) Value { return Value{kind: format.KindUint, u: v} }

// Int returns a KindInt value.
func Int(v int64) Value { return Value{kind: format.KindInt, i: v} }

// Float returns a KindFloat value.
func Float(v float32) Value { return Value{kind: format.KindFloat, f: float64(v)} }

// Double returns a KindDouble value.
func Double(v float64) Value { return Value{kind: format.KindDouble, f: v} }

// Bool returns a KindBool value.
func Bool(v bool) Value { return Value{kind: format.KindBool, b: v} }

// Vector returns a KindVector value.
func Vector(v Vec3) Value {
	return Value{kind: format.KindVector, q: Quat{v[0], v[1], v[2], 0}}
}

// Quaternion returns a KindQuaternion value.
func Quaternion(q Quat) Value { return Value{kind: format.KindQuaternion, q: q} }

// Time returns a KindGPSTime value.
func Time(t GPSTime) Value { return Value{kind: format.KindGPSTime, t: t} }

// Zero returns the zero value of kind k. The zero quaternion is the identity.
func Zero(k format.ValueKind) Value {
	switch k {
	case format.KindUint:
		return Uint(0)
	case format.KindInt:
		return Int(0)
	case format.KindFloat:
		return Float(0)
	case format.KindDouble:
		return Double(0)
	case format.KindBool:
		return Bool(false)
	case format.KindVector:
		return Vector(Vec3{})
	case format.KindQuaternion:
		return Quaternion(IdentityQuat)
	case format.KindGPSTime:
		return Time(GPSTime{})
	default:
		return Value{}
	}
}

// Kind returns the value kind, 0 for the zero Value.
func (v Value) Kind() format.ValueKind {
	return v.kind
}

// Uint returns v as an unsigned integer, saturating negative and oversized inputs.
func (v Value) Uint() uint64 {
	switch v.kind {
	case format.KindUint:
		return v.u
	case format.KindInt:
		if v.i < 0 {
			return 0
		}

		return uint64(v.i)
	case format.KindFloat, format.KindDouble:
		return floatToUint(v.f)
	case format.KindBool:
		return boolToUint(v.b)
	case format.KindVector, format.KindQuaternion, format.KindGPSTime:
		return 0
	default:
		return 0
	}
}

// Int returns v as a signed integer, saturating out-of-range inputs.
func (v Value) Int() int64 {
	switch v.kind {
	case format.KindUint:
		if v.u > math.MaxInt64 {
			return math.MaxInt64
		}

		return int64(v.u)
	case format.KindInt:
		return v.i
	case format.KindFloat, format.KindDouble:
		return floatToInt(v.f)
	case format.KindBool:
		return int64(boolToUint(v.b)) //nolint: gosec
	case format.KindVector, format.KindQuaternion, format.KindGPSTime:
		return 0
	default:
		return 0
	}
}

// Float returns v as float64.
func (v Value) Float() float64 {
	switch v.kind {
	case format.KindUint:
		return float64(v.u)
	case format.KindInt:
		return float64(v.i)
	case format.KindFloat, format.KindDouble:
		return v.f
	case format.KindBool:
		return float64(boolToUint(v.b))
	case format.KindVector, format.KindQuaternion, format.KindGPSTime:
		return 0
	default:
		return 0
	}
}

// Bool reports whether v is true or a non-zero number.
func (v Value) Bool() bool {
	switch v.kind {
	case format.KindUint:
		return v.u != 0
	case format.KindInt:
		return v.i != 0
	case format.KindFloat, format.KindDouble:
		return v.f != 0
	case format.KindBool:
		return v.b
	case format.KindGPSTime:
		return v.t.Set
	case format.KindVector, format.KindQuaternion:
		return false
	default:
		return false
	}
}

// Vector returns the vector payload, the zero vector for non-vector kinds.
func (v Value) Vector() Vec3 {
	if v.kind != format.KindVector {
		return Vec3{}
	}

	return Vec3{v.q[0], v.q[1], v.q[2]}
}

// Quaternion returns the quaternion payload, the identity for other kinds.
func (v Value) Quaternion() Quat {
	if v.kind != format.KindQuaternion {
		return IdentityQuat
	}

	return v.q
}

// GPSTime returns the GPS time payload, an unset time for other kinds.
func (v Value) GPSTime() GPSTime {
	if v.kind != format.KindGPSTime {
		return GPSTime{}
	}

	return v.t
}

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}

func floatToUint(f float64) uint64 {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= math.MaxUint64:
		return math.MaxUint64
	default:
		return uint64(math.Round(f))
	}
}

func floatToInt(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(math.Round(f))
	}
}

// As converts v to kind k using the coercing accessors. Converting between
// structured kinds that do not match yields the zero value of k.
func (v Value) As(k format.ValueKind) Value {
	if v.kind == k {
		return v
	}

	switch k {
	case format.KindUint:
		return Uint(v.Uint())
	case format.KindInt:
		return Int(v.Int())
	case format.KindFloat:
		return Float(float32(v.Float()))
	case format.KindDouble:
		return Double(v.Float())
	case format.KindBool:
		return Bool(v.Bool())
	case format.KindVector, format.KindQuaternion, format.KindGPSTime:
		return Zero(k)
	default:
		return Value{}
	}
}
