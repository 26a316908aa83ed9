package codec

import (
	"fmt"
	"math"

	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/format"
)

// Descriptor is the static description of a codec, as read from boot
// configuration.
//
// Width is ignored for Bool, Quaternion and GPSTime, whose widths are fixed
// (a quaternion's width follows ComponentBits). Min and Max are ignored
// for the same kinds.
type Descriptor struct {
	Kind          format.ValueKind
	Min           float64
	Max           float64
	Width         int
	Mode          format.VectorMode
	ComponentBits int
}

// New builds the codec described by d.
func New(d Descriptor) (Codec, error) {
	var opts []Option
	if d.Mode != 0 {
		opts = append(opts, WithMode(d.Mode))
	}
	if d.ComponentBits != 0 {
		opts = append(opts, WithComponentBits(d.ComponentBits))
	}

	switch d.Kind {
	case format.KindUint:
		if d.Min < 0 || d.Max >= math.MaxUint64 {
			return nil, fmt.Errorf("%w: uint range [%v, %v]", errs.ErrInvalidCodecBounds, d.Min, d.Max)
		}
		if d.Min > d.Max {
			return nil, fmt.Errorf("%w: [%v, %v]", errs.ErrInvalidCodecBounds, d.Min, d.Max)
		}

		return nonNil(NewUint(uint64(d.Min), uint64(d.Max), d.Width))
	case format.KindInt:
		if d.Min < math.MinInt64 || d.Max >= math.MaxInt64 || d.Min > d.Max {
			return nil, fmt.Errorf("%w: int range [%v, %v]", errs.ErrInvalidCodecBounds, d.Min, d.Max)
		}

		return nonNil(NewInt(int64(d.Min), int64(d.Max), d.Width))
	case format.KindFloat:
		return nonNil(NewFloat(float32(d.Min), float32(d.Max), d.Width))
	case format.KindDouble:
		return nonNil(NewDouble(d.Min, d.Max, d.Width))
	case format.KindBool:
		return NewBool(), nil
	case format.KindVector:
		return nonNil(NewVector(d.Min, d.Max, d.Width, opts...))
	case format.KindQuaternion:
		return nonNil(NewQuaternion(opts...))
	case format.KindGPSTime:
		return NewGPSTime(), nil
	default:
		return nil, fmt.Errorf("%w: %d", errs.ErrUnsupportedKind, d.Kind)
	}
}

// nonNil keeps a failed constructor from returning a typed nil Codec.
func nonNil[C Codec](c C, err error) (Codec, error) {
	if err != nil {
		return nil, err
	}

	return c, nil
}
