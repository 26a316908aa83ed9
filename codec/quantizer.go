package codec

import (
	"fmt"
	"math"

	"github.com/arloliu/telem/errs"
)

// fixedPoint maps [min, max] onto the unsigned codes 0..2^width-1.
//
// Width 0 has a single code and always decodes to min.
type fixedPoint struct {
	min     float64
	max     float64
	step    float64
	maxCode uint64
	width   int
}

func newFixedPoint(lo, hi float64, width int) (fixedPoint, error) {
	if width < 0 || width > 64 {
		return fixedPoint{}, fmt.Errorf("%w: %d", errs.ErrInvalidBitWidth, width)
	}

	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo > hi {
		return fixedPoint{}, fmt.Errorf("%w: [%v, %v]", errs.ErrInvalidCodecBounds, lo, hi)
	}

	fp := fixedPoint{min: lo, max: hi, width: width}
	if width == 0 {
		return fp, nil
	}

	fp.maxCode = math.MaxUint64 >> (64 - width)
	fp.step = (hi - lo) / float64(fp.maxCode)

	return fp, nil
}

func (fp fixedPoint) quantize(v float64) uint64 {
	if fp.width == 0 || fp.step == 0 {
		return 0
	}

	switch {
	case math.IsNaN(v) || v <= fp.min:
		return 0
	case v >= fp.max:
		return fp.maxCode
	}

	code := math.Round((v - fp.min) / fp.step)
	if code >= float64(fp.maxCode) {
		return fp.maxCode
	}

	return uint64(code)
}

func (fp fixedPoint) dequantize(code uint64) float64 {
	if fp.width == 0 || fp.step == 0 {
		return fp.min
	}

	if code >= fp.maxCode {
		return fp.max
	}

	return fp.min + float64(code)*fp.step
}
