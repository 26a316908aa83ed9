package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/format"
)

const unsetTime = "unset"

// String formats v in the text form accepted by ParseValue.
//
//	uint, int     decimal
//	float, double shortest round-trip decimal
//	bool          true | false
//	vector        x,y,z
//	quaternion    x,y,z,w
//	gpstime       week:tow_ms | unset
func (v Value) String() string {
	switch v.kind {
	case format.KindUint:
		return strconv.FormatUint(v.u, 10)
	case format.KindInt:
		return strconv.FormatInt(v.i, 10)
	case format.KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 32)
	case format.KindDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case format.KindBool:
		return strconv.FormatBool(v.b)
	case format.KindVector:
		return joinFloats(v.q[:3])
	case format.KindQuaternion:
		return joinFloats(v.q[:])
	case format.KindGPSTime:
		if !v.t.Set {
			return unsetTime
		}

		return fmt.Sprintf("%d:%d", v.t.Week, v.t.TOW)
	default:
		return "<nil>"
	}
}

// ParseValue parses s as a value of the given kind.
func ParseValue(kind format.ValueKind, s string) (Value, error) {
	s = strings.TrimSpace(s)

	switch kind {
	case format.KindUint:
		u, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return Value{}, textError(kind, s, err)
		}

		return Uint(u), nil
	case format.KindInt:
		i, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return Value{}, textError(kind, s, err)
		}

		return Int(i), nil
	case format.KindFloat:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return Value{}, textError(kind, s, err)
		}

		return Float(float32(f)), nil
	case format.KindDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, textError(kind, s, err)
		}

		return Double(f), nil
	case format.KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, textError(kind, s, err)
		}

		return Bool(b), nil
	case format.KindVector:
		var v Vec3
		if err := splitFloats(s, v[:]); err != nil {
			return Value{}, textError(kind, s, err)
		}

		return Vector(v), nil
	case format.KindQuaternion:
		var q Quat
		if err := splitFloats(s, q[:]); err != nil {
			return Value{}, textError(kind, s, err)
		}

		return Quaternion(q), nil
	case format.KindGPSTime:
		return parseGPSTime(s)
	default:
		return Value{}, fmt.Errorf("%w: %d", errs.ErrUnsupportedKind, kind)
	}
}

func parseGPSTime(s string) (Value, error) {
	if strings.EqualFold(s, unsetTime) {
		return Time(GPSTime{}), nil
	}

	weekText, towText, ok := strings.Cut(s, ":")
	if !ok {
		return Value{}, textError(format.KindGPSTime, s, nil)
	}

	week, err := strconv.ParseUint(strings.TrimSpace(weekText), 10, 16)
	if err != nil {
		return Value{}, textError(format.KindGPSTime, s, err)
	}

	tow, err := strconv.ParseUint(strings.TrimSpace(towText), 10, 32)
	if err != nil || tow >= MillisPerWeek {
		return Value{}, textError(format.KindGPSTime, s, err)
	}

	return Time(GPSTime{Week: uint16(week), TOW: uint32(tow), Set: true}), nil
}

func joinFloats(fs []float64) string {
	var sb strings.Builder
	for i, f := range fs {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}

	return sb.String()
}

func splitFloats(s string, dst []float64) error {
	parts := strings.Split(s, ",")
	if len(parts) != len(dst) {
		return fmt.Errorf("want %d components, got %d", len(dst), len(parts))
	}

	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return err
		}
		dst[i] = f
	}

	return nil
}

func textError(kind format.ValueKind, s string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %q as %s", errs.ErrInvalidValueText, s, kind)
	}

	return fmt.Errorf("%w: %q as %s: %v", errs.ErrInvalidValueText, s, kind, cause)
}
