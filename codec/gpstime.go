package codec

import "github.com/arloliu/telem/format"

const (
	weekBits  = 16
	towBits   = 32
	validBits = 1

	// GPSTimeBits is the encoded width of a GPS time.
	GPSTimeBits = weekBits + towBits + validBits

	// MillisPerWeek bounds the time-of-week field.
	MillisPerWeek = 7 * 24 * 60 * 60 * 1000
)

// GPSTimeCodec stores week number, time-of-week in milliseconds and a
// validity bit. An unset time encodes as all zeros.
type GPSTimeCodec struct {
	bits Bits
}

var _ Codec = (*GPSTimeCodec)(nil)

// NewGPSTime creates a GPS time codec.
func NewGPSTime() *GPSTimeCodec {
	return &GPSTimeCodec{bits: newBits(GPSTimeBits)}
}

func (c *GPSTimeCodec) Kind() format.ValueKind { return format.KindGPSTime }
func (c *GPSTimeCodec) BitWidth() int          { return GPSTimeBits }
func (c *GPSTimeCodec) Bits() *Bits            { return &c.bits }

func (c *GPSTimeCodec) Encode(val Value) {
	t := val.GPSTime()
	w := c.bits.writer()
	if !t.Set {
		return
	}

	w.Write(weekBits, uint32(t.Week))
	w.Write(towBits, min(t.TOW, MillisPerWeek-1))
	w.Write(validBits, 1)
}

func (c *GPSTimeCodec) Decode() Value {
	r := c.bits.reader()
	week, _ := r.Read(weekBits)
	tow, _ := r.Read(towBits)
	valid, _ := r.Read(validBits)
	if valid == 0 {
		return Time(GPSTime{})
	}

	return Time(GPSTime{Week: uint16(week), TOW: min(tow, MillisPerWeek-1), Set: true}) //nolint: gosec
}
