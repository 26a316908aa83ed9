package codec

import "github.com/arloliu/telem/bitstream"

// Bits is the encoded form of one value: exactly Width bits stored
// MSB-first in a buffer sized once at construction.
//
// Each codec owns one Bits, so a codec holds one in-flight value at a time.
type Bits struct {
	buf   []byte
	width int
}

func newBits(width int) Bits {
	return Bits{buf: make([]byte, (width+7)/8), width: width}
}

// Width returns the number of significant bits.
func (b *Bits) Width() int {
	return b.width
}

// Raw returns the backing bytes; trailing bits past Width are zero.
func (b *Bits) Raw() []byte {
	return b.buf
}

// Clear zeroes every bit.
func (b *Bits) Clear() {
	clear(b.buf)
}

// Emit copies the encoded bits to dst and returns the number of bits stored.
// A result below Width means dst ran out of room.
func (b *Bits) Emit(dst *bitstream.Cursor) int {
	src := bitstream.NewCursor(b.buf)
	return bitstream.Copy(dst, &src, b.width)
}

// Load fills the scratch from src and returns the number of bits consumed.
// A result below Width means src was truncated; the scratch then holds a
// partial value and should not be decoded.
func (b *Bits) Load(src *bitstream.Cursor) int {
	b.Clear()
	dst := bitstream.NewCursor(b.buf)

	return bitstream.Copy(&dst, src, b.width)
}

func (b *Bits) writer() bitstream.Cursor {
	b.Clear()
	return bitstream.NewCursor(b.buf)
}

func (b *Bits) reader() bitstream.Cursor {
	return bitstream.NewCursor(b.buf)
}
