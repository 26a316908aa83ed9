// Package bitstream provides a bit-granular cursor over a caller-owned byte buffer.
//
// The cursor never allocates and never touches memory outside the borrowed
// buffer: reads past the end return a short count, writes past the end are
// silently truncated, and seeks past either end are rejected without moving.
// This makes it safe to run over fixed-size packet buffers where a malformed
// or oversized payload must never corrupt adjacent memory.
//
// # Bit Order
//
// Bits are addressed most significant bit first within each byte, and
// multi-bit values are stored most significant bit first. A 3-bit value 0b101
// written at the start of a zeroed buffer produces the byte 0xA0. The downlink
// and uplink frames use this single convention.
//
// # Usage
//
//	buf := make([]byte, 4)
//	w := bitstream.NewCursor(buf)
//	w.Write(5, 0x1F)
//	w.Write(5, 0x01)
//
//	r := bitstream.NewCursor(buf)
//	v, n := r.Read(10) // v == 0x3E1, n == 10
package bitstream

// MaxBits is the largest bit count accepted by Read, Peek and Write.
const MaxBits = 32

// MaxWideBits is the largest bit count accepted by the wide variants.
const MaxWideBits = 64

// Direction selects which way Seek moves the cursor.
type Direction int8

const (
	// Begin moves the cursor towards the start of the buffer.
	Begin Direction = -1
	// End moves the cursor towards the end of the buffer.
	End Direction = 1
)

// Cursor is a read/write/seek position inside a borrowed byte buffer.
//
// The zero value is a cursor over an empty buffer. Cursor is small and is
// meant to be created per operation and passed by pointer; it does not own
// the buffer and must not outlive the call that borrowed it.
type Cursor struct {
	buf     []byte
	bytePos int   // index of the current byte, len(buf) at the end
	bitPos  uint8 // bits already consumed in buf[bytePos], 0-7
}

// NewCursor creates a cursor positioned at the first bit of buf.
//
// The cursor is returned by value so that short-lived cursors stay on the
// caller's stack.
func NewCursor(buf []byte) Cursor {
	return Cursor{buf: buf}
}

// Reset moves the cursor back to the first bit of its buffer.
func (c *Cursor) Reset() {
	c.bytePos = 0
	c.bitPos = 0
}

// Bytes returns the borrowed buffer.
func (c *Cursor) Bytes() []byte {
	return c.buf
}

// Len returns the buffer length in bits.
func (c *Cursor) Len() int {
	return len(c.buf) * 8
}

// Pos returns the cursor position in bits from the start of the buffer.
func (c *Cursor) Pos() int {
	return c.bytePos*8 + int(c.bitPos)
}

// Remaining returns the number of bits between the cursor and the buffer end.
func (c *Cursor) Remaining() int {
	return c.Len() - c.Pos()
}

// ByteOffset returns the index of the byte holding the next bit.
func (c *Cursor) ByteOffset() int {
	return c.bytePos
}

// BitOffset returns the offset of the next bit inside the current byte.
func (c *Cursor) BitOffset() int {
	return int(c.bitPos)
}

// Read consumes the next n bits and returns them right-aligned.
//
// Parameters:
//   - n: number of bits to read (0-32)
//
// Returns:
//   - uint32: the bits read, most significant bit first
//   - int: number of bits actually read; less than n when the buffer ends
//     first, 0 when n is out of range
func (c *Cursor) Read(n int) (uint32, int) {
	v, got := c.Peek(n)
	c.advance(got)

	return v, got
}

// Peek returns the next n bits like Read without moving the cursor.
func (c *Cursor) Peek(n int) (uint32, int) {
	if n <= 0 || n > MaxBits {
		return 0, 0
	}

	if avail := c.Remaining(); n > avail {
		n = avail
	}

	var v uint32
	bytePos, bitPos := c.bytePos, int(c.bitPos)
	for remaining := n; remaining > 0; {
		free := 8 - bitPos
		take := min(free, remaining)
		chunk := (uint32(c.buf[bytePos]) >> (free - take)) & (uint32(1)<<take - 1)
		v = v<<take | chunk

		remaining -= take
		bitPos += take
		if bitPos == 8 {
			bitPos = 0
			bytePos++
		}
	}

	return v, n
}

// Write stores the low n bits of v at the cursor and advances past them.
//
// Bits outside the written range keep their previous value. Bits that would
// land past the end of the buffer are dropped; the cursor then stops at the
// buffer end.
//
// Parameters:
//   - n: number of bits to write (0-32)
//   - v: value whose low n bits are written, most significant bit first
//
// Returns:
//   - int: number of bits actually stored
func (c *Cursor) Write(n int, v uint32) int {
	if n <= 0 || n > MaxBits {
		return 0
	}

	written := min(n, c.Remaining())
	for done := 0; done < written; {
		free := 8 - int(c.bitPos)
		take := min(free, written-done)
		below := n - done - take // bits of v below this chunk
		shift := free - take     // bits of the byte below this chunk

		chunk := byte((v >> below) & (uint32(1)<<take - 1))
		mask := byte((uint32(1)<<take - 1) << shift)
		b := &c.buf[c.bytePos]
		*b = (*b &^ mask) | (chunk << shift)

		c.advance(take)
		done += take
	}

	return written
}

// ReadWide reads up to 64 bits by splitting the request into 32-bit reads.
func (c *Cursor) ReadWide(n int) (uint64, int) {
	if n <= 0 || n > MaxWideBits {
		return 0, 0
	}

	if n <= MaxBits {
		v, got := c.Read(n)
		return uint64(v), got
	}

	hi, gotHi := c.Read(n - MaxBits)
	if gotHi < n-MaxBits {
		return uint64(hi), gotHi
	}

	lo, gotLo := c.Read(MaxBits)

	return uint64(hi)<<gotLo | uint64(lo), gotHi + gotLo
}

// PeekWide returns the next n (up to 64) bits without moving the cursor.
func (c *Cursor) PeekWide(n int) (uint64, int) {
	bytePos, bitPos := c.bytePos, c.bitPos
	v, got := c.ReadWide(n)
	c.bytePos, c.bitPos = bytePos, bitPos

	return v, got
}

// WriteWide writes the low n (up to 64) bits of v, truncating at the buffer end.
func (c *Cursor) WriteWide(n int, v uint64) int {
	if n <= 0 || n > MaxWideBits {
		return 0
	}

	if n <= MaxBits {
		return c.Write(n, uint32(v)) //nolint: gosec
	}

	hiBits := n - MaxBits
	wrote := c.Write(hiBits, uint32(v>>MaxBits)) //nolint: gosec
	if wrote < hiBits {
		return wrote
	}

	return wrote + c.Write(MaxBits, uint32(v)) //nolint: gosec
}

// Seek moves the cursor amount bits in direction dir.
//
// A move that would leave the buffer, a negative amount or an unknown
// direction leaves the cursor unchanged and returns false.
func (c *Cursor) Seek(amount int, dir Direction) bool {
	if amount < 0 || (dir != Begin && dir != End) {
		return false
	}

	target := c.Pos() + int(dir)*amount
	if target < 0 || target > c.Len() {
		return false
	}

	c.bytePos = target / 8
	c.bitPos = uint8(target % 8) //nolint: gosec

	return true
}

// BitsToByteBoundary returns how many bits separate the cursor from the next
// byte boundary (0 when already aligned).
func (c *Cursor) BitsToByteBoundary() int {
	if c.bitPos == 0 {
		return 0
	}

	return 8 - int(c.bitPos)
}

// PadToByte writes zero bits up to the next byte boundary and returns the
// number of bits written.
func (c *Cursor) PadToByte() int {
	return c.Write(c.BitsToByteBoundary(), 0)
}

// Copy moves n bits from src to dst in 32-bit chunks.
//
// It stops early when src runs out of bits or dst runs out of room and
// returns the number of bits stored in dst.
func Copy(dst, src *Cursor, n int) int {
	copied := 0
	for copied < n {
		chunk := min(n-copied, MaxBits)
		v, got := src.Read(chunk)
		wrote := dst.Write(got, v)
		copied += wrote
		if got < chunk || wrote < got {
			break
		}
	}

	return copied
}

func (c *Cursor) advance(n int) {
	pos := int(c.bitPos) + n
	c.bytePos += pos / 8
	c.bitPos = uint8(pos % 8) //nolint: gosec
}
