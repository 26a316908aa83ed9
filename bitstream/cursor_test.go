package bitstream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursor_ReadMSBFirst(t *testing.T) {
	c := NewCursor([]byte{0xA5, 0x3C})

	v, n := c.Read(3)
	require.Equal(t, 3, n)
	require.Equal(t, uint32(0b101), v)

	v, n = c.Read(9)
	require.Equal(t, 9, n)
	require.Equal(t, uint32(0b001010011), v)

	require.Equal(t, 12, c.Pos())
	require.Equal(t, 4, c.Remaining())
	require.Equal(t, 1, c.ByteOffset())
	require.Equal(t, 4, c.BitOffset())
}

func TestCursor_PeekDoesNotAdvance(t *testing.T) {
	buf := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01}
	widths := []int{1, 3, 7, 8, 13, 32}

	for _, w := range widths {
		c := NewCursor(buf)
		require.True(t, c.Seek(3, End))

		pv, pn := c.Peek(w)
		require.Equal(t, 3, c.Pos(), "peek moved the cursor")

		rv, rn := c.Read(w)
		require.Equal(t, pv, rv, "width %d", w)
		require.Equal(t, pn, rn, "width %d", w)
		require.Equal(t, 3+rn, c.Pos())
	}
}

func TestCursor_WriteAcrossByteBoundary(t *testing.T) {
	buf := make([]byte, 2)
	w := NewCursor(buf)

	require.Equal(t, 5, w.Write(5, 0b10110))
	require.Equal(t, 5, w.Write(5, 0b01101))
	require.Equal(t, 10, w.Pos())

	r := NewCursor(buf)
	v, n := r.Read(10)
	require.Equal(t, 10, n)
	require.Equal(t, uint32(0b1011001101), v)
	require.Equal(t, []byte{0xB3, 0x40}, buf)
}

func TestCursor_WritePreservesNeighbouringBits(t *testing.T) {
	buf := []byte{0xFF, 0xFF, 0xFF}
	c := NewCursor(buf)
	require.True(t, c.Seek(6, End))

	require.Equal(t, 7, c.Write(7, 0))
	require.Equal(t, []byte{0xFC, 0x07, 0xFF}, buf)

	// the low bits of the value are the ones written, higher bits ignored
	c.Reset()
	require.Equal(t, 4, c.Write(4, 0xFFFF_FFF5))
	require.Equal(t, byte(0x5C), buf[0])
}

func TestCursor_WriteRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		start int
		width int
		value uint32
	}{
		{"aligned byte", 0, 8, 0xA7},
		{"single bit", 5, 1, 1},
		{"spans two bytes", 6, 5, 0b10011},
		{"spans five bytes", 3, 32, 0xCAFEBABE},
		{"zero width", 4, 0, 0},
		{"odd width", 9, 17, 0x1ABCD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := []byte{0x55, 0x55, 0x55, 0x55, 0x55, 0x55}
			w := NewCursor(buf)
			require.True(t, w.Seek(tt.start, End))
			require.Equal(t, tt.width, w.Write(tt.width, tt.value))

			r := NewCursor(buf)
			require.True(t, r.Seek(tt.start, End))
			v, n := r.Read(tt.width)
			require.Equal(t, tt.width, n)
			require.Equal(t, tt.value, v)
		})
	}
}

func TestCursor_ReadTruncated(t *testing.T) {
	c := NewCursor([]byte{0xF0})
	require.True(t, c.Seek(5, End))

	v, n := c.Read(8)
	require.Equal(t, 3, n)
	require.Equal(t, uint32(0), v)
	require.Equal(t, 0, c.Remaining())

	v, n = c.Read(4)
	require.Equal(t, 0, n)
	require.Equal(t, uint32(0), v)

	c.Reset()
	v, n = c.Read(12)
	require.Equal(t, 8, n)
	require.Equal(t, uint32(0xF0), v)
}

func TestCursor_WriteNeverPastEnd(t *testing.T) {
	backing := []byte{0x00, 0x00, 0xEE}
	buf := backing[:2]

	c := NewCursor(buf)
	require.True(t, c.Seek(12, End))
	wrote := c.Write(8, 0xFF)

	require.Equal(t, 4, wrote)
	require.Equal(t, 0, c.Remaining())
	require.Equal(t, []byte{0x00, 0x0F}, buf)
	require.Equal(t, byte(0xEE), backing[2], "write leaked past the borrowed buffer")

	require.Equal(t, 0, c.Write(3, 0x7))
}

func TestCursor_InvalidWidths(t *testing.T) {
	c := NewCursor([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF})

	v, n := c.Read(33)
	require.Equal(t, 0, n)
	require.Zero(t, v)

	_, n = c.Read(-1)
	require.Equal(t, 0, n)
	require.Equal(t, 0, c.Write(40, 1))
	require.Equal(t, 0, c.Pos())
}

func TestCursor_Seek(t *testing.T) {
	c := NewCursor(make([]byte, 2))

	require.True(t, c.Seek(11, End))
	require.Equal(t, 11, c.Pos())

	require.False(t, c.Seek(6, End), "seek past the end")
	require.Equal(t, 11, c.Pos())

	require.True(t, c.Seek(5, End))
	require.Equal(t, 16, c.Pos())

	require.False(t, c.Seek(17, Begin), "seek past the start")
	require.Equal(t, 16, c.Pos())

	require.True(t, c.Seek(16, Begin))
	require.Equal(t, 0, c.Pos())

	require.False(t, c.Seek(-1, End))
	require.False(t, c.Seek(1, Direction(0)))
	require.Equal(t, 0, c.Pos())
}

func TestCursor_Wide(t *testing.T) {
	buf := make([]byte, 16)
	w := NewCursor(buf)
	require.True(t, w.Seek(3, End))

	require.Equal(t, 49, w.WriteWide(49, 0x1_2345_6789_ABCD))
	require.Equal(t, 64, w.WriteWide(64, 0))

	r := NewCursor(buf)
	require.True(t, r.Seek(3, End))

	pv, pn := r.PeekWide(49)
	require.Equal(t, 3, r.Pos())

	v, n := r.ReadWide(49)
	require.Equal(t, 49, n)
	require.Equal(t, pn, n)
	require.Equal(t, pv, v)
	require.Equal(t, uint64(0x1_2345_6789_ABCD), v)

	short := NewCursor(buf[:4])
	_, n = short.ReadWide(40)
	require.Equal(t, 32, n)
}

func TestCursor_PadToByte(t *testing.T) {
	buf := []byte{0xFF, 0xFF}
	c := NewCursor(buf)

	require.Equal(t, 0, c.PadToByte())
	c.Write(3, 0b111)
	require.Equal(t, 5, c.BitsToByteBoundary())
	require.Equal(t, 5, c.PadToByte())
	require.Equal(t, 8, c.Pos())
	require.Equal(t, byte(0xE0), buf[0])
}

func TestCopy(t *testing.T) {
	src := []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE}
	dst := make([]byte, 8)

	s := NewCursor(src)
	d := NewCursor(dst)
	require.True(t, d.Seek(4, End))

	require.Equal(t, 56, Copy(&d, &s, 56))

	check := NewCursor(dst)
	require.True(t, check.Seek(4, End))
	v, n := check.ReadWide(56)
	require.Equal(t, 56, n)
	require.Equal(t, uint64(0x123456789ABCDE), v)

	// destination too small
	small := make([]byte, 1)
	s.Reset()
	d = NewCursor(small)
	require.Equal(t, 8, Copy(&d, &s, 20))
	require.Equal(t, byte(0x12), small[0])
}

func BenchmarkCursor_WriteRead(b *testing.B) {
	buf := make([]byte, 70)
	widths := []int{3, 5, 9, 17, 32, 1, 13}

	b.ReportAllocs()
	for b.Loop() {
		w := NewCursor(buf)
		for w.Remaining() > 32 {
			for _, n := range widths {
				w.Write(n, 0x5A5A5A5A)
			}
		}

		r := NewCursor(buf)
		for r.Remaining() > 0 {
			r.Read(7)
		}
	}
}
