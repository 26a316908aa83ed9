package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/format"
)

// lz4CompressorPool pools lz4.Compressor instances; each holds a hash table
// that is expensive to allocate per frame.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor uses LZ4 block compression. Blocks carry no length header,
// so Decompress grows its output buffer until the block fits or
// MaxDecodedSize is reached.
type LZ4Compressor struct{}

var _ Codec = LZ4Compressor{}

func (LZ4Compressor) Type() format.CompressionType { return format.CompressionLZ4 }

func (LZ4Compressor) Compress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst, nil
	}

	start := len(dst)
	dst = grow(dst, lz4.CompressBlockBound(len(src)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(src, dst[start:])
	if err != nil {
		return dst[:start], fmt.Errorf("lz4 compression failed: %w", err)
	}

	return dst[:start+n], nil
}

func (LZ4Compressor) Decompress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst, nil
	}

	start := len(dst)
	for size := min(len(src)*4, MaxDecodedSize); ; size = min(size*2, MaxDecodedSize) {
		buf := grow(dst[:start], size)
		n, err := lz4.UncompressBlock(src, buf[start:])
		if err == nil {
			return buf[:start+n], nil
		}

		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return dst[:start], fmt.Errorf("lz4 decompression failed: %w", err)
		}
		if size == MaxDecodedSize {
			return dst[:start], fmt.Errorf("%w: lz4 block: %w", errs.ErrRecordTooLarge, err)
		}
		dst = buf
	}
}

// grow extends b by n bytes, reallocating only when capacity is short.
func grow(b []byte, n int) []byte {
	if cap(b)-len(b) >= n {
		return b[:len(b)+n]
	}

	out := make([]byte, len(b)+n)
	copy(out, b)

	return out
}
