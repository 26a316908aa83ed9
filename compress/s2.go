package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/format"
)

// S2Compressor uses S2 block compression.
type S2Compressor struct{}

var _ Codec = S2Compressor{}

func (S2Compressor) Type() format.CompressionType { return format.CompressionS2 }

func (S2Compressor) Compress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst, nil
	}

	out := s2.Encode(dst[len(dst):cap(dst)], src)

	return append(dst, out...), nil
}

func (S2Compressor) Decompress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst, nil
	}

	n, err := s2.DecodedLen(src)
	if err != nil {
		return dst, fmt.Errorf("s2 decompression failed: %w", err)
	}
	if n > MaxDecodedSize {
		return dst, fmt.Errorf("%w: %d bytes", errs.ErrRecordTooLarge, n)
	}

	out, err := s2.Decode(dst[len(dst):cap(dst)], src)
	if err != nil {
		return dst, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return append(dst, out...), nil
}
