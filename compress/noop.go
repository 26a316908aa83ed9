package compress

import (
	"fmt"

	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/format"
)

// NoOpCompressor copies frames unchanged.
type NoOpCompressor struct{}

var _ Codec = NoOpCompressor{}

func (NoOpCompressor) Type() format.CompressionType { return format.CompressionNone }

func (NoOpCompressor) Compress(dst, src []byte) ([]byte, error) {
	return append(dst, src...), nil
}

func (NoOpCompressor) Decompress(dst, src []byte) ([]byte, error) {
	if len(src) > MaxDecodedSize {
		return dst, fmt.Errorf("%w: %d bytes", errs.ErrRecordTooLarge, len(src))
	}

	return append(dst, src...), nil
}
