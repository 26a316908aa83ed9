// Package compress provides the frame compression codecs used by the link
// layer.
//
// Downlink frames are small (tens to a few hundred bytes) and produced once
// per control cycle, so every codec appends into a caller-supplied buffer
// and keeps its heavyweight state (zstd encoders, lz4 hash tables) in pools.
package compress

import (
	"fmt"

	"github.com/arloliu/telem/format"
)

// MaxDecodedSize bounds the output of Decompress. A link record never
// carries more than one frame, so anything larger is corrupt input.
const MaxDecodedSize = 64 * 1024

// Compressor compresses one frame.
type Compressor interface {
	// Compress appends the compressed form of src to dst and returns the
	// extended slice. src is not modified.
	Compress(dst, src []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
type Decompressor interface {
	// Decompress appends the decompressed form of src to dst and returns
	// the extended slice. Corrupt input or output larger than
	// MaxDecodedSize yields an error.
	Decompress(dst, src []byte) ([]byte, error)
}

// Codec combines both directions. All codecs are safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor
	Type() format.CompressionType
}

// New returns the codec for the given compression type.
func New(t format.CompressionType) (Codec, error) {
	switch t {
	case format.CompressionNone:
		return NoOpCompressor{}, nil
	case format.CompressionZstd:
		return ZstdCompressor{}, nil
	case format.CompressionS2:
		return S2Compressor{}, nil
	case format.CompressionLZ4:
		return LZ4Compressor{}, nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", t)
	}
}
