package link

import (
	"fmt"

	"github.com/arloliu/telem/compress"
	"github.com/arloliu/telem/format"
	"github.com/arloliu/telem/internal/pool"
)

// CompressStage compresses frames with one of the compress codecs.
type CompressStage struct {
	codec compress.Codec
}

var _ Stage = (*CompressStage)(nil)

// NewCompressStage creates a stage for the given compression type.
func NewCompressStage(t format.CompressionType) (*CompressStage, error) {
	c, err := compress.New(t)
	if err != nil {
		return nil, err
	}

	return &CompressStage{codec: c}, nil
}

// Type returns the compression type.
func (s *CompressStage) Type() format.CompressionType {
	return s.codec.Type()
}

func (s *CompressStage) Encode(dst, frame []byte) ([]byte, error) {
	out, err := s.codec.Compress(dst, frame)
	if err != nil {
		return dst, fmt.Errorf("%s stage: %w", s.codec.Type(), err)
	}

	return out, nil
}

func (s *CompressStage) Decode(dst, data []byte) ([]byte, error) {
	out, err := s.codec.Decompress(dst, data)
	if err != nil {
		return dst, fmt.Errorf("%s stage: %w", s.codec.Type(), err)
	}

	return out, nil
}

// Chain applies stages in order when encoding and in reverse when decoding.
type Chain []Stage

var _ Stage = Chain(nil)

func (c Chain) Encode(dst, frame []byte) ([]byte, error) {
	return c.run(dst, frame, false)
}

func (c Chain) Decode(dst, data []byte) ([]byte, error) {
	return c.run(dst, data, true)
}

func (c Chain) run(dst, data []byte, reverse bool) ([]byte, error) {
	if len(c) == 0 {
		return append(dst, data...), nil
	}

	// ping-pong between two pooled buffers; only the last stage writes dst
	bufs := [2]*pool.ByteBuffer{pool.GetRecordBuffer(), pool.GetRecordBuffer()}
	defer pool.PutRecordBuffer(bufs[0])
	defer pool.PutRecordBuffer(bufs[1])

	cur := data
	for i := range c {
		stage := c[i]
		if reverse {
			stage = c[len(c)-1-i]
		}

		apply := stage.Encode
		if reverse {
			apply = stage.Decode
		}

		if i == len(c)-1 {
			return apply(dst, cur)
		}

		buf := bufs[i%2]
		out, err := apply(buf.B[:0], cur)
		if err != nil {
			return dst, err
		}
		buf.B = out
		cur = out
	}

	return dst, nil
}
