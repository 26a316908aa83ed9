package link

import (
	"bufio"
	"fmt"
	"io"

	"github.com/arloliu/telem/endian"
	"github.com/arloliu/telem/errs"
)

// Record layout on byte-stream links:
//
//	+------+------+--------+---------+
//	| 0xEB | 0x90 | length | payload |
//	|      |      | uint16 | n bytes |
//	+------+------+--------+---------+
//
// The sync word lets a reader recover after line noise; the length uses the
// configured byte order.
const (
	syncHi = 0xEB
	syncLo = 0x90

	// RecordHeaderSize is the size of the sync word plus length.
	RecordHeaderSize = 4
	// MaxRecordPayload is the largest payload a length field can describe.
	MaxRecordPayload = 0xFFFF
)

// AppendRecord appends a record holding payload to dst.
func AppendRecord(dst, payload []byte, engine endian.EndianEngine) ([]byte, error) {
	if len(payload) > MaxRecordPayload {
		return dst, fmt.Errorf("%w: %d bytes", errs.ErrRecordTooLarge, len(payload))
	}

	dst = append(dst, syncHi, syncLo)
	dst = engine.AppendUint16(dst, uint16(len(payload))) //nolint: gosec

	return append(dst, payload...), nil
}

// RecordReader extracts records from a byte stream.
type RecordReader struct {
	r      *bufio.Reader
	engine endian.EndianEngine
	max    int
	hdr    [2]byte
}

// NewRecordReader creates a reader that rejects payloads larger than max.
func NewRecordReader(r io.Reader, engine endian.EndianEngine, maxPayload int) *RecordReader {
	return &RecordReader{r: bufio.NewReader(r), engine: engine, max: maxPayload}
}

// Next appends the next record payload to dst.
//
// Bytes before a sync word are skipped. An oversized length yields
// errs.ErrRecordTooLarge; the reader then resumes scanning after that
// header, so the caller may keep calling Next. io.EOF is returned only
// between records; a stream that ends inside a record returns
// io.ErrUnexpectedEOF.
func (rr *RecordReader) Next(dst []byte) ([]byte, error) {
	if err := rr.sync(); err != nil {
		return dst, err
	}

	if _, err := io.ReadFull(rr.r, rr.hdr[:]); err != nil {
		return dst, unexpected(err)
	}

	n := int(rr.engine.Uint16(rr.hdr[:]))
	if n > rr.max {
		return dst, fmt.Errorf("%w: %d > %d bytes", errs.ErrRecordTooLarge, n, rr.max)
	}

	start := len(dst)
	dst = append(dst, make([]byte, n)...)
	if _, err := io.ReadFull(rr.r, dst[start:]); err != nil {
		return dst[:start], unexpected(err)
	}

	return dst, nil
}

func (rr *RecordReader) sync() error {
	prev := byte(0)
	for {
		b, err := rr.r.ReadByte()
		if err != nil {
			if prev == syncHi {
				return io.ErrUnexpectedEOF
			}

			return err
		}
		if prev == syncHi && b == syncLo {
			return nil
		}
		prev = b
	}
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}

	return err
}
