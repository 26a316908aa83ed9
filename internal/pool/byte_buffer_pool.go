// Package pool provides reusable byte buffers for link record encoding.
package pool

import (
	"io"
	"sync"
)

const (
	// RecordBufferSize fits a maximum-size frame plus its record header.
	RecordBufferSize = 512
	// RecordBufferLimit keeps buffers grown by a rare oversized record out
	// of the pool.
	RecordBufferLimit = 64 * 1024
)

// ByteBuffer is a byte slice that travels through a pool. Callers append to
// B directly.
type ByteBuffer struct {
	B []byte
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int { return len(bb.B) }

// WriteTo writes the buffer contents to w in a single call, so a record
// reaches the link in one write.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool hands out empty buffers and drops buffers that grew past
// its limit.
type ByteBufferPool struct {
	pool  sync.Pool
	limit int
}

// NewByteBufferPool creates a pool of buffers with capacity size. A limit
// of 0 keeps every buffer.
func NewByteBufferPool(size, limit int) *ByteBufferPool {
	p := &ByteBufferPool{limit: limit}
	p.pool.New = func() any {
		return &ByteBuffer{B: make([]byte, 0, size)}
	}

	return p
}

// Get retrieves an empty buffer.
func (p *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns bb to the pool.
func (p *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil || (p.limit > 0 && cap(bb.B) > p.limit) {
		return
	}
	bb.B = bb.B[:0]
	p.pool.Put(bb)
}

var records = NewByteBufferPool(RecordBufferSize, RecordBufferLimit)

// GetRecordBuffer retrieves a buffer from the shared link record pool.
func GetRecordBuffer() *ByteBuffer { return records.Get() }

// PutRecordBuffer returns a buffer to the shared link record pool.
func PutRecordBuffer(bb *ByteBuffer) { records.Put(bb) }
