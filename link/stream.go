package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/internal/pool"
)

// StreamSink writes each frame as one record to a byte stream.
type StreamSink struct {
	mu  sync.Mutex
	w   io.Writer
	cfg *Config
}

var _ Sink = (*StreamSink)(nil)

// NewStreamSink creates a sink writing records to w.
func NewStreamSink(w io.Writer, opts ...Option) (*StreamSink, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &StreamSink{w: w, cfg: cfg}, nil
}

// Send encodes frame through the configured stage and writes one record.
// Concurrent calls are serialized so records never interleave.
func (s *StreamSink) Send(frame []byte) error {
	buf := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(buf)

	// reserve the header, encode in place, then patch the length
	buf.B = append(buf.B[:0], syncHi, syncLo, 0, 0)
	out, err := s.cfg.Encode(buf.B, frame)
	if err != nil {
		return err
	}
	buf.B = out

	n := buf.Len() - RecordHeaderSize
	if n > MaxRecordPayload {
		return fmt.Errorf("%w: %d bytes", errs.ErrRecordTooLarge, n)
	}
	s.cfg.Engine.PutUint16(buf.B[2:RecordHeaderSize], uint16(n)) //nolint: gosec

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = buf.WriteTo(s.w)

	return err
}

// StreamSource reads records from a byte stream in the background and hands
// complete frames to Receive.
type StreamSource struct {
	r      io.ReadCloser
	cfg    *Config
	frames chan []byte

	mu      sync.Mutex
	dropped uint64
	skipped uint64
}

var (
	_ Source   = (*StreamSource)(nil)
	_ Runnable = (*StreamSource)(nil)
)

// NewStreamSource creates a source reading records from r. Run must be
// started for frames to arrive.
func NewStreamSource(r io.ReadCloser, opts ...Option) (*StreamSource, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &StreamSource{
		r:      r,
		cfg:    cfg,
		frames: make(chan []byte, cfg.QueueDepth),
	}, nil
}

// Receive returns the oldest queued frame, or nil if the queue is empty.
func (s *StreamSource) Receive() ([]byte, error) {
	select {
	case f := <-s.frames:
		return f, nil
	default:
		return nil, nil
	}
}

// Stats returns the number of frames dropped on a full queue and the number
// of records skipped as oversized or undecodable.
func (s *StreamSource) Stats() (dropped, skipped uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dropped, s.skipped
}

// Run reads records until the stream ends or ctx is canceled. The stream is
// closed when Run returns. A clean end of stream returns nil.
func (s *StreamSource) Run(ctx context.Context) error {
	rr := NewRecordReader(s.r, s.cfg.Engine, s.cfg.MaxRecordSize)

	return RunWithCloser(ctx, s.r, func() error {
		var rec []byte
		for {
			var err error
			rec, err = rr.Next(rec[:0])
			switch {
			case err == nil:
			case errors.Is(err, io.EOF):
				return nil
			case errors.Is(err, errs.ErrRecordTooLarge):
				glog.Warningf("link: %v", err)
				s.count(&s.skipped)

				continue
			default:
				return err
			}

			frame, err := s.cfg.Decode(nil, rec)
			if err != nil {
				glog.Warningf("link: dropping record: %v", err)
				s.count(&s.skipped)

				continue
			}
			s.push(frame)
		}
	})
}

func (s *StreamSource) push(frame []byte) {
	select {
	case s.frames <- frame:
	default:
		glog.Warningf("link: receive queue full, dropping %d byte frame", len(frame))
		s.count(&s.dropped)
	}
}

func (s *StreamSource) count(n *uint64) {
	s.mu.Lock()
	*n++
	s.mu.Unlock()
}
