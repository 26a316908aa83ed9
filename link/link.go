// Package link connects frames to the outside world.
//
// The codec core only produces and consumes whole frames. Everything between
// a frame and the physical medium lives here: optional encoding stages such
// as compression, record framing on byte streams, and transports. A
// transport delivers complete frames only; a partially received record is
// never handed to the uplink consumer.
package link

import "context"

// Encoder transforms a raw frame into its on-link form.
type Encoder interface {
	// Encode appends the encoded form of frame to dst.
	Encode(dst, frame []byte) ([]byte, error)
}

// Decoder reverses an Encoder.
type Decoder interface {
	// Decode appends the decoded form of data to dst.
	Decode(dst, data []byte) ([]byte, error)
}

// Stage is a reversible transformation.
type Stage interface {
	Encoder
	Decoder
}

// Sink accepts outbound frames. Send must not retain frame after it returns.
type Sink interface {
	Send(frame []byte) error
}

// Source yields inbound frames.
type Source interface {
	// Receive returns the next complete frame, or nil when none has arrived
	// since the last call. It never blocks. The returned slice is owned by
	// the caller.
	Receive() ([]byte, error)
}

// Runnable is a transport with a background receive or send loop.
type Runnable interface {
	Run(ctx context.Context) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(frame []byte) error

// Send calls f(frame).
func (f SinkFunc) Send(frame []byte) error {
	return f(frame)
}
