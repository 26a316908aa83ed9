package link

import (
	"fmt"

	"github.com/arloliu/telem/endian"
	"github.com/arloliu/telem/internal/options"
)

const (
	// DefaultQueueDepth is the number of complete inbound frames a transport
	// buffers between two Receive calls.
	DefaultQueueDepth = 8
	// DefaultMaxRecordSize bounds an inbound record payload.
	DefaultMaxRecordSize = 4096
)

// Option configures transports.
type Option = options.Option[*Config]

// Config holds the settings shared by transports. It is exported so that
// transports in sub-packages can be configured with the same options.
type Config struct {
	Stage         Stage
	Engine        endian.EndianEngine
	QueueDepth    int
	MaxRecordSize int
}

// NewConfig applies opts over the defaults.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		Engine:        endian.GetBigEndianEngine(),
		QueueDepth:    DefaultQueueDepth,
		MaxRecordSize: DefaultMaxRecordSize,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Encode runs the configured stage, or copies frame when there is none.
func (c *Config) Encode(dst, frame []byte) ([]byte, error) {
	if c.Stage == nil {
		return append(dst, frame...), nil
	}

	return c.Stage.Encode(dst, frame)
}

// Decode reverses Encode.
func (c *Config) Decode(dst, data []byte) ([]byte, error) {
	if c.Stage == nil {
		return append(dst, data...), nil
	}

	return c.Stage.Decode(dst, data)
}

// WithStage sets the stage applied to outbound frames and reversed on
// inbound ones.
func WithStage(s Stage) Option {
	return options.NoError(func(c *Config) {
		c.Stage = s
	})
}

// WithByteOrder sets the byte order of record headers.
func WithByteOrder(engine endian.EndianEngine) Option {
	return options.New(func(c *Config) error {
		if engine == nil {
			return fmt.Errorf("nil byte order")
		}
		c.Engine = engine

		return nil
	})
}

// WithQueueDepth sets how many inbound frames are buffered.
func WithQueueDepth(n int) Option {
	return options.New(func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("queue depth %d must be positive", n)
		}
		c.QueueDepth = n

		return nil
	})
}

// WithMaxRecordSize bounds inbound record payloads (at most 65535 bytes).
func WithMaxRecordSize(n int) Option {
	return options.New(func(c *Config) error {
		if n < 1 || n > MaxRecordPayload {
			return fmt.Errorf("max record size %d outside [1, %d]", n, MaxRecordPayload)
		}
		c.MaxRecordSize = n

		return nil
	})
}
