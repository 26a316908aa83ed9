package uplink

import (
	"fmt"

	"github.com/arloliu/telem/internal/options"
	"github.com/arloliu/telem/link"
)

// DefaultMaxPacketSize bounds ground-built packets, in bytes.
const DefaultMaxPacketSize = 70

// Option configures a Consumer or Producer.
type Option = options.Option[*config]

type config struct {
	source  link.Source
	maxSize int
}

func newConfig(opts ...Option) (*config, error) {
	cfg := &config{maxSize: DefaultMaxPacketSize}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithSource sets where the consumer polls packets from each cycle.
func WithSource(s link.Source) Option {
	return options.NoError(func(c *config) {
		c.source = s
	})
}

// WithMaxPacketSize bounds the packets a ground Producer builds.
func WithMaxPacketSize(bytes int) Option {
	return options.New(func(c *config) error {
		if bytes < 1 {
			return fmt.Errorf("max packet size %d must be positive", bytes)
		}
		c.maxSize = bytes

		return nil
	})
}
