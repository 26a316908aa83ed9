package downlink

import (
	"fmt"

	"github.com/arloliu/telem/internal/options"
	"github.com/arloliu/telem/link"
)

// Option configures a Producer or Parser.
type Option = options.Option[*config]

type config struct {
	ceiling int
	sink    link.Sink
}

func newConfig(opts ...Option) (*config, error) {
	cfg := &config{ceiling: DefaultPacketCeiling}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithPacketCeiling sets the largest encoded flow size in bytes.
func WithPacketCeiling(bytes int) Option {
	return options.New(func(c *config) error {
		if bytes < 1 {
			return fmt.Errorf("packet ceiling %d must be positive", bytes)
		}
		c.ceiling = bytes

		return nil
	})
}

// WithSink sets where Execute sends assembled frames. The parser ignores it.
func WithSink(s link.Sink) Option {
	return options.NoError(func(c *config) {
		c.sink = s
	})
}
