package codec

import (
	"fmt"

	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/format"
	"github.com/arloliu/telem/internal/options"
)

// DefaultComponentBits is the width of each quantized unit-direction or
// quaternion component when no WithComponentBits option is given.
const DefaultComponentBits = 9

// Option configures vector and quaternion codecs.
type Option = options.Option[*config]

type config struct {
	mode          format.VectorMode
	componentBits int
}

func defaultConfig() *config {
	return &config{mode: format.VectorPolar, componentBits: DefaultComponentBits}
}

// WithMode selects how a vector codec splits its width. It has no effect on
// quaternion codecs.
func WithMode(mode format.VectorMode) Option {
	return options.New(func(c *config) error {
		switch mode {
		case format.VectorPolar, format.VectorComponent:
			c.mode = mode
			return nil
		default:
			return fmt.Errorf("%w: vector mode %d", errs.ErrUnsupportedKind, mode)
		}
	})
}

// WithComponentBits sets the width of each quantized unit component
// (1-32 bits) for polar vectors and quaternions.
func WithComponentBits(n int) Option {
	return options.New(func(c *config) error {
		if n < 1 || n > 32 {
			return fmt.Errorf("%w: component bits %d outside [1, 32]", errs.ErrInvalidBitWidth, n)
		}
		c.componentBits = n

		return nil
	})
}
