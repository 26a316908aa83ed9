// Package options implements the functional option pattern shared by the
// codec, downlink, uplink and link constructors.
//
// Each package declares its own option alias over a private config struct,
// for example:
//
//	type ProducerOption = options.Option[*producerConfig]
//
//	func WithPacketCeiling(bytes int) ProducerOption {
//	    return options.New(func(c *producerConfig) error { ... })
//	}
package options

// Option configures a target of type T during construction.
type Option[T any] interface {
	apply(T) error
}

type funcOption[T any] func(T) error

func (f funcOption[T]) apply(target T) error {
	return f(target)
}

// New wraps a setter that may reject its argument.
func New[T any](fn func(T) error) Option[T] {
	return funcOption[T](fn)
}

// NoError wraps a setter that cannot fail.
func NoError[T any](fn func(T)) Option[T] {
	return funcOption[T](func(target T) error {
		fn(target)
		return nil
	})
}

// Apply applies opts to target in order and stops at the first error.
// Nil options are skipped so callers can build option lists conditionally.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
