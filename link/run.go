package link

import (
	"context"
	"io"
)

// RunWithCloser runs fn, which blocks on I/O and ignores ctx. When ctx is
// canceled closer is closed to unblock fn and context.Canceled is returned.
// closer is closed when fn returns in either case.
func RunWithCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()

	select {
	case <-ctx.Done():
		_ = closer.Close()
		<-errCh

		return context.Canceled
	case err := <-errCh:
		_ = closer.Close()

		return err
	}
}
