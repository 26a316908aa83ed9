package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/arloliu/telem/codec"
	"github.com/arloliu/telem/field"
	"github.com/arloliu/telem/internal/options"
	"github.com/arloliu/telem/link"
)

const (
	// CycleFieldName is the readable field holding the current cycle number.
	CycleFieldName = "pan.cycle_no"
	// DefaultInterval is the default control cycle period.
	DefaultInterval = 100 * time.Millisecond
)

// Option configures a Loop.
type Option = options.Option[*Loop]

// WithInterval sets the cycle period.
func WithInterval(d time.Duration) Option {
	return options.New(func(l *Loop) error {
		if d <= 0 {
			return fmt.Errorf("cycle interval %v must be positive", d)
		}
		l.interval = d

		return nil
	})
}

// Loop is the cooperative control cycle scheduler.
type Loop struct {
	interval  time.Duration
	tasks     []Task
	runnables []link.Runnable
	cycle     uint32
	cycleNo   *field.Field
}

// NewLoop creates a loop and registers the cycle counter field in reg.
func NewLoop(reg *field.Registry, opts ...Option) (*Loop, error) {
	l := &Loop{interval: DefaultInterval}
	if err := options.Apply(l, opts...); err != nil {
		return nil, err
	}

	f, err := RegisterCycleField(reg)
	if err != nil {
		return nil, err
	}
	l.cycleNo = f

	return l, nil
}

// RegisterCycleField registers the 32-bit readable cycle counter. Ground
// registries call it so that flows carrying the counter resolve the same
// way they do on board.
func RegisterCycleField(reg *field.Registry) (*field.Field, error) {
	c, err := codec.NewUint(0, 1<<32-1, 32)
	if err != nil {
		return nil, err
	}

	f := field.NewReadable(CycleFieldName, c)
	if err := reg.RegisterReadable(f); err != nil {
		return nil, err
	}

	return f, nil
}

// Interval returns the cycle period.
func (l *Loop) Interval() time.Duration { return l.interval }

// Cycle returns the number of the last completed cycle.
func (l *Loop) Cycle() uint32 { return l.cycle }

// Add appends tasks. Tasks run in the order they were added.
func (l *Loop) Add(tasks ...Task) *Loop {
	l.tasks = append(l.tasks, tasks...)
	return l
}

// AddRunnable adds background routines started by Run.
func (l *Loop) AddRunnable(rs ...link.Runnable) *Loop {
	l.runnables = append(l.runnables, rs...)
	return l
}

// Step runs one cycle: the counter advances, then every task executes once.
// Task errors are logged and joined into the result; every task runs
// regardless.
func (l *Loop) Step() error {
	l.cycle++
	l.cycleNo.Set(codec.Uint(uint64(l.cycle)))

	var errs []error
	for _, t := range l.tasks {
		if err := t.Execute(l.cycle); err != nil {
			glog.Errorf("cycle %d: task %s: %v", l.cycle, t.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
		}
	}

	return errors.Join(errs...)
}

// Run starts the runnables and steps once per interval until ctx is done or
// a runnable fails. A runnable returning nil simply stops. Run waits for the
// runnables to exit before returning.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(l.runnables))
	for _, r := range l.runnables {
		go func(r link.Runnable) {
			errCh <- r.Run(ctx)
		}(r)
	}
	pending := len(l.runnables)

	glog.Infof("control loop started: %d tasks, %v cycle", len(l.tasks), l.interval)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	var err error
	for err == nil {
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case rerr := <-errCh:
			pending--
			if rerr != nil && !errors.Is(rerr, context.Canceled) {
				err = fmt.Errorf("runnable stopped: %w", rerr)
			}
		case <-ticker.C:
			_ = l.Step()
		}
	}

	cancel()
	for ; pending > 0; pending-- {
		<-errCh
	}
	glog.Infof("control loop stopped at cycle %d: %v", l.cycle, err)

	return err
}
