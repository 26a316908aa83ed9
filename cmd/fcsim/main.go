// Command fcsim runs a simulated flight computer.
//
// Downlink frames are written to stdout and uplink packets are read from
// stdin when the configured transport is "stdout". Logs go to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"

	"github.com/arloliu/telem"
	"github.com/arloliu/telem/control"
	"github.com/arloliu/telem/field"
)

var (
	configPath = flag.String("config", "fc.yaml", "Boot configuration file.")
	cycles     = flag.Uint("cycles", 0, "Stop after this many cycles, 0 runs until interrupted.")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	if err := run(); err != nil {
		glog.Errorf("fcsim: %v", err)
		glog.Flush()
		os.Exit(1)
	}
}

func run() error {
	cfg, err := telem.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	lnk, err := telem.OpenLink(cfg.Link, telem.RoleFlight, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fc, err := telem.BootFlight(cfg, lnk, func(reg *field.Registry) ([]control.Task, error) {
		tasks := []control.Task{newSimulator(reg, uint32(cfg.CyclePeriodMs))} //nolint: gosec
		if *cycles > 0 {
			limit := uint32(*cycles) //nolint: gosec
			tasks = append(tasks, control.Func("limit", func(cycle uint32) error {
				if cycle >= limit {
					stop()
				}

				return nil
			}))
		}

		return tasks, nil
	})
	if err != nil {
		return err
	}

	err = fc.Loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
