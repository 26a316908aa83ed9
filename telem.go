// Package telem boots a spacecraft telemetry and command stack from a boot
// configuration.
//
// The flight side compresses registry fields into periodic downlink frames
// and applies validated uplink command packets. The ground side parses those
// frames and builds command packets against the same field layout.
//
// # Basic Usage
//
// Booting a flight computer:
//
//	cfg, _ := telem.LoadConfig("fc.yaml")
//	lnk, _ := telem.OpenLink(cfg.Link, telem.RoleFlight, os.Stdin, os.Stdout)
//	fc, _ := telem.BootFlight(cfg, lnk, func(reg *field.Registry) ([]control.Task, error) {
//	    return []control.Task{newSensorTask(reg)}, nil
//	})
//	_ = fc.Loop.Run(ctx)
//
// Booting a ground station:
//
//	gs, _ := telem.BootGround(cfg)
//	tm, _ := gs.Parser.Parse(frame)
//	_ = gs.Commands.SetString("adcs.gain", "0.2")
//	packet, _ := gs.Commands.Bytes()
//
// # Package Structure
//
// This package only wires the building blocks together. The codec, field,
// downlink, uplink, control and link packages can be used directly for
// custom layouts.
package telem

import (
	"fmt"
	"io"

	"github.com/golang/glog"

	"github.com/arloliu/telem/config"
	"github.com/arloliu/telem/control"
	"github.com/arloliu/telem/downlink"
	"github.com/arloliu/telem/endian"
	"github.com/arloliu/telem/field"
	"github.com/arloliu/telem/format"
	"github.com/arloliu/telem/link"
	"github.com/arloliu/telem/link/mqtt"
	"github.com/arloliu/telem/link/serial"
	"github.com/arloliu/telem/uplink"
)

// LoadConfig loads, validates and normalizes the boot configuration.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	config.Normalize(cfg)

	return cfg, nil
}

// Role selects the direction of a link end.
type Role int

const (
	// RoleFlight sends downlink frames and receives uplink packets.
	RoleFlight Role = iota
	// RoleGround sends uplink packets and receives downlink frames.
	RoleGround
)

// Link bundles the two directions of a transport with the routines that
// must run beside the control loop.
type Link struct {
	Sink      link.Sink
	Source    link.Source
	Runnables []link.Runnable
}

// LinkOptions converts the link configuration into transport options.
func LinkOptions(lc config.LinkConfig) ([]link.Option, error) {
	var opts []link.Option

	ct, ok := format.ParseCompressionType(lc.Compression)
	if !ok {
		return nil, fmt.Errorf("unknown compression %q", lc.Compression)
	}
	if ct != format.CompressionNone {
		stage, err := link.NewCompressStage(ct)
		if err != nil {
			return nil, err
		}
		opts = append(opts, link.WithStage(stage))
	}

	engine, err := endian.Parse(lc.ByteOrder)
	if err != nil {
		return nil, err
	}
	opts = append(opts, link.WithByteOrder(engine))

	if lc.QueueDepth > 0 {
		opts = append(opts, link.WithQueueDepth(lc.QueueDepth))
	}

	return opts, nil
}

// OpenLink opens the configured transport. The stdout transport writes
// records to out and reads records from in.
func OpenLink(lc config.LinkConfig, role Role, in io.ReadCloser, out io.Writer) (Link, error) {
	opts, err := LinkOptions(lc)
	if err != nil {
		return Link{}, err
	}

	switch lc.Transport {
	case config.TransportNone, "":
		return Link{}, nil
	case config.TransportStdout:
		sink, err := link.NewStreamSink(out, opts...)
		if err != nil {
			return Link{}, err
		}
		src, err := link.NewStreamSource(in, opts...)
		if err != nil {
			return Link{}, err
		}

		return Link{Sink: sink, Source: src, Runnables: []link.Runnable{src}}, nil
	case config.TransportSerial:
		sink, src, err := serial.Dial(lc.Serial, opts...)
		if err != nil {
			return Link{}, err
		}

		return Link{Sink: sink, Source: src, Runnables: []link.Runnable{src}}, nil
	case config.TransportMQTT:
		pub, sub := lc.MQTT.DownTopic, lc.MQTT.UpTopic
		if role == RoleGround {
			pub, sub = sub, pub
		}
		tr, err := mqtt.Dial(lc.MQTT.Broker, pub, sub, opts...)
		if err != nil {
			return Link{}, err
		}

		return Link{Sink: tr, Source: tr, Runnables: []link.Runnable{tr}}, nil
	default:
		return Link{}, fmt.Errorf("unknown transport %q", lc.Transport)
	}
}

// TaskSetup creates the mission tasks of a flight computer. It runs before
// the registry is sealed, so it may register internal fields of its own.
type TaskSetup func(reg *field.Registry) ([]control.Task, error)

// Flight is a booted flight computer.
type Flight struct {
	Registry *field.Registry
	Loop     *control.Loop
	Downlink *downlink.Producer
	Uplink   *uplink.Consumer
}

// BootFlight builds the registry, the codec tasks and the control loop.
//
// Each cycle runs the uplink consumer first, then the mission tasks, then
// the downlink producer, so that commands are visible to the mission tasks
// in the cycle they arrive and the frame carries the values of that cycle.
func BootFlight(cfg *config.Config, lnk Link, setup TaskSetup) (*Flight, error) {
	reg, err := config.BuildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	loop, err := control.NewLoop(reg, control.WithInterval(cfg.Interval()))
	if err != nil {
		return nil, err
	}

	var tasks []control.Task
	if setup != nil {
		if tasks, err = setup(reg); err != nil {
			return nil, fmt.Errorf("task setup: %w", err)
		}
	}

	down, err := downlink.NewProducer(reg, cfg.FlowData(),
		downlink.WithPacketCeiling(cfg.PacketCeilingBytes),
		downlink.WithSink(lnk.Sink),
	)
	if err != nil {
		return nil, err
	}

	up, err := uplink.NewConsumer(reg, uplink.WithSource(lnk.Source))
	if err != nil {
		return nil, err
	}

	reg.Seal()
	loop.Add(up).Add(tasks...).Add(down)
	loop.AddRunnable(lnk.Runnables...)

	glog.Infof("flight boot: %d readable, %d writable fields, %d flows, max frame %d bytes, layout %016x",
		len(reg.Readable()), len(reg.Writable()), len(down.Flows()), down.MaxFrameSize(), reg.Fingerprint())

	return &Flight{Registry: reg, Loop: loop, Downlink: down, Uplink: up}, nil
}

// Ground is a booted ground station.
type Ground struct {
	Registry *field.Registry
	Parser   *downlink.Parser
	Commands *uplink.Producer
}

// BootGround builds the ground mirror of the flight registry.
func BootGround(cfg *config.Config) (*Ground, error) {
	reg, err := config.BuildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := control.RegisterCycleField(reg); err != nil {
		return nil, err
	}

	parser, err := downlink.NewParser(reg, cfg.FlowData(), downlink.WithPacketCeiling(cfg.PacketCeilingBytes))
	if err != nil {
		return nil, err
	}

	cmds, err := uplink.NewProducer(reg, uplink.WithMaxPacketSize(cfg.MaxUplinkBytes))
	if err != nil {
		return nil, err
	}
	reg.Seal()

	return &Ground{Registry: reg, Parser: parser, Commands: cmds}, nil
}
