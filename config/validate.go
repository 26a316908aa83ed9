package config

import (
	"fmt"
	"strings"

	"github.com/arloliu/telem/control"
	"github.com/arloliu/telem/downlink"
	"github.com/arloliu/telem/endian"
	"github.com/arloliu/telem/format"
)

// Validate checks the configuration declaratively. It does not mutate cfg.
// Codec geometry is checked when the registry is built.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.CyclePeriodMs < 0 {
		return fmt.Errorf("cycle_period_ms %d is negative", cfg.CyclePeriodMs)
	}
	if cfg.PacketCeilingBytes < 0 {
		return fmt.Errorf("packet_ceiling_bytes %d is negative", cfg.PacketCeilingBytes)
	}
	if cfg.MaxUplinkBytes < 0 {
		return fmt.Errorf("max_uplink_bytes %d is negative", cfg.MaxUplinkBytes)
	}

	// ---- FIELDS ----

	if len(cfg.Fields) == 0 {
		return fmt.Errorf("no fields defined")
	}

	// name -> downlinkable
	names := map[string]bool{control.CycleFieldName: true}
	if cfg.FlowControl {
		for _, n := range []string{downlink.ToggleFieldName, downlink.Shift1FieldName, downlink.Shift2FieldName} {
			names[n] = true
		}
	}
	for i, f := range cfg.Fields {
		if f.Name == "" {
			return fmt.Errorf("field #%d: empty name", i)
		}
		if _, dup := names[f.Name]; dup {
			return fmt.Errorf("field %q: defined twice", f.Name)
		}

		if _, ok := format.ParseValueKind(f.Kind); !ok {
			return fmt.Errorf("field %q: unknown kind %q", f.Name, f.Kind)
		}

		access, ok := format.ParseCapability(accessOrDefault(f.Access))
		if !ok {
			return fmt.Errorf("field %q: unknown access %q", f.Name, f.Access)
		}
		if _, ok := format.ParseVectorMode(f.Mode); !ok {
			return fmt.Errorf("field %q: unknown vector mode %q", f.Name, f.Mode)
		}

		names[f.Name] = access != format.Internal
	}

	// ---- FLOWS ----

	if len(cfg.Flows) == 0 {
		return fmt.Errorf("no flows defined")
	}

	ids := make(map[int]bool, len(cfg.Flows))
	for _, fl := range cfg.Flows {
		if fl.ID < 1 || fl.ID > len(cfg.Flows) {
			return fmt.Errorf("flow %d: id must be in [1, %d]", fl.ID, len(cfg.Flows))
		}
		if ids[fl.ID] {
			return fmt.Errorf("flow %d: defined twice", fl.ID)
		}
		ids[fl.ID] = true

		if fl.Period < 0 {
			return fmt.Errorf("flow %d: period %d is negative", fl.ID, fl.Period)
		}

		for _, name := range fl.Fields {
			downlinkable, known := names[name]
			if !known {
				return fmt.Errorf("flow %d: unknown field %q", fl.ID, name)
			}
			if !downlinkable {
				return fmt.Errorf("flow %d: field %q is internal", fl.ID, name)
			}
		}
	}

	// ---- LINK ----

	switch strings.ToLower(transportOrDefault(cfg.Link.Transport)) {
	case TransportNone, TransportStdout, TransportSerial:
	case TransportMQTT:
		if cfg.Link.MQTT.Broker == "" {
			return fmt.Errorf("link: mqtt transport needs a broker")
		}
	default:
		return fmt.Errorf("link: unknown transport %q", cfg.Link.Transport)
	}
	if _, ok := format.ParseCompressionType(cfg.Link.Compression); !ok {
		return fmt.Errorf("link: unknown compression %q", cfg.Link.Compression)
	}
	if _, err := endian.Parse(cfg.Link.ByteOrder); err != nil {
		return fmt.Errorf("link: %w", err)
	}
	if cfg.Link.QueueDepth < 0 {
		return fmt.Errorf("link: queue_depth %d is negative", cfg.Link.QueueDepth)
	}

	return nil
}

func accessOrDefault(s string) string {
	if s == "" {
		return "readable"
	}

	return s
}

func transportOrDefault(s string) string {
	if s == "" {
		return TransportNone
	}

	return s
}
