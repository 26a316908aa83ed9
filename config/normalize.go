package config

import (
	"strings"

	"github.com/arloliu/telem/downlink"
	"github.com/arloliu/telem/uplink"
)

// Defaults applied by Normalize.
const (
	DefaultCyclePeriodMs = 100
	DefaultFlowPeriod    = 1
)

// Normalize fills in defaults. It must be called after Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.CyclePeriodMs == 0 {
		cfg.CyclePeriodMs = DefaultCyclePeriodMs
	}
	if cfg.PacketCeilingBytes == 0 {
		cfg.PacketCeilingBytes = downlink.DefaultPacketCeiling
	}
	if cfg.MaxUplinkBytes == 0 {
		cfg.MaxUplinkBytes = uplink.DefaultMaxPacketSize
	}

	for i := range cfg.Fields {
		f := &cfg.Fields[i]
		f.Access = strings.ToLower(accessOrDefault(f.Access))
		f.Kind = strings.ToLower(strings.TrimSpace(f.Kind))
	}

	for i := range cfg.Flows {
		fl := &cfg.Flows[i]
		if fl.Period == 0 {
			fl.Period = DefaultFlowPeriod
		}
		if fl.Active == nil {
			active := true
			fl.Active = &active
		}
	}

	cfg.Link.Transport = strings.ToLower(transportOrDefault(cfg.Link.Transport))
	if cfg.Link.Compression == "" {
		cfg.Link.Compression = "none"
	}
	if cfg.Link.ByteOrder == "" {
		cfg.Link.ByteOrder = "big"
	}
}
