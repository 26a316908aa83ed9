package config

import (
	"fmt"
	"time"

	"github.com/arloliu/telem/codec"
	"github.com/arloliu/telem/downlink"
	"github.com/arloliu/telem/field"
	"github.com/arloliu/telem/format"
)

// Interval returns the control cycle period.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.CyclePeriodMs) * time.Millisecond
}

// FlowData returns the flow descriptors in declaration order.
func (c *Config) FlowData() []downlink.FlowData {
	out := make([]downlink.FlowData, 0, len(c.Flows))
	for _, fl := range c.Flows {
		out = append(out, downlink.FlowData{
			ID:     fl.ID,
			Period: fl.Period,
			Active: fl.Active == nil || *fl.Active,
			Fields: fl.Fields,
		})
	}

	return out
}

// Descriptor returns the codec descriptor of f.
func (f FieldConfig) Descriptor() (codec.Descriptor, error) {
	kind, ok := format.ParseValueKind(f.Kind)
	if !ok {
		return codec.Descriptor{}, fmt.Errorf("field %q: unknown kind %q", f.Name, f.Kind)
	}

	d := codec.Descriptor{
		Kind:          kind,
		Min:           f.Min,
		Max:           f.Max,
		Width:         f.Width,
		ComponentBits: f.ComponentBits,
	}
	if kind == format.KindVector {
		mode, ok := format.ParseVectorMode(f.Mode)
		if !ok {
			return codec.Descriptor{}, fmt.Errorf("field %q: unknown vector mode %q", f.Name, f.Mode)
		}
		d.Mode = mode
	}

	return d, nil
}

// BuildField creates the field described by f, with its initial value.
func (f FieldConfig) BuildField() (*field.Field, error) {
	access, ok := format.ParseCapability(accessOrDefault(f.Access))
	if !ok {
		return nil, fmt.Errorf("field %q: unknown access %q", f.Name, f.Access)
	}

	d, err := f.Descriptor()
	if err != nil {
		return nil, err
	}

	var fld *field.Field
	switch access {
	case format.Internal:
		fld = field.NewInternal(f.Name, codec.Zero(d.Kind))
	case format.Readable, format.Writable:
		c, err := codec.New(d)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		if access == format.Writable {
			fld = field.NewWritable(f.Name, c)
		} else {
			fld = field.NewReadable(f.Name, c)
		}
	}

	if f.Initial != "" {
		v, err := codec.ParseValue(d.Kind, f.Initial)
		if err != nil {
			return nil, fmt.Errorf("field %q: initial value: %w", f.Name, err)
		}
		fld.Set(v)
	}

	return fld, nil
}

// BuildRegistry registers every configured field in declaration order,
// then the flow command fields when flow_control is set. The registry is
// left unsealed so that the caller can add the cycle counter and its own
// task fields.
func BuildRegistry(cfg *Config) (*field.Registry, error) {
	reg := field.NewRegistry()
	for _, fc := range cfg.Fields {
		f, err := fc.BuildField()
		if err != nil {
			return nil, err
		}

		switch f.Capability() {
		case format.Internal:
			err = reg.RegisterInternal(f)
		case format.Readable:
			err = reg.RegisterReadable(f)
		case format.Writable:
			err = reg.RegisterWritable(f)
		}
		if err != nil {
			return nil, err
		}
	}

	if cfg.FlowControl {
		if err := downlink.RegisterControlFields(reg, len(cfg.Flows)); err != nil {
			return nil, err
		}
	}

	return reg, nil
}
