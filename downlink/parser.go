package downlink

import (
	"fmt"

	"github.com/arloliu/telem/bitstream"
	"github.com/arloliu/telem/codec"
	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/field"
)

// FieldValue is one decoded field.
type FieldValue struct {
	Name  string
	Value codec.Value
}

// FlowValues is one decoded flow.
type FlowValues struct {
	ID     int
	Fields []FieldValue
}

// Telemetry is a decoded downlink frame.
type Telemetry struct {
	Cycle uint32
	Flows []FlowValues
}

// Parser decodes downlink frames on the ground. It is built from the same
// descriptors and field layout as the flight Producer.
type Parser struct {
	byID    []*Flow
	idWidth int
}

// NewParser validates data against reg exactly as NewProducer does.
func NewParser(reg *field.Registry, data []FlowData, opts ...Option) (*Parser, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	flows, err := buildFlows(reg, data, cfg.ceiling)
	if err != nil {
		return nil, err
	}

	p := &Parser{byID: make([]*Flow, len(flows)), idWidth: IDWidth(len(flows))}
	for _, f := range flows {
		p.byID[f.id-1] = f
	}

	return p, nil
}

// Parse decodes frame. The ground fields are updated only when the whole
// frame decodes.
//
// Returns:
//   - errs.ErrTruncatedFrame if the frame ends inside the header, an id or a field
//   - errs.ErrUnknownFlowID for an id outside [1, N]
//   - errs.ErrDuplicateFlowID if a flow appears twice
//   - errs.ErrExcessPadding / errs.ErrNonZeroPadding for bad trailing bits
func (p *Parser) Parse(frame []byte) (Telemetry, error) {
	c := bitstream.NewCursor(frame)

	cycle, n := c.Read(CycleBits)
	if n < CycleBits {
		return Telemetry{}, fmt.Errorf("%w: cycle counter", errs.ErrTruncatedFrame)
	}

	t := Telemetry{Cycle: cycle}
	seen := make([]bool, len(p.byID))
	for {
		id, n := c.Read(p.idWidth)
		if n < p.idWidth {
			return Telemetry{}, fmt.Errorf("%w: flow id at bit %d", errs.ErrTruncatedFrame, c.Pos()-n)
		}
		if id == 0 {
			break
		}
		if int(id) > len(p.byID) {
			return Telemetry{}, fmt.Errorf("%w: %d", errs.ErrUnknownFlowID, id)
		}
		if seen[id-1] {
			return Telemetry{}, fmt.Errorf("%w: %d", errs.ErrDuplicateFlowID, id)
		}
		seen[id-1] = true

		f := p.byID[id-1]
		fv := FlowValues{ID: f.id, Fields: make([]FieldValue, 0, len(f.fields))}
		for _, fld := range f.fields {
			fc := fld.Codec()
			if got := fc.Bits().Load(&c); got < fc.BitWidth() {
				return Telemetry{}, fmt.Errorf("%w: field %q of flow %d", errs.ErrTruncatedFrame, fld.Name(), id)
			}
			fv.Fields = append(fv.Fields, FieldValue{Name: fld.Name(), Value: fc.Decode()})
		}
		t.Flows = append(t.Flows, fv)
	}

	if err := checkPadding(&c); err != nil {
		return Telemetry{}, err
	}

	for _, fv := range t.Flows {
		for i, v := range fv.Fields {
			p.byID[fv.ID-1].fields[i].Set(v.Value)
		}
	}

	return t, nil
}

// checkPadding accepts 0-7 trailing zero bits.
func checkPadding(c *bitstream.Cursor) error {
	rest := c.Remaining()
	if rest > 7 {
		return fmt.Errorf("%w: %d trailing bits", errs.ErrExcessPadding, rest)
	}
	if v, _ := c.Read(rest); v != 0 {
		return errs.ErrNonZeroPadding
	}

	return nil
}
