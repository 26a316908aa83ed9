// Package downlink multiplexes readable fields into downlink frames.
//
// Fields are grouped into flows. Every flow has an id in [1, N], a period in
// control cycles and an ordered field list. Each cycle the Producer ticks
// every flow in priority order and serializes the ones that are due:
//
//	+-------------+---------+-------------+---------+-----+------+-----+
//	| cycle (32)  | id (w)  | field bits  | id (w)  | ... | 0(w) | pad |
//	+-------------+---------+-------------+---------+-----+------+-----+
//
// where w = bits.Len(N). Id 0 terminates the frame, which is then zero
// padded to a byte boundary. The Parser reverses this on the ground.
package downlink

import (
	"fmt"
	"math/bits"

	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/field"
)

const (
	// DefaultPacketCeiling is the largest encoded flow, in bytes.
	DefaultPacketCeiling = 70
	// CycleBits is the width of the cycle counter heading every frame.
	CycleBits = 32
)

// FlowData is the static descriptor a flow is built from.
type FlowData struct {
	ID     int
	Period int
	Active bool
	Fields []string
}

// Flow is a scheduled group of readable fields.
type Flow struct {
	id      int
	period  int
	active  bool
	fields  []*field.Field
	size    int // id width plus field widths
	counter int
}

// ID returns the flow id.
func (f *Flow) ID() int { return f.id }

// Period returns the recurrence period in cycles.
func (f *Flow) Period() int { return f.period }

// Active reports whether the flow is emitted when due.
func (f *Flow) Active() bool { return f.active }

// Fields returns the member fields in declaration order.
func (f *Flow) Fields() []*field.Field { return f.fields }

// BitSize returns the encoded size of the flow including its id.
func (f *Flow) BitSize() int { return f.size }

// Counter returns the cycles elapsed since the flow was last due.
func (f *Flow) Counter() int { return f.counter }

// tick advances the recurrence counter and reports whether the flow is due.
// Inactive flows keep counting so that re-enabling one does not shift its
// phase.
func (f *Flow) tick() bool {
	f.counter++
	if f.counter < f.period {
		return false
	}
	f.counter = 0

	return true
}

// IDWidth returns the number of bits used for flow ids when there are n
// flows.
func IDWidth(n int) int {
	return bits.Len(uint(n)) //nolint: gosec
}

// buildFlows resolves descriptors against reg. Flows are returned in
// descriptor order, which is the initial priority order.
func buildFlows(reg *field.Registry, data []FlowData, ceiling int) ([]*Flow, error) {
	if len(data) == 0 {
		return nil, errs.ErrNoFlows
	}

	n := len(data)
	idWidth := IDWidth(n)
	seen := make([]bool, n+1)
	flows := make([]*Flow, 0, n)

	for _, d := range data {
		if d.ID < 1 || d.ID > n {
			return nil, fmt.Errorf("%w: %d not in [1, %d]", errs.ErrInvalidFlowID, d.ID, n)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("%w: %d", errs.ErrDuplicateFlowID, d.ID)
		}
		seen[d.ID] = true

		if d.Period < 1 {
			return nil, fmt.Errorf("%w: flow %d has period %d", errs.ErrInvalidFlowPeriod, d.ID, d.Period)
		}

		f := &Flow{id: d.ID, period: d.Period, active: d.Active, size: idWidth}
		for _, name := range d.Fields {
			fld, ok := reg.FindReadable(name)
			if !ok {
				return nil, fmt.Errorf("%w: flow %d references %q", errs.ErrFieldNotFound, d.ID, name)
			}
			f.fields = append(f.fields, fld)
			f.size += fld.BitWidth()
		}

		if f.size > ceiling*8 {
			return nil, fmt.Errorf("%w: flow %d is %d bits, ceiling is %d bits",
				errs.ErrFlowTooLarge, d.ID, f.size, ceiling*8)
		}
		flows = append(flows, f)
	}

	return flows, nil
}

// frameBytes returns the byte size of a frame holding the given flow bits.
func frameBytes(flowBits, idWidth int) int {
	return (CycleBits + flowBits + idWidth + 7) / 8
}
