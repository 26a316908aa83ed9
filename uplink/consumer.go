// Package uplink validates and applies command packets addressed to writable
// fields, and builds them on the ground.
//
// A packet is a run of (index, value) entries terminated by index 0:
//
//	+---------+-------------+---------+-----+------+---------+
//	| idx (w) | field bits  | idx (w) | ... | 0(w) | pad 0-7 |
//	+---------+-------------+---------+-----+------+---------+
//
// Index i addresses the writable field at registration position i-1, and
// w = bits.Len(number of writable fields). Field bits use the width of the
// addressed field's codec. The padding must be zero.
package uplink

import (
	"fmt"
	"math/bits"

	"github.com/golang/glog"

	"github.com/arloliu/telem/bitstream"
	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/field"
	"github.com/arloliu/telem/link"
)

// IndexWidth returns the number of bits used for field indices when there
// are n writable fields.
func IndexWidth(n int) int {
	return bits.Len(uint(n)) //nolint: gosec
}

// Stats counts packets seen by a Consumer.
type Stats struct {
	Accepted uint64
	Rejected uint64
	Empty    uint64
}

// Consumer applies uplink packets on the flight side.
//
// A packet is validated completely before any field is written, so a packet
// is either applied in full or not at all. A Consumer is driven from the
// control loop and is not safe for concurrent use.
type Consumer struct {
	fields   []*field.Field
	width    int
	consumed []bool
	source   link.Source
	stats    Stats
}

// NewConsumer snapshots the writable fields of reg. Fields registered later
// are not addressable, so reg should be complete (ideally sealed).
func NewConsumer(reg *field.Registry, opts ...Option) (*Consumer, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	fields := append([]*field.Field(nil), reg.Writable()...)

	return &Consumer{
		fields:   fields,
		width:    IndexWidth(len(fields)),
		consumed: make([]bool, len(fields)),
		source:   cfg.source,
	}, nil
}

// Name implements control.Task.
func (c *Consumer) Name() string { return "uplink" }

// IndexWidth returns the index width in bits.
func (c *Consumer) IndexWidth() int { return c.width }

// Stats returns the packet counters.
func (c *Consumer) Stats() Stats { return c.stats }

// Validate checks buf without touching any field.
//
// Returns:
//   - errs.ErrTruncatedPacket if an index or field body runs past the end
//   - errs.ErrUnknownFieldIndex for an index above the writable count
//   - errs.ErrDuplicateFieldIndex if an index appears twice
//   - errs.ErrExcessPadding if more than 7 bits follow the terminator
//   - errs.ErrNonZeroPadding if the padding bits are not zero
func (c *Consumer) Validate(buf []byte) error {
	clear(c.consumed)
	cur := bitstream.NewCursor(buf)

	for {
		idx, n := cur.Read(c.width)
		if n < c.width {
			return fmt.Errorf("%w: index at bit %d", errs.ErrTruncatedPacket, cur.Pos()-n)
		}
		if idx == 0 {
			break
		}
		if int(idx) > len(c.fields) {
			return fmt.Errorf("%w: %d", errs.ErrUnknownFieldIndex, idx)
		}
		if c.consumed[idx-1] {
			return fmt.Errorf("%w: %d", errs.ErrDuplicateFieldIndex, idx)
		}
		c.consumed[idx-1] = true

		f := c.fields[idx-1]
		if !cur.Seek(f.BitWidth(), bitstream.End) {
			return fmt.Errorf("%w: field %q", errs.ErrTruncatedPacket, f.Name())
		}
	}

	rest := cur.Remaining()
	if rest > 7 {
		return fmt.Errorf("%w: %d trailing bits", errs.ErrExcessPadding, rest)
	}
	if v, _ := cur.Read(rest); v != 0 {
		return errs.ErrNonZeroPadding
	}

	return nil
}

// Apply writes every entry of buf into its field. buf must have passed
// Validate.
func (c *Consumer) Apply(buf []byte) {
	cur := bitstream.NewCursor(buf)
	for {
		idx, n := cur.Read(c.width)
		if n < c.width || idx == 0 || int(idx) > len(c.fields) {
			return
		}

		f := c.fields[idx-1]
		f.Codec().Bits().Load(&cur)
		f.Deserialize()
	}
}

// Consume validates then applies buf. An empty buffer means no complete
// packet has arrived and is not an error.
func (c *Consumer) Consume(buf []byte) error {
	if len(buf) == 0 {
		c.stats.Empty++
		return nil
	}

	if err := c.Validate(buf); err != nil {
		c.stats.Rejected++
		return err
	}
	c.Apply(buf)
	c.stats.Accepted++

	return nil
}

// Execute polls the source for one packet and consumes it. A rejected
// packet is logged and dropped; only a source failure is returned.
func (c *Consumer) Execute(cycle uint32) error {
	if c.source == nil {
		return nil
	}

	buf, err := c.source.Receive()
	if err != nil {
		return fmt.Errorf("uplink receive: %w", err)
	}

	if err := c.Consume(buf); err != nil {
		glog.Warningf("uplink: cycle %d: rejected %d byte packet: %v", cycle, len(buf), err)
	} else if len(buf) > 0 {
		glog.V(1).Infof("uplink: cycle %d: applied %d byte packet", cycle, len(buf))
	}

	return nil
}
