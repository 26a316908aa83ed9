package uplink

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/telem/bitstream"
	"github.com/arloliu/telem/codec"
	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/field"
	"github.com/arloliu/telem/format"
)

// QuatNormTolerance is how far a commanded quaternion's norm may stray
// from 1.
const QuatNormTolerance = 1e-6

// Producer builds uplink packets on the ground. The registry must have the
// same writable layout as the flight registry.
type Producer struct {
	reg     *field.Registry
	fields  []*field.Field
	width   int
	maxSize int
	pending map[int]codec.Value // writable position → value
}

// NewProducer creates a packet builder over the writable fields of reg.
func NewProducer(reg *field.Registry, opts ...Option) (*Producer, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	fields := append([]*field.Field(nil), reg.Writable()...)

	return &Producer{
		reg:     reg,
		fields:  fields,
		width:   IndexWidth(len(fields)),
		maxSize: cfg.maxSize,
		pending: make(map[int]codec.Value),
	}, nil
}

// Set queues v for the writable field called name. Setting a field twice
// replaces the earlier value, so a packet never repeats an index.
//
// Values the flight codec would clamp are refused rather than sent
// saturated.
//
// Returns:
//   - errs.ErrFieldNotWritable if name is not a writable field
//   - errs.ErrValueOutOfRange if v lies outside the codec range, a vector
//     magnitude is out of range or a quaternion is not unit norm
//   - errs.ErrPacketTooLarge if the packet would exceed the size limit
func (p *Producer) Set(name string, v codec.Value) error {
	pos, ok := p.reg.WritableIndex(name)
	if !ok || pos >= len(p.fields) {
		return fmt.Errorf("%w: %q", errs.ErrFieldNotWritable, name)
	}

	if err := checkRange(p.fields[pos].Codec(), v); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	prev, had := p.pending[pos]
	p.pending[pos] = v.As(p.fields[pos].Kind())
	if size := p.Size(); size > p.maxSize {
		if had {
			p.pending[pos] = prev
		} else {
			delete(p.pending, pos)
		}

		return fmt.Errorf("%w: %d > %d bytes", errs.ErrPacketTooLarge, size, p.maxSize)
	}

	return nil
}

// SetString parses text as the kind of field name and queues it.
func (p *Producer) SetString(name, text string) error {
	f, ok := p.reg.FindWritable(name)
	if !ok {
		return fmt.Errorf("%w: %q", errs.ErrFieldNotWritable, name)
	}

	v, err := codec.ParseValue(f.Kind(), text)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	return p.Set(name, v)
}

// Pending returns the queued entries in index order.
func (p *Producer) Pending() []PendingEntry {
	out := make([]PendingEntry, 0, len(p.pending))
	for _, pos := range p.positions() {
		out = append(out, PendingEntry{Index: pos + 1, Name: p.fields[pos].Name(), Value: p.pending[pos]})
	}

	return out
}

// PendingEntry is a queued field assignment.
type PendingEntry struct {
	Index int
	Name  string
	Value codec.Value
}

// Size returns the encoded size of the queued packet in bytes.
func (p *Producer) Size() int {
	n := p.width
	for pos := range p.pending {
		n += p.width + p.fields[pos].BitWidth()
	}

	return (n + 7) / 8
}

// Bytes encodes the queued entries in index order. An empty queue encodes
// as a lone terminator.
func (p *Producer) Bytes() ([]byte, error) {
	if size := p.Size(); size > p.maxSize {
		return nil, fmt.Errorf("%w: %d > %d bytes", errs.ErrPacketTooLarge, size, p.maxSize)
	}

	buf := make([]byte, p.Size())
	cur := bitstream.NewCursor(buf)
	for _, pos := range p.positions() {
		f := p.fields[pos]
		cur.Write(p.width, uint32(pos+1)) //nolint: gosec
		f.Codec().Encode(p.pending[pos])
		f.Codec().Bits().Emit(&cur)
	}
	cur.Write(p.width, 0)

	return buf, nil
}

// Reset drops every queued entry.
func (p *Producer) Reset() {
	clear(p.pending)
}

func (p *Producer) positions() []int {
	pos := make([]int, 0, len(p.pending))
	for i := range p.pending {
		pos = append(pos, i)
	}
	slices.Sort(pos)

	return pos
}

// checkRange reports whether c can carry v without clamping.
func checkRange(c codec.Codec, v codec.Value) error {
	inside := func(x, lo, hi float64) bool { return !math.IsNaN(x) && x >= lo && x <= hi }

	switch c.Kind() {
	case format.KindUint, format.KindInt, format.KindFloat, format.KindDouble:
		b, ok := c.(codec.Bounded)
		if !ok {
			return nil
		}
		if x := v.Float(); !inside(x, b.Min(), b.Max()) {
			return fmt.Errorf("%w: %v not in [%v, %v]", errs.ErrValueOutOfRange, x, b.Min(), b.Max())
		}
	case format.KindVector:
		vc, ok := c.(*codec.VectorCodec)
		if !ok {
			return nil
		}
		vec := v.As(format.KindVector).Vector()
		if vc.Mode() == format.VectorComponent {
			for _, x := range vec {
				if !inside(x, vc.Min(), vc.Max()) {
					return fmt.Errorf("%w: component %v not in [%v, %v]", errs.ErrValueOutOfRange, x, vc.Min(), vc.Max())
				}
			}

			return nil
		}
		if mag := math.Sqrt(vec[0]*vec[0] + vec[1]*vec[1] + vec[2]*vec[2]); !inside(mag, vc.Min(), vc.Max()) {
			return fmt.Errorf("%w: magnitude %v not in [%v, %v]", errs.ErrValueOutOfRange, mag, vc.Min(), vc.Max())
		}
	case format.KindQuaternion:
		q := v.As(format.KindQuaternion).Quaternion()
		norm := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
		if math.IsNaN(norm) || math.Abs(norm-1) > QuatNormTolerance {
			return fmt.Errorf("%w: quaternion norm %v", errs.ErrValueOutOfRange, norm)
		}
	case format.KindBool, format.KindGPSTime:
	}

	return nil
}
