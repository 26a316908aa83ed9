package downlink

import (
	"fmt"
	"slices"

	"github.com/golang/glog"

	"github.com/arloliu/telem/bitstream"
	"github.com/arloliu/telem/codec"
	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/field"
	"github.com/arloliu/telem/link"
)

// Frame is one assembled downlink frame.
//
// Bytes and FlowIDs alias producer memory and are only valid until the next
// Assemble call.
type Frame struct {
	Cycle   uint32
	Bytes   []byte
	FlowIDs []int
}

// Producer assembles downlink frames on the flight side.
//
// A Producer is driven from the control loop and is not safe for concurrent
// use.
type Producer struct {
	flows   []*Flow // priority order
	byID    []*Flow // index id-1
	idWidth int
	ceiling int
	sink    link.Sink
	control *controlFields

	buf     []byte
	emitted []int
}

// NewProducer builds the flows described by data against the readable
// fields of reg. Descriptor order is the initial priority order.
//
// If reg holds the flow command fields (see RegisterControlFields), Execute
// applies the commands they carry after each frame.
//
// Returns:
//   - errs.ErrNoFlows if data is empty
//   - errs.ErrInvalidFlowID / errs.ErrDuplicateFlowID for ids outside [1, N] or repeated
//   - errs.ErrInvalidFlowPeriod for a period below 1
//   - errs.ErrFieldNotFound if a member is not a readable field
//   - errs.ErrFlowTooLarge if a flow exceeds the packet ceiling
func NewProducer(reg *field.Registry, data []FlowData, opts ...Option) (*Producer, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	flows, err := buildFlows(reg, data, cfg.ceiling)
	if err != nil {
		return nil, err
	}

	p := &Producer{
		flows:   flows,
		byID:    make([]*Flow, len(flows)),
		idWidth: IDWidth(len(flows)),
		ceiling: cfg.ceiling,
		sink:    cfg.sink,
		control: findControlFields(reg),
		emitted: make([]int, 0, len(flows)),
	}
	for _, f := range flows {
		p.byID[f.id-1] = f
	}
	p.buf = make([]byte, p.MaxFrameSize())

	return p, nil
}

// Name implements control.Task.
func (p *Producer) Name() string { return "downlink" }

// IDWidth returns the flow id width in bits.
func (p *Producer) IDWidth() int { return p.idWidth }

// Flows returns the flows in current priority order. The slice must not be
// modified.
func (p *Producer) Flows() []*Flow { return p.flows }

// MaxFrameSize returns the size in bytes of a frame in which every flow is
// due and active.
func (p *Producer) MaxFrameSize() int {
	n := 0
	for _, f := range p.flows {
		n += f.size
	}

	return frameBytes(n, p.idWidth)
}

// FrameSize returns the size in bytes of a frame in which every active flow
// is due.
func (p *Producer) FrameSize() int {
	n := 0
	for _, f := range p.flows {
		if f.active {
			n += f.size
		}
	}

	return frameBytes(n, p.idWidth)
}

// Assemble ticks every flow and serializes the due, active ones into a
// frame headed by cycle. Assemble does not allocate.
func (p *Producer) Assemble(cycle uint32) Frame {
	clear(p.buf)
	p.emitted = p.emitted[:0]

	c := bitstream.NewCursor(p.buf)
	c.Write(CycleBits, cycle)

	for _, f := range p.flows {
		if !f.tick() || !f.active {
			continue
		}

		c.Write(p.idWidth, uint32(f.id)) //nolint: gosec
		for _, fld := range f.fields {
			fld.Serialize().Emit(&c)
		}
		p.emitted = append(p.emitted, f.id)
	}

	c.Write(p.idWidth, 0)
	c.PadToByte()

	return Frame{Cycle: cycle, Bytes: p.buf[:c.ByteOffset()], FlowIDs: p.emitted}
}

// Execute assembles the frame for cycle, sends it when at least one flow was
// emitted, then applies pending flow commands.
func (p *Producer) Execute(cycle uint32) error {
	frame := p.Assemble(cycle)

	var err error
	if p.sink != nil && len(frame.FlowIDs) > 0 {
		if glog.V(2) {
			glog.Infof("downlink: cycle %d flows %v, %d bytes", cycle, frame.FlowIDs, len(frame.Bytes))
		}
		if err = p.sink.Send(frame.Bytes); err != nil {
			err = fmt.Errorf("downlink send: %w", err)
		}
	}

	p.applyCommands()

	return err
}

func (p *Producer) applyCommands() {
	if p.control == nil {
		return
	}

	id1, id2 := p.control.shift1.Get().Uint(), p.control.shift2.Get().Uint()
	if id1 > 0 && id2 > 0 {
		if err := p.ShiftFlowPriority(int(id1), int(id2)); err != nil { //nolint: gosec
			glog.Warningf("downlink: shift command: %v", err)
		}
		p.control.shift1.Set(codec.Uint(0))
		p.control.shift2.Set(codec.Uint(0))
	}

	if id := p.control.toggle.Get().Uint(); id > 0 {
		if err := p.ToggleFlow(int(id)); err != nil { //nolint: gosec
			glog.Warningf("downlink: toggle command: %v", err)
		}
		p.control.toggle.Set(codec.Uint(0))
	}
}

func (p *Producer) position(id int) (int, error) {
	if id < 1 || id > len(p.byID) {
		return -1, fmt.Errorf("%w: %d", errs.ErrUnknownFlowID, id)
	}

	return slices.Index(p.flows, p.byID[id-1]), nil
}

// ToggleFlow flips whether flow id is emitted when due.
func (p *Producer) ToggleFlow(id int) error {
	if _, err := p.position(id); err != nil {
		return err
	}
	f := p.byID[id-1]
	f.active = !f.active

	return nil
}

// ShiftFlowPriority moves flow id1 to the position currently held by flow
// id2. The flows in between shift by one towards the vacated position.
func (p *Producer) ShiftFlowPriority(id1, id2 int) error {
	to, err := p.position(id2)
	if err != nil {
		return err
	}

	return p.MoveFlowTo(id1, to)
}

// MoveFlowTo moves flow id to priority position pos, where 0 is emitted
// first.
func (p *Producer) MoveFlowTo(id, pos int) error {
	from, err := p.position(id)
	if err != nil {
		return err
	}
	if pos < 0 || pos >= len(p.flows) {
		return fmt.Errorf("%w: position %d outside [0, %d)", errs.ErrUnknownFlowID, pos, len(p.flows))
	}

	f := p.flows[from]
	p.flows = slices.Delete(p.flows, from, from+1)
	p.flows = slices.Insert(p.flows, pos, f)

	return nil
}

// ResetPriorities restores ascending id order.
func (p *Producer) ResetPriorities() {
	copy(p.flows, p.byID)
}
