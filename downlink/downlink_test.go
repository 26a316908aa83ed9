package downlink

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/telem/codec"
	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/field"
	"github.com/arloliu/telem/link"
)

func mustUint(t testing.TB, hi uint64, width int) codec.Codec {
	t.Helper()
	c, err := codec.NewUint(0, hi, width)
	require.NoError(t, err)

	return c
}

// testRegistry builds the same layout on every call, like flight and
// ground do from one descriptor set.
func testRegistry(t testing.TB) *field.Registry {
	t.Helper()
	reg := field.NewRegistry()
	reg.MustRegisterReadable(field.NewReadable("prop.valve", mustUint(t, 7, 3)))
	reg.MustRegisterReadable(field.NewReadable("gnc.alt", mustUint(t, 0xFFFF, 16)))
	reg.MustRegisterReadable(field.NewReadable("adcs.wheel_on", codec.NewBool()))
	reg.MustRegisterInternal(field.NewInternal("adcs.mode", codec.Uint(0)))

	return reg
}

func testFlows() []FlowData {
	return []FlowData{
		{ID: 1, Period: 1, Active: true, Fields: []string{"prop.valve"}},
		{ID: 2, Period: 2, Active: true, Fields: []string{"gnc.alt", "adcs.wheel_on"}},
	}
}

func setValues(t testing.TB, reg *field.Registry) {
	t.Helper()
	for name, v := range map[string]codec.Value{
		"prop.valve":    codec.Uint(5),
		"gnc.alt":       codec.Uint(0x1234),
		"adcs.wheel_on": codec.Bool(true),
	} {
		f, ok := reg.FindReadable(name)
		require.True(t, ok)
		f.Set(v)
	}
}

func TestProducer_FrameLayout(t *testing.T) {
	reg := testRegistry(t)
	setValues(t, reg)

	p, err := NewProducer(reg, testFlows())
	require.NoError(t, err)
	require.Equal(t, 2, p.IDWidth())
	require.Equal(t, 8, p.MaxFrameSize())
	require.Equal(t, 8, p.FrameSize())

	frame := p.Assemble(1)
	require.Equal(t, []byte{0, 0, 0, 1, 0x68}, frame.Bytes)
	require.Equal(t, []int{1}, frame.FlowIDs)

	frame = p.Assemble(2)
	require.Equal(t, []byte{0, 0, 0, 2, 0x6C, 0x24, 0x69, 0x00}, frame.Bytes)
	require.Equal(t, []int{1, 2}, frame.FlowIDs)
}

func TestProducer_PeriodFive(t *testing.T) {
	reg := testRegistry(t)
	var sent []uint32
	sink := link.SinkFunc(func(frame []byte) error {
		sent = append(sent, uint32(frame[3]))
		return nil
	})

	p, err := NewProducer(reg, []FlowData{
		{ID: 1, Period: 5, Active: true, Fields: []string{"prop.valve"}},
	}, WithSink(sink))
	require.NoError(t, err)
	f := p.Flows()[0]

	for cycle := uint32(1); cycle <= 4; cycle++ {
		require.NoError(t, p.Execute(cycle))
		require.Equal(t, int(cycle), f.Counter())
	}
	require.Empty(t, sent)

	require.NoError(t, p.Execute(5))
	require.Equal(t, []uint32{5}, sent)
	require.Equal(t, 0, f.Counter())

	for cycle := uint32(6); cycle <= 15; cycle++ {
		require.NoError(t, p.Execute(cycle))
	}
	require.Equal(t, []uint32{5, 10, 15}, sent)
}

func TestProducer_InactiveFlowKeepsPhase(t *testing.T) {
	reg := testRegistry(t)
	p, err := NewProducer(reg, []FlowData{
		{ID: 1, Period: 3, Active: false, Fields: []string{"prop.valve"}},
	})
	require.NoError(t, err)

	for cycle := uint32(1); cycle <= 3; cycle++ {
		require.Empty(t, p.Assemble(cycle).FlowIDs)
	}
	require.Equal(t, 0, p.Flows()[0].Counter())
	require.Equal(t, 5, p.FrameSize())

	require.NoError(t, p.ToggleFlow(1))
	p.Assemble(4)
	p.Assemble(5)
	require.Equal(t, []int{1}, p.Assemble(6).FlowIDs)
}

func TestNewProducer_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		flows []FlowData
		want  error
	}{
		{"empty", nil, errs.ErrNoFlows},
		{"zero id", []FlowData{{ID: 0, Period: 1}}, errs.ErrInvalidFlowID},
		{"id past count", []FlowData{{ID: 1, Period: 1}, {ID: 3, Period: 1}}, errs.ErrInvalidFlowID},
		{"duplicate id", []FlowData{{ID: 1, Period: 1}, {ID: 1, Period: 1}}, errs.ErrDuplicateFlowID},
		{"zero period", []FlowData{{ID: 1, Period: 0}}, errs.ErrInvalidFlowPeriod},
		{"unknown field", []FlowData{{ID: 1, Period: 1, Fields: []string{"nope"}}}, errs.ErrFieldNotFound},
		{"internal field", []FlowData{{ID: 1, Period: 1, Fields: []string{"adcs.mode"}}}, errs.ErrFieldNotFound},
	}

	reg := testRegistry(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProducer(reg, tt.flows)
			require.ErrorIs(t, err, tt.want)

			_, err = NewParser(reg, tt.flows)
			require.ErrorIs(t, err, tt.want)
		})
	}

	_, err := NewProducer(reg, testFlows(), WithPacketCeiling(0))
	require.Error(t, err)
}

func TestNewProducer_Ceiling(t *testing.T) {
	reg := field.NewRegistry()
	names := make([]string, 0, 9)
	for i := range 8 {
		name := "wide." + string(rune('a'+i))
		reg.MustRegisterReadable(field.NewReadable(name, mustUint(t, 1<<63, 64)))
		names = append(names, name)
	}
	reg.MustRegisterReadable(field.NewReadable("tail.47", mustUint(t, 1<<47-1, 47)))
	reg.MustRegisterReadable(field.NewReadable("tail.48", mustUint(t, 1<<48-1, 48)))

	// 1 id bit + 512 + 47 = 560 bits, exactly 70 bytes
	_, err := NewProducer(reg, []FlowData{{ID: 1, Period: 1, Fields: append(names, "tail.47")}})
	require.NoError(t, err)

	_, err = NewProducer(reg, []FlowData{{ID: 1, Period: 1, Fields: append(names, "tail.48")}})
	require.ErrorIs(t, err, errs.ErrFlowTooLarge)

	_, err = NewProducer(reg, []FlowData{{ID: 1, Period: 1, Fields: append(names, "tail.48")}}, WithPacketCeiling(71))
	require.NoError(t, err)
}

func flowOrder(p *Producer) []int {
	ids := make([]int, 0, len(p.Flows()))
	for _, f := range p.Flows() {
		ids = append(ids, f.ID())
	}

	return ids
}

func TestProducer_Priorities(t *testing.T) {
	reg := testRegistry(t)
	data := []FlowData{
		{ID: 1, Period: 1, Active: true},
		{ID: 2, Period: 1, Active: true},
		{ID: 3, Period: 1, Active: true},
		{ID: 4, Period: 1, Active: true},
	}
	p, err := NewProducer(reg, data)
	require.NoError(t, err)

	require.NoError(t, p.ShiftFlowPriority(4, 2))
	require.Equal(t, []int{1, 4, 2, 3}, flowOrder(p))
	require.Equal(t, []int{1, 4, 2, 3}, p.Assemble(1).FlowIDs)

	require.NoError(t, p.ShiftFlowPriority(1, 3))
	require.Equal(t, []int{4, 2, 3, 1}, flowOrder(p))

	require.NoError(t, p.MoveFlowTo(3, 0))
	require.Equal(t, []int{3, 4, 2, 1}, flowOrder(p))

	p.ResetPriorities()
	require.Equal(t, []int{1, 2, 3, 4}, flowOrder(p))

	require.ErrorIs(t, p.ShiftFlowPriority(5, 1), errs.ErrUnknownFlowID)
	require.ErrorIs(t, p.ShiftFlowPriority(1, 0), errs.ErrUnknownFlowID)
	require.ErrorIs(t, p.MoveFlowTo(1, 4), errs.ErrUnknownFlowID)
	require.ErrorIs(t, p.ToggleFlow(9), errs.ErrUnknownFlowID)
	require.Equal(t, []int{1, 2, 3, 4}, flowOrder(p))
}

func TestProducer_ControlFields(t *testing.T) {
	reg := testRegistry(t)
	require.NoError(t, RegisterControlFields(reg, 2))

	toggle, ok := reg.FindWritable(ToggleFieldName)
	require.True(t, ok)
	require.Equal(t, 2, toggle.BitWidth())

	p, err := NewProducer(reg, testFlows())
	require.NoError(t, err)

	toggle.Set(codec.Uint(2))
	require.NoError(t, p.Execute(1))
	require.False(t, p.Flows()[1].Active())
	require.Equal(t, codec.Uint(0), toggle.Get())

	shift1, _ := reg.FindWritable(Shift1FieldName)
	shift2, _ := reg.FindWritable(Shift2FieldName)
	shift1.Set(codec.Uint(2))
	shift2.Set(codec.Uint(1))
	require.NoError(t, p.Execute(2))
	require.Equal(t, []int{2, 1}, flowOrder(p))
	require.Equal(t, codec.Uint(0), shift1.Get())

	// an out-of-range command is dropped and cleared
	toggle.Set(codec.Uint(3))
	require.NoError(t, p.Execute(3))
	require.Equal(t, codec.Uint(0), toggle.Get())
	require.False(t, p.Flows()[0].Active())
}

func TestParser_RoundTrip(t *testing.T) {
	flight := testRegistry(t)
	setValues(t, flight)
	p, err := NewProducer(flight, testFlows())
	require.NoError(t, err)

	ground := testRegistry(t)
	parser, err := NewParser(ground, testFlows())
	require.NoError(t, err)

	p.Assemble(1)
	frame := p.Assemble(2)

	tm, err := parser.Parse(frame.Bytes)
	require.NoError(t, err)
	require.Equal(t, uint32(2), tm.Cycle)
	require.Equal(t, []FlowValues{
		{ID: 1, Fields: []FieldValue{{Name: "prop.valve", Value: codec.Uint(5)}}},
		{ID: 2, Fields: []FieldValue{
			{Name: "gnc.alt", Value: codec.Uint(0x1234)},
			{Name: "adcs.wheel_on", Value: codec.Bool(true)},
		}},
	}, tm.Flows)

	alt, _ := ground.FindReadable("gnc.alt")
	require.Equal(t, codec.Uint(0x1234), alt.Get())

	// a frame with no due flows is just the header and terminator
	tm, err = parser.Parse([]byte{0, 0, 0, 9, 0})
	require.NoError(t, err)
	require.Equal(t, uint32(9), tm.Cycle)
	require.Empty(t, tm.Flows)
}

func TestParser_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
		want  error
	}{
		{"short header", []byte{0, 0, 0}, errs.ErrTruncatedFrame},
		{"no terminator", []byte{0, 0, 0, 0}, errs.ErrTruncatedFrame},
		{"truncated field", []byte{0, 0, 0, 0, 0x80}, errs.ErrTruncatedFrame},
		{"unknown id", []byte{0, 0, 0, 0, 0xC0}, errs.ErrUnknownFlowID},
		{"duplicate id", []byte{0, 0, 0, 0, 0x6B, 0x40}, errs.ErrDuplicateFlowID},
		{"non-zero padding", []byte{0, 0, 0, 0, 0x01}, errs.ErrNonZeroPadding},
		{"excess padding", []byte{0, 0, 0, 0, 0, 0}, errs.ErrExcessPadding},
	}

	ground := testRegistry(t)
	parser, err := NewParser(ground, testFlows())
	require.NoError(t, err)
	valve, _ := ground.FindReadable("prop.valve")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.frame)
			require.ErrorIs(t, err, tt.want)
			require.Equal(t, codec.Uint(0), valve.Get())
		})
	}
}

func BenchmarkProducer_Assemble(b *testing.B) {
	reg := testRegistry(b)
	setValues(b, reg)
	p, err := NewProducer(reg, testFlows())
	require.NoError(b, err)

	b.ReportAllocs()
	cycle := uint32(0)
	for b.Loop() {
		cycle++
		p.Assemble(cycle)
	}
}

func TestProducer_AssembleDoesNotAllocate(t *testing.T) {
	reg := testRegistry(t)
	setValues(t, reg)

	pos, err := codec.NewVector(6e6, 7.5e6, 48)
	require.NoError(t, err)
	att, err := codec.NewQuaternion()
	require.NoError(t, err)

	extra := map[string]struct {
		c codec.Codec
		v codec.Value
	}{
		"gnc.pos_eci": {pos, codec.Vector(codec.Vec3{4e6, 5e6, 1e6})},
		"adcs.q_body": {att, codec.Quaternion(codec.Quat{0.5, 0.5, 0.5, 0.5})},
		"piksi.time":  {codec.NewGPSTime(), codec.Time(codec.GPSTime{Week: 2200, TOW: 345_600_000, Set: true})},
	}
	for name, e := range extra {
		f := field.NewReadable(name, e.c)
		f.Set(e.v)
		reg.MustRegisterReadable(f)
	}

	flows := append(testFlows(), FlowData{
		ID: 3, Period: 1, Active: true,
		Fields: []string{"gnc.pos_eci", "adcs.q_body", "piksi.time"},
	})
	p, err := NewProducer(reg, flows)
	require.NoError(t, err)

	cycle := uint32(0)
	allocs := testing.AllocsPerRun(100, func() {
		cycle++
		p.Assemble(cycle)
	})
	require.Zero(t, allocs)
	require.Contains(t, p.Assemble(cycle+1).FlowIDs, 3)
}
