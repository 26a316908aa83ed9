package main

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/arloliu/telem/codec"
	"github.com/arloliu/telem/control"
	"github.com/arloliu/telem/field"
	"github.com/arloliu/telem/format"
)

// simulator drives every non-commandable readable field with synthetic
// sensor data so that downlink frames change from cycle to cycle.
type simulator struct {
	fields []*field.Field
	stepMs uint32
	spin   r3.Vec
	start  codec.GPSTime
}

func newSimulator(reg *field.Registry, stepMs uint32) *simulator {
	s := &simulator{
		stepMs: stepMs,
		spin:   r3.Unit(r3.Vec{X: 0.2, Y: 0.1, Z: 1}),
		start:  codec.GPSTime{Week: 2300, Set: true},
	}
	for _, f := range reg.Readable() {
		if f.Capability() == format.Writable || strings.HasPrefix(f.Name(), "downlink.") {
			continue
		}
		if f.Name() == control.CycleFieldName {
			continue
		}
		s.fields = append(s.fields, f)
	}

	return s
}

func (s *simulator) Name() string { return "sim" }

func (s *simulator) Execute(cycle uint32) error {
	t := float64(cycle) * float64(s.stepMs) / 1000
	for i, f := range s.fields {
		phase := float64(i) * 0.7
		switch f.Kind() {
		case format.KindBool:
			f.Set(codec.Bool((cycle/10+uint32(i))%2 == 1)) //nolint: gosec
		case format.KindVector:
			f.Set(codec.Vector(s.vector(f, t+phase)))
		case format.KindQuaternion:
			f.Set(codec.Quaternion(s.attitude(t + phase)))
		case format.KindGPSTime:
			f.Set(codec.Time(s.clock(cycle)))
		default:
			f.Set(codec.Double(sweep(f.Codec(), t+phase)))
		}
	}

	return nil
}

// sweep returns a sinusoid spanning the codec range.
func sweep(c codec.Codec, t float64) float64 {
	lo, hi := 0.0, 1.0
	if b, ok := c.(codec.Bounded); ok {
		lo, hi = b.Min(), b.Max()
	}
	mid, amp := (lo+hi)/2, (hi-lo)/2

	return mid + amp*math.Sin(t/10)
}

// vector rotates a fixed direction about the spin axis. Its length sits
// mid-range for magnitude codecs and at half the bound for component codecs.
func (s *simulator) vector(f *field.Field, t float64) codec.Vec3 {
	scale := 1.0
	if b, ok := f.Codec().(codec.Bounded); ok {
		if b.Min() >= 0 {
			scale = (b.Min() + b.Max()) / 2
		} else {
			scale = max(-b.Min(), b.Max()) / 2
		}
	}
	v := r3.NewRotation(t/20, s.spin).Rotate(r3.Vec{X: scale})

	return codec.Vec3{v.X, v.Y, v.Z}
}

// attitude is a steady spin about the spin axis.
func (s *simulator) attitude(t float64) codec.Quat {
	q := r3.NewRotation(t/20, s.spin)

	return codec.Quat{q.Imag, q.Jmag, q.Kmag, q.Real}
}

func (s *simulator) clock(cycle uint32) codec.GPSTime {
	ms := uint64(s.start.TOW) + uint64(cycle)*uint64(s.stepMs)
	g := s.start
	g.Week += uint16(ms / codec.MillisPerWeek) //nolint: gosec
	g.TOW = uint32(ms % codec.MillisPerWeek)   //nolint: gosec

	return g
}
