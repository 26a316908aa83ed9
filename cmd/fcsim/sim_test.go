package main

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/telem"
	"github.com/arloliu/telem/codec"
)

func TestSimulator_DrivesSensorFields(t *testing.T) {
	cfg, err := telem.LoadConfig(filepath.Join("..", "..", "config", "testdata", "fc.yaml"))
	require.NoError(t, err)

	var sim *simulator
	fc, err := telem.BootFlight(cfg, telem.Link{}, nil)
	require.NoError(t, err)
	sim = newSimulator(fc.Registry, 50)

	names := make([]string, 0, len(sim.fields))
	for _, f := range sim.fields {
		names = append(names, f.Name())
	}
	require.Equal(t, []string{"gnc.pos_eci", "adcs.q_body", "prop.tank_p", "piksi.time"}, names)

	require.NoError(t, sim.Execute(100))

	tank, _ := fc.Registry.FindReadable("prop.tank_p")
	p := tank.Get().Float()
	require.GreaterOrEqual(t, p, 0.0)
	require.LessOrEqual(t, p, 300.0)

	att, _ := fc.Registry.FindReadable("adcs.q_body")
	q := att.Get().Quaternion()
	require.InDelta(t, 1.0, math.Sqrt(q[0]*q[0]+q[1]*q[1]+q[2]*q[2]+q[3]*q[3]), 1e-2)

	clk, _ := fc.Registry.FindReadable("piksi.time")
	require.Equal(t, codec.GPSTime{Week: 2300, TOW: 5000, Set: true}, clk.Get().GPSTime())
}

func TestSimulator_ClockRollsOverWeek(t *testing.T) {
	s := &simulator{stepMs: 1000, start: codec.GPSTime{Week: 10, TOW: codec.MillisPerWeek - 500, Set: true}}

	got := s.clock(1)
	require.Equal(t, codec.GPSTime{Week: 11, TOW: 500, Set: true}, got)
}
