package serial

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

func TestPortOptions_ModeDefaults(t *testing.T) {
	mode, err := PortOptions{Path: "/dev/ttyUSB0"}.Mode()
	require.NoError(t, err)
	require.Equal(t, &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		StopBits: serial.OneStopBit,
		Parity:   serial.NoParity,
	}, mode)
}

func TestPortOptions_ModeParity(t *testing.T) {
	for in, want := range map[string]serial.Parity{
		"none":  serial.NoParity,
		" even": serial.EvenParity,
		"O":     serial.OddParity,
		"odd":   serial.OddParity,
	} {
		mode, err := PortOptions{Path: "p", Parity: in}.Mode()
		require.NoError(t, err, in)
		require.Equal(t, want, mode.Parity, in)
	}
}

func TestPortOptions_Mode(t *testing.T) {
	mode, err := PortOptions{Path: "p", BaudRate: 9600, DataBits: 7, StopBits: 2, Parity: "E"}.Mode()
	require.NoError(t, err)
	require.Equal(t, &serial.Mode{
		BaudRate: 9600,
		DataBits: 7,
		StopBits: serial.TwoStopBits,
		Parity:   serial.EvenParity,
	}, mode)
}

func TestPortOptions_ModeRejects(t *testing.T) {
	tests := []struct {
		opts PortOptions
		msg  string
	}{
		{PortOptions{}, "serial: no device path"},
		{PortOptions{Path: "p", DataBits: 9}, "serial p: 9 data bits"},
		{PortOptions{Path: "p", StopBits: 3}, "serial p: 3 stop bits"},
		{PortOptions{Path: "p", Parity: "mark"}, `serial p: parity "mark"`},
	}
	for _, tt := range tests {
		_, err := tt.opts.Mode()
		require.EqualError(t, err, tt.msg)
	}
}

func TestOpen_BadOptions(t *testing.T) {
	_, err := Open(PortOptions{Path: "p", DataBits: 4})
	require.EqualError(t, err, "serial p: 4 data bits")
}
