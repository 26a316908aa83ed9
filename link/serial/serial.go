// Package serial carries link records over a serial port.
package serial

import (
	"errors"
	"fmt"
	"strings"

	"go.bug.st/serial"

	"github.com/arloliu/telem/link"
)

// PortOptions describes a serial connection.
type PortOptions struct {
	Path     string `yaml:"path"`
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	StopBits int    `yaml:"stop_bits"`
	Parity   string `yaml:"parity"`
}

const defaultBaud = 115200

var (
	stopBits = map[int]serial.StopBits{0: serial.OneStopBit, 1: serial.OneStopBit, 2: serial.TwoStopBits}
	parities = map[string]serial.Parity{
		"": serial.NoParity, "N": serial.NoParity, "NONE": serial.NoParity,
		"E": serial.EvenParity, "EVEN": serial.EvenParity,
		"O": serial.OddParity, "ODD": serial.OddParity,
	}
)

// Mode converts the options into the mode go.bug.st/serial opens ports
// with. Zero values select 115200 baud, 8 data bits, 1 stop bit and no
// parity.
func (o PortOptions) Mode() (*serial.Mode, error) {
	if strings.TrimSpace(o.Path) == "" {
		return nil, errors.New("serial: no device path")
	}

	mode := &serial.Mode{BaudRate: o.BaudRate, DataBits: o.DataBits}
	if mode.BaudRate <= 0 {
		mode.BaudRate = defaultBaud
	}
	if mode.DataBits == 0 {
		mode.DataBits = 8
	}
	if mode.DataBits < 5 || mode.DataBits > 8 {
		return nil, fmt.Errorf("serial %s: %d data bits", o.Path, o.DataBits)
	}

	var ok bool
	if mode.StopBits, ok = stopBits[o.StopBits]; !ok {
		return nil, fmt.Errorf("serial %s: %d stop bits", o.Path, o.StopBits)
	}
	if mode.Parity, ok = parities[strings.ToUpper(strings.TrimSpace(o.Parity))]; !ok {
		return nil, fmt.Errorf("serial %s: parity %q", o.Path, o.Parity)
	}

	return mode, nil
}

// Open opens the port described by o.
func Open(o PortOptions) (serial.Port, error) {
	mode, err := o.Mode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(o.Path, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", o.Path, err)
	}

	return port, nil
}

// Dial opens the port and returns a record sink and source sharing it.
// The source must be run for inbound frames to arrive; it closes the port
// when its Run returns.
func Dial(o PortOptions, opts ...link.Option) (*link.StreamSink, *link.StreamSource, error) {
	port, err := Open(o)
	if err != nil {
		return nil, nil, err
	}

	sink, err := link.NewStreamSink(port, opts...)
	if err != nil {
		_ = port.Close()
		return nil, nil, err
	}

	src, err := link.NewStreamSource(port, opts...)
	if err != nil {
		_ = port.Close()
		return nil, nil, err
	}

	return sink, src, nil
}
