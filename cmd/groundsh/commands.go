package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/arloliu/telem/codec"
	"github.com/arloliu/telem/downlink"
	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/field"
	"github.com/arloliu/telem/format"
	"github.com/arloliu/telem/link"
)

var commands = []*ishell.Cmd{
	&FieldsCmd,
	&SetCmd,
	&PacketCmd,
	&ClearCmd,
	&ParseCmd,
	&ReplayCmd,
	&EmitCmd,
	&FingerprintCmd,
}

// FieldsCmd lists the mirrored fields.
var FieldsCmd = ishell.Cmd{
	Name:    "fields",
	Aliases: []string{"ls"},
	Help:    "list fields: fields [writable]",
	Func: func(c *ishell.Context) {
		reg := stationFrom(c).gs.Registry
		list := reg.Readable()
		if len(c.Args) > 0 && c.Args[0] == "writable" {
			list = reg.Writable()
		}
		for _, f := range list {
			c.Println(fieldLine(f))
		}
	},
}

// fieldLine formats one row of the fields listing. Quantized fields also
// show their range and resolution.
func fieldLine(f *field.Field) string {
	access := "r"
	if f.Capability() == format.Writable {
		access = "rw"
	}

	bounds := ""
	if b, ok := f.Codec().(codec.Bounded); ok {
		bounds = fmt.Sprintf("  [%g, %g] step %g", b.Min(), b.Max(), b.Step())
	}

	return fmt.Sprintf("%-24s %-2s %-10s %3d bits%s  %s", f.Name(), access, f.Kind(), f.BitWidth(), bounds, f.Get())
}

// SetCmd queues a command value.
var SetCmd = ishell.Cmd{
	Name: "set",
	Help: "queue a command: set <field> <value>",
	Func: func(c *ishell.Context) {
		if len(c.Args) < 2 {
			c.Err(errors.New("usage: set <field> <value>"))
			return
		}
		cmds := stationFrom(c).gs.Commands
		if err := cmds.SetString(c.Args[0], strings.Join(c.Args[1:], " ")); err != nil {
			c.Err(err)
			return
		}
		c.Printf("queued, packet is %d bytes\n", cmds.Size())
	},
}

// PacketCmd prints the queued packet.
var PacketCmd = ishell.Cmd{
	Name: "packet",
	Help: "show the queued command packet",
	Func: func(c *ishell.Context) {
		cmds := stationFrom(c).gs.Commands
		for _, e := range cmds.Pending() {
			c.Printf("  #%d %s = %s\n", e.Index, e.Name, e.Value)
		}
		b, err := cmds.Bytes()
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(hex.EncodeToString(b))
	},
}

// ClearCmd drops the queued commands.
var ClearCmd = ishell.Cmd{
	Name: "clear",
	Help: "drop queued commands",
	Func: func(c *ishell.Context) {
		stationFrom(c).gs.Commands.Reset()
		c.Println("OK")
	},
}

// ParseCmd decodes one hex encoded downlink frame.
var ParseCmd = ishell.Cmd{
	Name: "parse",
	Help: "decode a downlink frame: parse <hex>",
	Func: func(c *ishell.Context) {
		if len(c.Args) == 0 {
			c.Err(errors.New("usage: parse <hex>"))
			return
		}
		frame, err := hex.DecodeString(strings.Join(c.Args, ""))
		if err != nil {
			c.Err(err)
			return
		}
		tm, err := stationFrom(c).gs.Parser.Parse(frame)
		if err != nil {
			c.Err(err)
			return
		}
		printTelemetry(c, tm)
	},
}

// ReplayCmd decodes every downlink record of a capture file.
var ReplayCmd = ishell.Cmd{
	Name: "replay",
	Help: "decode a recorded downlink stream: replay <file>",
	Func: func(c *ishell.Context) {
		if len(c.Args) != 1 {
			c.Err(errors.New("usage: replay <file>"))
			return
		}
		st := stationFrom(c)
		f, err := os.Open(c.Args[0])
		if err != nil {
			c.Err(err)
			return
		}
		defer f.Close()

		rr := link.NewRecordReader(f, st.link.Engine, st.link.MaxRecordSize)
		var rec, frame []byte
		var frames, bad int
		for {
			rec, err = rr.Next(rec[:0])
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, errs.ErrRecordTooLarge) {
				bad++
				continue
			}
			if err != nil {
				c.Err(err)
				break
			}
			if frame, err = st.link.Decode(frame[:0], rec); err != nil {
				bad++
				continue
			}
			tm, err := st.gs.Parser.Parse(frame)
			if err != nil {
				c.Printf("record %d: %v\n", frames+bad, err)
				bad++
				continue
			}
			frames++
			printTelemetry(c, tm)
		}
		c.Printf("%d frames, %d rejected\n", frames, bad)
	},
}

// EmitCmd appends the queued packet as a link record to a file or fifo and
// clears the queue.
var EmitCmd = ishell.Cmd{
	Name: "emit",
	Help: "send the queued packet: emit <file>",
	Func: func(c *ishell.Context) {
		if len(c.Args) != 1 {
			c.Err(errors.New("usage: emit <file>"))
			return
		}
		st := stationFrom(c)
		packet, err := st.gs.Commands.Bytes()
		if err != nil {
			c.Err(err)
			return
		}
		payload, err := st.link.Encode(nil, packet)
		if err != nil {
			c.Err(err)
			return
		}
		rec, err := link.AppendRecord(nil, payload, st.link.Engine)
		if err != nil {
			c.Err(err)
			return
		}

		f, err := os.OpenFile(c.Args[0], os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
		if err != nil {
			c.Err(err)
			return
		}
		defer f.Close()
		if _, err := f.Write(rec); err != nil {
			c.Err(err)
			return
		}
		st.gs.Commands.Reset()
		c.Printf("sent %d byte packet\n", len(packet))
	},
}

// FingerprintCmd prints the field layout fingerprint.
var FingerprintCmd = ishell.Cmd{
	Name: "fingerprint",
	Help: "print the field layout fingerprint",
	Func: func(c *ishell.Context) {
		c.Println(fmt.Sprintf("%016x", stationFrom(c).gs.Registry.Fingerprint()))
	},
}

func printTelemetry(c *ishell.Context, tm downlink.Telemetry) {
	c.Printf("cycle %d\n", tm.Cycle)
	for _, fl := range tm.Flows {
		c.Printf("  flow %d\n", fl.ID)
		for _, v := range fl.Fields {
			c.Printf("    %-24s %s\n", v.Name, v.Value)
		}
	}
}
