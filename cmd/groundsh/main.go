// Command groundsh is an interactive ground station shell.
//
// It mirrors the flight field layout from the boot configuration, parses
// downlink frames and builds uplink command packets.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/arloliu/telem"
	"github.com/arloliu/telem/config"
	"github.com/arloliu/telem/link"
)

var (
	configPath = flag.String("config", "fc.yaml", "Boot configuration file.")
	evalOnly   = flag.Bool("e", false, "Run the command given as arguments and exit.")
)

const stationKey = "$station"

// station is the state shared by shell commands.
type station struct {
	cfg  *config.Config
	gs   *telem.Ground
	link *link.Config
}

func stationFrom(c *ishell.Context) *station {
	return c.Get(stationKey).(*station)
}

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg, err := telem.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	st, err := newStation(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sh := ishell.New()
	sh.Set(stationKey, st)
	sh.SetPrompt(fmt.Sprintf("[%016x] > ", st.gs.Registry.Fingerprint()))
	for _, cmd := range commands {
		sh.AddCmd(cmd)
	}

	if *evalOnly {
		if err := sh.Process(flag.Args()...); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		return
	}

	sh.Run()
}

func newStation(cfg *config.Config) (*station, error) {
	gs, err := telem.BootGround(cfg)
	if err != nil {
		return nil, err
	}

	opts, err := telem.LinkOptions(cfg.Link)
	if err != nil {
		return nil, err
	}
	lc, err := link.NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &station{cfg: cfg, gs: gs, link: lc}, nil
}
