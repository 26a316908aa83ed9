// Package config reads the boot descriptors of a flight or ground station:
// fields, flows and the link.
//
// The pipeline is Load, then Validate, then Normalize. Flight and ground
// build their registries from the same file so that flow ids and uplink
// indices agree.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/telem/link/serial"
)

type Config struct {
	CyclePeriodMs      int  `yaml:"cycle_period_ms"`
	PacketCeilingBytes int  `yaml:"packet_ceiling_bytes"`
	MaxUplinkBytes     int  `yaml:"max_uplink_bytes"`
	FlowControl        bool `yaml:"flow_control"`

	Fields []FieldConfig `yaml:"fields"`
	Flows  []FlowConfig  `yaml:"flows"`
	Link   LinkConfig    `yaml:"link"`
}

// ---- FIELDS ----

type FieldConfig struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Access string `yaml:"access"` // internal, readable or writable

	// codec geometry; ignored for internal fields
	Min           float64 `yaml:"min"`
	Max           float64 `yaml:"max"`
	Width         int     `yaml:"width"`
	Mode          string  `yaml:"mode"`
	ComponentBits int     `yaml:"component_bits"`

	Initial string `yaml:"initial"` // value text, see codec.ParseValue
}

// ---- FLOWS ----

type FlowConfig struct {
	ID     int      `yaml:"id"`
	Period int      `yaml:"period"`
	Active *bool    `yaml:"active"` // default true
	Fields []string `yaml:"fields"`
}

// ---- LINK ----

const (
	TransportNone   = "none"
	TransportStdout = "stdout"
	TransportSerial = "serial"
	TransportMQTT   = "mqtt"
)

type LinkConfig struct {
	Transport   string `yaml:"transport"`
	Compression string `yaml:"compression"`
	ByteOrder   string `yaml:"byte_order"`
	QueueDepth  int    `yaml:"queue_depth"`

	Serial serial.PortOptions `yaml:"serial"`
	MQTT   MQTTConfig         `yaml:"mqtt"`
}

type MQTTConfig struct {
	Broker    string `yaml:"broker"`
	DownTopic string `yaml:"down_topic"`
	UpTopic   string `yaml:"up_topic"`
}

// Load reads and decodes the file at path. It does not validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes YAML. Unknown keys are rejected so that typos in a flight
// configuration are not silently ignored.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &cfg, nil
}
