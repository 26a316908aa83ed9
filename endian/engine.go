// Package endian selects the byte order of multi-byte link record headers.
//
// Bit-packed frames have no byte order of their own; only the record
// framing around them (length prefixes, compression tags) needs one.
// Records default to network order:
//
//	engine := endian.GetBigEndianEngine()
//	hdr = engine.AppendUint16(hdr, uint16(len(payload)))
package endian

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
// binary.LittleEndian and binary.BigEndian satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Parse maps a configuration name to an engine. An empty name selects big
// endian.
func Parse(name string) (EndianEngine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "big", "network":
		return binary.BigEndian, nil
	case "little":
		return binary.LittleEndian, nil
	default:
		return nil, fmt.Errorf("unknown byte order %q", name)
	}
}

// Name returns the configuration name of engine.
func Name(engine EndianEngine) string {
	if engine == EndianEngine(binary.LittleEndian) {
		return "little"
	}

	return "big"
}
