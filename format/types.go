package format

import "strings"

type (
	ValueKind       uint8
	Capability      uint8
	CompressionType uint8
	VectorMode      uint8
)

const (
	KindUint       ValueKind = 0x1 // KindUint represents an unsigned integer.
	KindInt        ValueKind = 0x2 // KindInt represents a signed integer.
	KindFloat      ValueKind = 0x3 // KindFloat represents a single precision float.
	KindDouble     ValueKind = 0x4 // KindDouble represents a double precision float.
	KindBool       ValueKind = 0x5 // KindBool represents a boolean.
	KindVector     ValueKind = 0x6 // KindVector represents a 3-vector.
	KindQuaternion ValueKind = 0x7 // KindQuaternion represents an attitude quaternion.
	KindGPSTime    ValueKind = 0x8 // KindGPSTime represents a GPS week/time-of-week pair.

	Internal Capability = 0x1 // Internal fields are never transmitted.
	Readable Capability = 0x2 // Readable fields may appear in a downlink flow.
	Writable Capability = 0x3 // Writable fields are readable and may be set via uplink.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.

	VectorPolar     VectorMode = 0x1 // VectorPolar stores magnitude plus direction.
	VectorComponent VectorMode = 0x2 // VectorComponent quantizes each component.
)

func (k ValueKind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBool:
		return "bool"
	case KindVector:
		return "vector"
	case KindQuaternion:
		return "quaternion"
	case KindGPSTime:
		return "gpstime"
	default:
		return "unknown"
	}
}

// ParseValueKind maps a kind name as written in descriptors to a ValueKind.
// The second result is false for unknown names.
func ParseValueKind(s string) (ValueKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uint", "unsigned":
		return KindUint, true
	case "int", "signed":
		return KindInt, true
	case "float":
		return KindFloat, true
	case "double":
		return KindDouble, true
	case "bool":
		return KindBool, true
	case "vector", "vec":
		return KindVector, true
	case "quaternion", "quat":
		return KindQuaternion, true
	case "gpstime", "gps_time":
		return KindGPSTime, true
	default:
		return 0, false
	}
}

func (c Capability) String() string {
	switch c {
	case Internal:
		return "internal"
	case Readable:
		return "readable"
	case Writable:
		return "writable"
	default:
		return "unknown"
	}
}

// ParseCapability maps an access name to a Capability.
func ParseCapability(s string) (Capability, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "internal":
		return Internal, true
	case "readable", "read":
		return Readable, true
	case "writable", "write":
		return Writable, true
	default:
		return 0, false
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompressionType maps a compression name to a CompressionType.
// An empty name selects CompressionNone.
func ParseCompressionType(s string) (CompressionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}

func (m VectorMode) String() string {
	switch m {
	case VectorPolar:
		return "polar"
	case VectorComponent:
		return "component"
	default:
		return "unknown"
	}
}

// ParseVectorMode maps a vector mode name to a VectorMode.
// An empty name selects VectorPolar.
func ParseVectorMode(s string) (VectorMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "polar":
		return VectorPolar, true
	case "component":
		return VectorComponent, true
	default:
		return 0, false
	}
}
