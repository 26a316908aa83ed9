// Package field holds named telemetry and command values and the registry
// that control tasks share to find them.
//
// A Field carries an explicit capability:
//
//	Internal  never transmitted, no codec
//	Readable  has a codec and may appear in a downlink flow
//	Writable  readable, and may also be set by an uplink packet
//
// Structure is fixed at boot: every task registers its fields during setup,
// the registry is sealed, and from then on only field values change.
package field

import (
	"github.com/arloliu/telem/codec"
	"github.com/arloliu/telem/format"
)

// Field is a named value with an access capability and, unless internal,
// the codec used to transmit it.
type Field struct {
	name       string
	capability format.Capability
	codec      codec.Codec
	value      codec.Value
}

// NewInternal creates a field that is never transmitted.
func NewInternal(name string, initial codec.Value) *Field {
	return &Field{name: name, capability: format.Internal, value: initial}
}

// NewReadable creates a field that may be placed in downlink flows.
// Its initial value is the zero value of the codec kind.
func NewReadable(name string, c codec.Codec) *Field {
	return newCoded(name, format.Readable, c)
}

// NewWritable creates a field that may be placed in downlink flows and set
// by uplink packets.
func NewWritable(name string, c codec.Codec) *Field {
	return newCoded(name, format.Writable, c)
}

func newCoded(name string, capability format.Capability, c codec.Codec) *Field {
	f := &Field{name: name, capability: capability, codec: c}
	if c != nil {
		f.value = codec.Zero(c.Kind())
	}

	return f
}

func (f *Field) Name() string                  { return f.name }
func (f *Field) Capability() format.Capability { return f.capability }
func (f *Field) Codec() codec.Codec            { return f.codec }

// Kind returns the kind of the value the field holds.
func (f *Field) Kind() format.ValueKind {
	if f.codec != nil {
		return f.codec.Kind()
	}

	return f.value.Kind()
}

// BitWidth returns the encoded width, 0 for internal fields.
func (f *Field) BitWidth() int {
	if f.codec == nil {
		return 0
	}

	return f.codec.BitWidth()
}

// Get returns the current value.
func (f *Field) Get() codec.Value {
	return f.value
}

// Set stores v, converted to the field kind.
func (f *Field) Set(v codec.Value) {
	if k := f.Kind(); k != 0 {
		v = v.As(k)
	}
	f.value = v
}

// Serialize encodes the current value into the codec scratch and returns it.
// It returns nil for internal fields.
func (f *Field) Serialize() *codec.Bits {
	if f.codec == nil {
		return nil
	}
	f.codec.Encode(f.value)

	return f.codec.Bits()
}

// Deserialize decodes the codec scratch into the current value.
func (f *Field) Deserialize() {
	if f.codec == nil {
		return
	}
	f.value = f.codec.Decode()
}
