package field

import (
	"fmt"

	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/format"
	"github.com/arloliu/telem/internal/collision"
	"github.com/arloliu/telem/internal/hash"
)

type collection struct {
	index  *collision.Index
	fields []*Field
}

func newCollection() collection {
	return collection{index: collision.NewIndex()}
}

func (c *collection) add(f *Field) error {
	if _, err := c.index.Add(f.name); err != nil {
		return fmt.Errorf("%w: %q", err, f.name)
	}
	c.fields = append(c.fields, f)

	return nil
}

func (c *collection) find(name string) (*Field, bool) {
	pos, ok := c.index.Lookup(name)
	if !ok {
		return nil, false
	}

	return c.fields[pos], true
}

// Registry is the single lookup table from field names to fields.
//
// It keeps three ordered collections. A writable field is always present in
// both the readable and the writable collection. Names are unique within a
// collection; the same name may be used once as internal and once as
// readable.
//
// Registration is meant for boot only and is not safe for concurrent use.
// After Seal the structure is frozen and the registry may be shared freely
// by tasks running on the control loop.
type Registry struct {
	internal collection
	readable collection
	writable collection
	sealed   bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		internal: newCollection(),
		readable: newCollection(),
		writable: newCollection(),
	}
}

// RegisterInternal adds an internal field.
func (r *Registry) RegisterInternal(f *Field) error {
	if err := r.check(f, format.Internal); err != nil {
		return err
	}

	return r.internal.add(f)
}

// RegisterReadable adds a readable field. Writable fields are accepted too,
// which makes them downlinkable without being commandable.
func (r *Registry) RegisterReadable(f *Field) error {
	if err := r.check(f, format.Readable); err != nil {
		return err
	}

	return r.readable.add(f)
}

// RegisterWritable adds a writable field to the writable collection and to
// the readable collection. If either collection already holds the name,
// neither is modified.
func (r *Registry) RegisterWritable(f *Field) error {
	if err := r.check(f, format.Writable); err != nil {
		return err
	}

	if r.writable.index.Contains(f.name) || r.readable.index.Contains(f.name) {
		return fmt.Errorf("%w: %q", errs.ErrFieldAlreadyRegistered, f.name)
	}

	if err := r.readable.add(f); err != nil {
		return err
	}

	return r.writable.add(f)
}

// MustRegisterInternal is like RegisterInternal but panics on error.
// It is meant for boot code where a collision is fatal.
func (r *Registry) MustRegisterInternal(f *Field) {
	if err := r.RegisterInternal(f); err != nil {
		panic(err)
	}
}

// MustRegisterReadable is like RegisterReadable but panics on error.
func (r *Registry) MustRegisterReadable(f *Field) {
	if err := r.RegisterReadable(f); err != nil {
		panic(err)
	}
}

// MustRegisterWritable is like RegisterWritable but panics on error.
func (r *Registry) MustRegisterWritable(f *Field) {
	if err := r.RegisterWritable(f); err != nil {
		panic(err)
	}
}

func (r *Registry) check(f *Field, want format.Capability) error {
	if r.sealed {
		return errs.ErrRegistrySealed
	}

	if f == nil || f.name == "" {
		return errs.ErrInvalidFieldName
	}

	var ok bool
	switch want {
	case format.Internal:
		ok = f.capability == format.Internal
	case format.Readable:
		ok = (f.capability == format.Readable || f.capability == format.Writable) && f.codec != nil
	case format.Writable:
		ok = f.capability == format.Writable && f.codec != nil
	}
	if !ok {
		return fmt.Errorf("%w: %q is %s, want %s", errs.ErrCapabilityMismatch, f.name, f.capability, want)
	}

	return nil
}

// FindInternal returns the internal field called name.
func (r *Registry) FindInternal(name string) (*Field, bool) {
	return r.internal.find(name)
}

// FindReadable returns the readable field called name.
func (r *Registry) FindReadable(name string) (*Field, bool) {
	return r.readable.find(name)
}

// FindWritable returns the writable field called name.
func (r *Registry) FindWritable(name string) (*Field, bool) {
	return r.writable.find(name)
}

// WritableIndex returns the position of name in the writable collection.
// Uplink packets address the field at position i with index i+1.
func (r *Registry) WritableIndex(name string) (int, bool) {
	return r.writable.index.Lookup(name)
}

// Internal returns the internal fields in registration order.
// The returned slice must not be modified.
func (r *Registry) Internal() []*Field { return r.internal.fields }

// Readable returns the readable fields in registration order.
// The returned slice must not be modified.
func (r *Registry) Readable() []*Field { return r.readable.fields }

// Writable returns the writable fields in registration order.
// The returned slice must not be modified.
func (r *Registry) Writable() []*Field { return r.writable.fields }

// Seal freezes the registry structure. Later registrations fail with
// errs.ErrRegistrySealed.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// Fingerprint summarizes the transmitted layout: names, kinds and widths of
// the readable and writable collections in order. A ground station and a
// flight computer can only talk if their fingerprints match.
func (r *Registry) Fingerprint() uint64 {
	l := hash.NewLayout()
	for _, c := range []*collection{&r.readable, &r.writable} {
		l.Uint(uint64(len(c.fields)))
		for _, f := range c.fields {
			l.Name(f.name)
			l.Uint(uint64(f.Kind()))
			l.Uint(uint64(f.BitWidth())) //nolint: gosec
		}
	}

	return l.Sum()
}
