// Package collision implements an ordered name index keyed by xxHash64 ids
// that stays correct when two names share an id.
package collision

import (
	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/internal/hash"
)

// Index maps unique names to their insertion position.
//
// Lookups hash the name once and compare the stored name, so a hash
// collision never returns the wrong position. Colliding names spill into a
// secondary map keyed by the name itself.
type Index struct {
	ids      map[uint64]int // id → position of the first name with that id
	spill    map[string]int // names whose id was already taken
	names    []string
	hashFunc func(string) uint64
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		ids:      make(map[uint64]int),
		hashFunc: hash.ID,
	}
}

// Add appends name and returns its position.
//
// Returns:
//   - errs.ErrInvalidFieldName for an empty name
//   - errs.ErrFieldAlreadyRegistered if name is already present
func (x *Index) Add(name string) (int, error) {
	if name == "" {
		return -1, errs.ErrInvalidFieldName
	}

	if _, ok := x.Lookup(name); ok {
		return -1, errs.ErrFieldAlreadyRegistered
	}

	pos := len(x.names)
	id := x.hashFunc(name)
	if _, taken := x.ids[id]; taken {
		if x.spill == nil {
			x.spill = make(map[string]int)
		}
		x.spill[name] = pos
	} else {
		x.ids[id] = pos
	}
	x.names = append(x.names, name)

	return pos, nil
}

// Lookup returns the position of name.
func (x *Index) Lookup(name string) (int, bool) {
	if pos, ok := x.ids[x.hashFunc(name)]; ok && x.names[pos] == name {
		return pos, true
	}

	pos, ok := x.spill[name]

	return pos, ok
}

// Contains reports whether name is present.
func (x *Index) Contains(name string) bool {
	_, ok := x.Lookup(name)
	return ok
}

// HasCollision reports whether any two names share an id.
func (x *Index) HasCollision() bool {
	return len(x.spill) > 0
}

// Names returns the names in insertion order.
func (x *Index) Names() []string {
	return x.names
}

// Len returns the number of names.
func (x *Index) Len() int {
	return len(x.names)
}
