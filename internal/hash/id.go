// Package hash provides the xxHash64 helpers used for field name ids and
// registry layout fingerprints.
package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of a field name.
func ID(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Layout accumulates a fingerprint over an ordered sequence of names and
// small integers. Flight and ground sides that build the same registry
// produce the same fingerprint.
//
// The zero value is not usable; call NewLayout.
type Layout struct {
	d   *xxhash.Digest
	buf [8]byte
}

// NewLayout creates an empty layout fingerprint.
func NewLayout() *Layout {
	return &Layout{d: xxhash.New()}
}

// Name adds a length-prefixed name so that ("ab", "c") and ("a", "bc")
// hash differently.
func (l *Layout) Name(s string) {
	l.Uint(uint64(len(s)))
	_, _ = l.d.WriteString(s)
}

// Uint adds an integer in little-endian form.
func (l *Layout) Uint(v uint64) {
	binary.LittleEndian.PutUint64(l.buf[:], v)
	_, _ = l.d.Write(l.buf[:])
}

// Sum returns the fingerprint of everything added so far.
func (l *Layout) Sum() uint64 {
	return l.d.Sum64()
}
