// Package addressing turns caller keys into fixed-width binary hash
// sequences and exposes the suffix-matching predicate the directory uses
// for lookup, split and doubling.
package addressing

import (
	"strings"

	"github.com/gostonefire/extendiblehash/hashfunc"
)

// Sequence - A D-bit hash sequence. Only the low D bits are meaningful; bits
// at or above D are always zero. Indexing and comparisons address the
// low-order bits first, per the directory's splitting/doubling discipline.
type Sequence uint64

// Addressing - Turns keys into Sequence values using a fixed maximum depth D
// and a caller-supplied (or default) hash function.
type Addressing struct {
	D    uint32
	hash hashfunc.HashFunc
}

// New - Returns an Addressing bound to maximum depth d, using hash if non-nil
// or hashfunc.DefaultHash otherwise.
func New(d uint32, hash hashfunc.HashFunc) *Addressing {
	if hash == nil {
		hash = hashfunc.DefaultHash
	}
	return &Addressing{D: d, hash: hash}
}

// Mask - Returns a bitmask selecting the low n bits of a Sequence.
func Mask(n uint32) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return 1<<n - 1
}

// Of - Computes the hash sequence for key, truncated to the low D bits.
func (a *Addressing) Of(key []byte) Sequence {
	return Sequence(a.hash(key) & Mask(a.D))
}

// LowBitsEqual - Reports whether the low l bits of a and b agree.
func LowBitsEqual(a, b Sequence, l uint32) bool {
	m := Mask(l)
	return uint64(a)&m == uint64(b)&m
}

// Bit - Returns the value (0 or 1) of bit i (0-indexed from the LSB) of s.
func (s Sequence) Bit(i uint32) uint64 {
	return (uint64(s) >> i) & 1
}

// Low - Returns the low n bits of s as an index into a dense directory table.
func (s Sequence) Low(n uint32) uint64 {
	return uint64(s) & Mask(n)
}

// String - Renders the sequence as D ASCII '0'/'1' characters, most
// significant bit first, per the on-disk directory entry encoding.
func (s Sequence) String(d uint32) string {
	var b strings.Builder
	b.Grow(int(d))
	for i := int(d) - 1; i >= 0; i-- {
		if (uint64(s)>>uint32(i))&1 == 1 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// ParseSequence - Parses a D-character ASCII '0'/'1' string (most significant
// bit first) back into a Sequence.
func ParseSequence(s string) Sequence {
	var v uint64
	for i := 0; i < len(s); i++ {
		v <<= 1
		if s[i] == '1' {
			v |= 1
		}
	}
	return Sequence(v)
}
